package filesystem

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ExcludeMatcher matches slash-separated relative paths against gitignore-style patterns.
// A pattern without a leading "/" matches at any depth, and a pattern matching a directory
// also matches everything below it. Patterns are compiled once, so a matcher is safe for
// concurrent use.
type ExcludeMatcher struct {
	patterns []string
	compiled []*regexp.Regexp
}

// NewExcludeMatcher compiles the patterns. Blank patterns and "#" comments are ignored.
func NewExcludeMatcher(patterns []string) (*ExcludeMatcher, error) {
	m := &ExcludeMatcher{}
	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		re, err := regexp.Compile(globToRegex(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		m.patterns = append(m.patterns, pattern)
		m.compiled = append(m.compiled, re)
	}
	return m, nil
}

// Match reports whether the path is excluded.
func (m *ExcludeMatcher) Match(path string) bool {
	if m == nil {
		return false
	}
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	for _, re := range m.compiled {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Patterns returns the active patterns.
func (m *ExcludeMatcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.patterns...)
}

func globToRegex(pattern string) string {
	rooted := strings.HasPrefix(pattern, "/")
	pattern = strings.TrimSuffix(strings.TrimPrefix(pattern, "/"), "/")

	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; {
		case strings.HasPrefix(pattern[i:], "**/"):
			b.WriteString(`([^/]*/)*`)
			i += 2
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(`.*`)
			i++
		case c == '*':
			b.WriteString(`[^/]*`)
		case c == '?':
			b.WriteString(`[^/]`)
		case c == '[':
			end := strings.IndexByte(pattern[i:], ']')
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(pattern[i : i+end+1])
			i += end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	if rooted {
		return "^" + b.String() + "($|/.*)"
	}
	return "(^|/)" + b.String() + "($|/.*)"
}
