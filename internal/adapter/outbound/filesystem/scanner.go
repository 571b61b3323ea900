package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"testskel/internal/application/common/slogger"
	"testskel/internal/port/outbound"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// DefaultPattern selects C# sources.
const DefaultPattern = "*.cs"

// ErrDuplicateFileName is returned by Scan when two sources share a base name and would
// therefore produce the same output file.
var ErrDuplicateFileName = errors.New("source files share a file name")

// Scanner implements outbound.SourceScanner. Explicit file arguments are always kept;
// directories contribute the files whose base name matches the pattern and whose path
// relative to the directory is not excluded.
type Scanner struct {
	fs        afero.Fs
	pattern   string
	recursive bool
	exclude   *ExcludeMatcher
}

var _ outbound.SourceScanner = (*Scanner)(nil)

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithPattern sets the file name glob used inside directories.
func WithPattern(pattern string) ScannerOption {
	return func(s *Scanner) {
		if pattern != "" {
			s.pattern = pattern
		}
	}
}

// WithRecursive descends into subdirectories.
func WithRecursive(recursive bool) ScannerOption {
	return func(s *Scanner) {
		s.recursive = recursive
	}
}

// WithExclude skips paths matched by the matcher.
func WithExclude(m *ExcludeMatcher) ScannerOption {
	return func(s *Scanner) {
		s.exclude = m
	}
}

// NewScanner creates a scanner over fs. A nil fs scans the operating system.
func NewScanner(fs afero.Fs, opts ...ScannerOption) (*Scanner, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	s := &Scanner{fs: fs, pattern: DefaultPattern}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := filepath.Match(s.pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid input pattern %q: %w", s.pattern, err)
	}
	return s, nil
}

// Scan expands the inputs into a de-duplicated list of file paths, inputs first-come.
// Directory entries are listed in lexical order.
func (s *Scanner) Scan(ctx context.Context, inputs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	add := func(p string) {
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		paths = append(paths, clean)
	}

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan canceled: %w", err)
		}

		info, err := s.fs.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", outbound.ErrReadFailed, err)
		}
		if !info.IsDir() {
			add(input)
			continue
		}

		found, err := s.scanDir(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}

	if err := checkFileNames(paths); err != nil {
		return nil, err
	}

	slogger.Debug(ctx, "Input scanned", slogger.Fields{
		"inputs":    len(inputs),
		"files":     len(paths),
		"pattern":   s.pattern,
		"recursive": s.recursive,
	})
	return paths, nil
}

func (s *Scanner) scanDir(ctx context.Context, root string) ([]string, error) {
	var out []string

	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		if info.IsDir() {
			if path == root {
				return nil
			}
			if !s.recursive || s.exclude.Match(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if ok, _ := filepath.Match(s.pattern, info.Name()); !ok {
			return nil
		}
		if s.exclude.Match(rel) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %w", outbound.ErrReadFailed, root, err)
	}
	return out, nil
}

// checkFileNames rejects paths whose base names collide, since outputs are named after them.
func checkFileNames(paths []string) error {
	byName := make(map[string]string, len(paths))
	var err error
	for _, p := range paths {
		name := filepath.Base(p)
		if first, ok := byName[name]; ok {
			err = multierr.Append(err, fmt.Errorf("%s: %s and %s", name, first, p))
			continue
		}
		byName[name] = p
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDuplicateFileName, err)
	}
	return nil
}
