// Package version holds the build information of the testskel binary.
//
// The variables are injected at build time:
//
//	-ldflags "-X testskel/internal/version.version=v1.0.0 -X testskel/internal/version.commit=abc123 -X testskel/internal/version.buildTime=2026-01-01T00:00:00Z"
//
// Without ldflags the VCS revision recorded by the Go toolchain is used as the commit.
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"
)

//nolint:gochecknoglobals // Required for build-time injection via ldflags.
var (
	version   string
	commit    string
	buildTime string
)

// ApplicationName is the name of the application displayed in version output.
const ApplicationName = "testskel"

// Default values used when version information is not available.
const (
	DefaultVersion   = "dev"
	DefaultCommit    = "unknown"
	DefaultBuildTime = "unknown"
)

// Info is the version of the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
	GoVersion string
}

// Get returns the build information with defaults for anything not injected.
func Get() Info {
	info := Info{
		Version:   withDefault(version, DefaultVersion),
		Commit:    withDefault(commit, DefaultCommit),
		BuildTime: withDefault(buildTime, DefaultBuildTime),
		GoVersion: runtime.Version(),
	}
	if commit == "" {
		if rev, ok := vcsRevision(); ok {
			info.Commit = rev
		}
	}
	return info
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func vcsRevision() (string, bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value, true
		}
	}
	return "", false
}

// SetBuildVars overrides the injected values. Used by tests and by cmd for its own ldflags.
func SetBuildVars(ver, com, bt string) {
	version = ver
	commit = com
	buildTime = bt
}

// ResetBuildVars clears the injected values.
func ResetBuildVars() {
	SetBuildVars("", "", "")
}

// IsDevelopment reports whether the binary was built without a version.
func (i Info) IsDevelopment() bool {
	return i.Version == DefaultVersion
}

// BuiltAt parses the build time. It returns the zero time when unknown or malformed.
func (i Info) BuiltAt() time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, i.BuildTime); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Fields returns the information as structured log fields.
func (i Info) Fields() map[string]interface{} {
	return map[string]interface{}{
		"version":    i.Version,
		"commit":     i.Commit,
		"build_time": i.BuildTime,
		"go_version": i.GoVersion,
	}
}

// Write prints the version alone when short is set, otherwise every field.
func (i Info) Write(w io.Writer, short bool) error {
	if short {
		_, err := fmt.Fprintln(w, i.Version)
		return err
	}
	_, err := fmt.Fprintf(w, "%s\nVersion: %s\nCommit: %s\nBuilt: %s\nGo: %s\n",
		ApplicationName, i.Version, i.Commit, i.BuildTime, i.GoVersion)
	return err
}
