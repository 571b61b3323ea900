package version

import (
	"bytes"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Cleanup(ResetBuildVars)

	t.Run("injected values", func(t *testing.T) {
		SetBuildVars("v1.2.3", "abc123", "2026-01-01T00:00:00Z")
		info := Get()
		assert.Equal(t, Info{
			Version:   "v1.2.3",
			Commit:    "abc123",
			BuildTime: "2026-01-01T00:00:00Z",
			GoVersion: runtime.Version(),
		}, info)
		assert.False(t, info.IsDevelopment())
	})

	t.Run("defaults", func(t *testing.T) {
		ResetBuildVars()
		info := Get()
		assert.Equal(t, DefaultVersion, info.Version)
		assert.Equal(t, DefaultBuildTime, info.BuildTime)
		assert.NotEmpty(t, info.Commit)
		assert.True(t, info.IsDevelopment())
	})
}

func TestInfo_BuiltAt(t *testing.T) {
	tests := []struct {
		name      string
		buildTime string
		want      time.Time
	}{
		{"rfc3339", "2026-02-03T04:05:06Z", time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)},
		{"date time", "2026-02-03 04:05:06", time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)},
		{"date", "2026-02-03", time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)},
		{"unknown", DefaultBuildTime, time.Time{}},
		{"garbage", "yesterday", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Info{BuildTime: tt.buildTime}.BuiltAt()
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestInfo_Write(t *testing.T) {
	info := Info{Version: "v2.0.0", Commit: "xyz789", BuildTime: "2026-06-01T00:00:00Z", GoVersion: "go1.24.0"}

	t.Run("short", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, info.Write(&buf, true))
		assert.Equal(t, "v2.0.0\n", buf.String())
	})

	t.Run("full", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, info.Write(&buf, false))
		assert.Equal(t,
			"testskel\nVersion: v2.0.0\nCommit: xyz789\nBuilt: 2026-06-01T00:00:00Z\nGo: go1.24.0\n",
			buf.String())
	})
}

type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) {
	return 0, errors.New("write error")
}

func TestInfo_WriteError(t *testing.T) {
	info := Info{Version: "v1"}
	assert.Error(t, info.Write(errorWriter{}, true))
	assert.Error(t, info.Write(errorWriter{}, false))
}

func TestInfo_Fields(t *testing.T) {
	fields := Info{Version: "v1", Commit: "c", BuildTime: "b", GoVersion: "g"}.Fields()
	assert.Equal(t, map[string]interface{}{
		"version": "v1", "commit": "c", "build_time": "b", "go_version": "g",
	}, fields)
}
