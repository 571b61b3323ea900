package config

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	if yaml != "" {
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBufferString(yaml)))
	}
	return v
}

func TestNew_Defaults(t *testing.T) {
	cfg, err := New(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, PipelineConfig{
		ReadConcurrency:     4,
		GenerateConcurrency: runtime.NumCPU(),
		WriteConcurrency:    4,
		FailFast:            true,
	}, cfg.Pipeline)
	assert.Equal(t, InputConfig{Pattern: "*.cs", Exclude: []string{"bin/", "obj/"}}, cfg.Input)
	assert.Equal(t, "tests", cfg.Output.Dir)
	assert.Empty(t, cfg.Report.Path)
	assert.Equal(t, MetricsExportLog, cfg.Metrics.Export)
	assert.Equal(t, LogConfig{Level: "info", Format: "json"}, cfg.Log)
}

func TestNew_FromYAML(t *testing.T) {
	yaml := `
pipeline:
  read_concurrency: 2
  generate_concurrency: 8
  write_concurrency: 1
  fail_fast: false
input:
  pattern: "*Service.cs"
  recursive: true
  exclude:
    - "**/Generated/"
output:
  dir: out/tests
report:
  path: out/report.yaml
metrics:
  export: stdout
log:
  level: debug
  format: text
`
	cfg, err := New(newViper(t, yaml))
	require.NoError(t, err)

	assert.Equal(t, PipelineConfig{ReadConcurrency: 2, GenerateConcurrency: 8, WriteConcurrency: 1}, cfg.Pipeline)
	assert.Equal(t, InputConfig{Pattern: "*Service.cs", Recursive: true, Exclude: []string{"**/Generated/"}}, cfg.Input)
	assert.Equal(t, "out/tests", cfg.Output.Dir)
	assert.Equal(t, "out/report.yaml", cfg.Report.Path)
	assert.Equal(t, MetricsExportStdout, cfg.Metrics.Export)
	assert.Equal(t, LogConfig{Level: "debug", Format: "text"}, cfg.Log)
}

func TestNew_EnvironmentOverride(t *testing.T) {
	t.Setenv("TESTSKEL_OUTPUT_DIR", "/tmp/generated")
	t.Setenv("TESTSKEL_PIPELINE_WRITE_CONCURRENCY", "7")

	v := newViper(t, "")
	BindEnv(v)

	cfg, err := New(v)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/generated", cfg.Output.Dir)
	assert.Equal(t, 7, cfg.Pipeline.WriteConcurrency)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Pipeline: PipelineConfig{ReadConcurrency: 1, GenerateConcurrency: 1, WriteConcurrency: 1},
			Input:    InputConfig{Pattern: "*.cs"},
			Output:   OutputConfig{Dir: "out"},
			Log:      LogConfig{Level: "INFO", Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero read cap", mutate: func(c *Config) { c.Pipeline.ReadConcurrency = 0 }, wantErr: "pipeline.read_concurrency"},
		{name: "negative generate cap", mutate: func(c *Config) { c.Pipeline.GenerateConcurrency = -1 }, wantErr: "pipeline.generate_concurrency"},
		{name: "zero write cap", mutate: func(c *Config) { c.Pipeline.WriteConcurrency = 0 }, wantErr: "pipeline.write_concurrency"},
		{name: "blank output dir", mutate: func(c *Config) { c.Output.Dir = "  " }, wantErr: "output.dir is required"},
		{name: "empty pattern", mutate: func(c *Config) { c.Input.Pattern = "" }, wantErr: "input.pattern is required"},
		{name: "metrics export unset", mutate: func(c *Config) { c.Metrics.Export = "" }},
		{name: "metrics disabled", mutate: func(c *Config) { c.Metrics.Export = MetricsExportNone }},
		{name: "unknown metrics export", mutate: func(c *Config) { c.Metrics.Export = "prometheus" }, wantErr: "metrics.export"},
		{name: "unknown level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: "log.level"},
		{name: "unknown format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_InvalidConfigurationIsAnError(t *testing.T) {
	v := newViper(t, "pipeline:\n  read_concurrency: 0\n")
	cfg, err := New(v)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid configuration")
}
