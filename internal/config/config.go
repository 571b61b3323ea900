package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides, e.g. TESTSKEL_OUTPUT_DIR.
const EnvPrefix = "TESTSKEL"

// Config holds the complete application configuration.
type Config struct {
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Input    InputConfig    `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	Report   ReportConfig   `mapstructure:"report"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

// PipelineConfig holds the per-stage parallelism caps and the failure policy.
type PipelineConfig struct {
	ReadConcurrency     int  `mapstructure:"read_concurrency"`
	GenerateConcurrency int  `mapstructure:"generate_concurrency"`
	WriteConcurrency    int  `mapstructure:"write_concurrency"`
	FailFast            bool `mapstructure:"fail_fast"`
}

// InputConfig controls how directory arguments are expanded.
type InputConfig struct {
	Pattern   string   `mapstructure:"pattern"`
	Recursive bool     `mapstructure:"recursive"`
	Exclude   []string `mapstructure:"exclude"` // gitignore-style, relative to the scanned directory
}

// OutputConfig holds the destination of generated files.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// ReportConfig holds the optional run report location. Empty disables the report.
type ReportConfig struct {
	Path string `mapstructure:"path"`
}

// Metrics export modes.
const (
	MetricsExportLog    = "log"
	MetricsExportStdout = "stdout"
	MetricsExportNone   = "none"
)

// MetricsConfig selects where the run's metrics go. Empty means MetricsExportLog.
type MetricsConfig struct {
	Export string `mapstructure:"export"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.read_concurrency", 4)
	v.SetDefault("pipeline.generate_concurrency", runtime.NumCPU())
	v.SetDefault("pipeline.write_concurrency", 4)
	v.SetDefault("pipeline.fail_fast", true)

	v.SetDefault("input.pattern", "*.cs")
	v.SetDefault("input.recursive", false)
	v.SetDefault("input.exclude", []string{"bin/", "obj/"})

	v.SetDefault("output.dir", "tests")
	v.SetDefault("report.path", "")
	v.SetDefault("metrics.export", MetricsExportLog)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// BindEnv enables TESTSKEL_* environment overrides for every key.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// New creates a new Config instance from Viper.
func New(v *viper.Viper) (*Config, error) {
	var config Config

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	caps := []struct {
		key   string
		value int
	}{
		{"pipeline.read_concurrency", c.Pipeline.ReadConcurrency},
		{"pipeline.generate_concurrency", c.Pipeline.GenerateConcurrency},
		{"pipeline.write_concurrency", c.Pipeline.WriteConcurrency},
	}
	for _, cp := range caps {
		if cp.value < 1 {
			return fmt.Errorf("%s must be at least 1", cp.key)
		}
	}

	if strings.TrimSpace(c.Output.Dir) == "" {
		return errors.New("output.dir is required")
	}

	if c.Input.Pattern == "" {
		return errors.New("input.pattern is required")
	}

	switch c.Metrics.Export {
	case "", MetricsExportLog, MetricsExportStdout, MetricsExportNone:
	default:
		return fmt.Errorf("metrics.export must be one of log, stdout, none: %q", c.Metrics.Export)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error: %q", c.Log.Level)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text: %q", c.Log.Format)
	}

	return nil
}
