package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger(t *testing.T, level string) ApplicationLogger {
	t.Helper()
	logger, err := NewApplicationLogger(Config{Level: level, Format: "json", Output: OutputBuffer})
	require.NoError(t, err)
	return logger
}

func lastEntry(t *testing.T, logger ApplicationLogger) LogEntry {
	t.Helper()
	output := getLoggerOutput(logger)
	require.NotEmpty(t, output, "Expected log output to be captured")
	var entry LogEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entry), "Log output should be valid JSON")
	return entry
}

// TestApplicationLogger_LogLevels tests different log levels.
func TestApplicationLogger_LogLevels(t *testing.T) {
	logger := bufferLogger(t, "DEBUG")
	correlationID := "run-correlation-123"
	ctx := WithCorrelationID(context.Background(), correlationID)

	tests := []struct {
		name    string
		logFunc func()
		level   string
		message string
	}{
		{
			name:    "debug log",
			logFunc: func() { logger.Debug(ctx, "source parsed", Fields{"roots": 1}) },
			level:   "DEBUG",
			message: "source parsed",
		},
		{
			name:    "info log",
			logFunc: func() { logger.Info(ctx, "run started", Fields{"fail_fast": true}) },
			level:   "INFO",
			message: "run started",
		},
		{
			name:    "warn log",
			logFunc: func() { logger.Warn(ctx, "run aborted", Fields{"stage": "read"}) },
			level:   "WARN",
			message: "run aborted",
		},
		{
			name:    "error log",
			logFunc: func() { logger.Error(ctx, "write failed", Fields{"path": "A.cs"}) },
			level:   "ERROR",
			message: "write failed",
		},
		{
			name: "error with error object",
			logFunc: func() {
				logger.ErrorWithError(ctx, errors.New("permission denied"), "item failed", Fields{"stage": "write"})
			},
			level:   "ERROR",
			message: "item failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.logFunc()

			entry := lastEntry(t, logger)
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, tt.message, entry.Message)
			assert.Equal(t, correlationID, entry.CorrelationID)
			assert.NotEmpty(t, entry.Timestamp)
			assert.Equal(t, "default", entry.Component)
		})
	}
}

// TestApplicationLogger_CorrelationIDGeneration tests correlation ID handling.
func TestApplicationLogger_CorrelationIDGeneration(t *testing.T) {
	logger := bufferLogger(t, "INFO")

	t.Run("context with correlation ID", func(t *testing.T) {
		logger.Info(WithCorrelationID(context.Background(), "existing-123"), "test message", nil)
		assert.Equal(t, "existing-123", lastEntry(t, logger).CorrelationID)
	})

	t.Run("context without correlation ID generates a UUID", func(t *testing.T) {
		logger.Info(context.Background(), "test message", nil)
		_, err := uuid.Parse(lastEntry(t, logger).CorrelationID)
		assert.NoError(t, err)
	})

	t.Run("lookup helper", func(t *testing.T) {
		assert.Empty(t, CorrelationIDFromContext(context.Background()))
		assert.Equal(t, "abc", CorrelationIDFromContext(WithCorrelationID(context.Background(), "abc")))
	})
}

// TestApplicationLogger_StructuredFields tests structured field logging.
func TestApplicationLogger_StructuredFields(t *testing.T) {
	logger := bufferLogger(t, "INFO")
	ctx := WithCorrelationID(context.Background(), "fields")

	logger.Info(ctx, "Pipeline run finished", Fields{
		"operation": "generate",
		"path":      "src/Cart.cs",
		"written":   3,
		"fail_fast": true,
		"duration":  "150ms",
	})

	entry := lastEntry(t, logger)
	assert.Equal(t, "generate", entry.Operation)
	assert.Equal(t, "150ms", entry.Duration)
	assert.Equal(t, "src/Cart.cs", entry.Metadata["path"])
	assert.Equal(t, float64(3), entry.Metadata["written"])
	assert.Equal(t, true, entry.Metadata["fail_fast"])
}

// TestApplicationLogger_ComponentLogging tests component-specific logging.
func TestApplicationLogger_ComponentLogging(t *testing.T) {
	logger := bufferLogger(t, "INFO")

	for _, component := range []string{"pipeline", "generator", "cli"} {
		t.Run(component, func(t *testing.T) {
			componentLogger := logger.WithComponent(component)
			componentLogger.Info(context.Background(), "Operation executed", nil)

			entry := lastEntry(t, componentLogger)
			assert.Equal(t, component, entry.Component)
		})
	}

	// Component loggers share the parent's output.
	assert.Equal(t, 3, strings.Count(BufferedOutput(logger), "Operation executed"))
}

// TestApplicationLogger_PerformanceLogging tests performance metrics logging.
func TestApplicationLogger_PerformanceLogging(t *testing.T) {
	logger := bufferLogger(t, "INFO")
	fields := Fields{"files": 5}

	logger.LogPerformance(context.Background(), "pipeline_run", 25*time.Millisecond, fields)

	entry := lastEntry(t, logger)
	assert.Equal(t, "INFO", entry.Level)
	assert.Contains(t, entry.Message, "Performance metrics")
	assert.Equal(t, "pipeline_run", entry.Operation)
	assert.Equal(t, "25ms", entry.Duration)
	assert.Equal(t, float64(5), entry.Metadata["files"])
	assert.Len(t, fields, 1, "caller fields must not be modified")
}

// TestApplicationLogger_ConfigurationValidation tests configuration validation.
func TestApplicationLogger_ConfigurationValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "valid configuration", config: Config{Level: "info", Format: "json", Output: OutputStdout}},
		{name: "valid text to stderr", config: Config{Level: "WARN", Format: "text", Output: OutputStderr}},
		{name: "valid writer", config: Config{Level: "DEBUG", Format: "json", Output: OutputWriter, Writer: &bytes.Buffer{}}},
		{name: "invalid log level", config: Config{Level: "INVALID", Format: "json", Output: OutputStdout}, wantErr: "invalid log level"},
		{name: "invalid format", config: Config{Level: "INFO", Format: "xml", Output: OutputStdout}, wantErr: "invalid log format"},
		{name: "invalid output", config: Config{Level: "INFO", Format: "json", Output: "file"}, wantErr: "invalid log output"},
		{name: "writer output without writer", config: Config{Level: "INFO", Format: "json", Output: OutputWriter}, wantErr: "requires a writer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewApplicationLogger(tt.config)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Nil(t, logger)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

// TestApplicationLogger_LogFiltering tests log level filtering.
func TestApplicationLogger_LogFiltering(t *testing.T) {
	tests := []struct {
		configLevel string
		logLevel    string
		shouldLog   bool
	}{
		{"DEBUG", "DEBUG", true},
		{"INFO", "DEBUG", false},
		{"INFO", "INFO", true},
		{"INFO", "ERROR", true},
		{"WARN", "INFO", false},
		{"WARN", "WARN", true},
		{"ERROR", "WARN", false},
		{"ERROR", "ERROR", true},
	}

	for _, tt := range tests {
		t.Run(tt.configLevel+" config "+tt.logLevel+" message", func(t *testing.T) {
			logger := bufferLogger(t, tt.configLevel)
			ctx := context.Background()

			switch tt.logLevel {
			case "DEBUG":
				logger.Debug(ctx, "message", nil)
			case "INFO":
				logger.Info(ctx, "message", nil)
			case "WARN":
				logger.Warn(ctx, "message", nil)
			case "ERROR":
				logger.Error(ctx, "message", nil)
			}

			if tt.shouldLog {
				assert.Equal(t, tt.logLevel, lastEntry(t, logger).Level)
			} else {
				assert.Empty(t, getLoggerOutput(logger))
			}
		})
	}
}

func TestApplicationLogger_TextFormat(t *testing.T) {
	var out bytes.Buffer
	logger, err := NewApplicationLogger(Config{Level: "INFO", Format: "text", Output: OutputWriter, Writer: &out})
	require.NoError(t, err)

	logger.WithComponent("pipeline").ErrorWithError(
		context.Background(), errors.New("boom"), "item failed", Fields{"stage": "write", "path": "A.cs"},
	)

	line := out.String()
	assert.Contains(t, line, "ERROR pipeline: item failed")
	assert.Contains(t, line, `error="boom"`)
	assert.Contains(t, line, "path=A.cs stage=write")
	assert.True(t, strings.HasSuffix(line, "\n"))
}
