package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ApplicationLogger defines the interface for structured application logging
type ApplicationLogger interface {
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)
	ErrorWithError(ctx context.Context, err error, message string, fields Fields)
	LogPerformance(ctx context.Context, operation string, duration time.Duration, fields Fields)
	WithComponent(component string) ApplicationLogger
}

// Fields represents structured logging fields
type Fields map[string]interface{}

// Output destinations.
const (
	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputBuffer = "buffer" // in-memory, for tests
	OutputWriter = "writer" // Config.Writer
)

// Config represents logger configuration
type Config struct {
	Level  string
	Format string // json, text
	Output string // stdout, stderr, buffer, writer
	// Writer receives entries when Output is "writer".
	Writer io.Writer
}

// LogEntry represents the structure of log entries
type LogEntry struct {
	Timestamp     string                 `json:"timestamp"`
	Level         string                 `json:"level"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id"`
	Component     string                 `json:"component"`
	Operation     string                 `json:"operation,omitempty"`
	Duration      string                 `json:"duration,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

type contextKey string

// CorrelationIDKey is the context key holding the correlation id.
const CorrelationIDKey contextKey = "correlation_id"

var levels = map[string]int{
	"DEBUG": 0,
	"INFO":  1,
	"WARN":  2,
	"ERROR": 3,
}

// sink is shared by a logger and the component loggers derived from it.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	buffer *bytes.Buffer
}

type applicationLoggerImpl struct {
	config    Config
	level     int
	component string
	sink      *sink
}

// NewApplicationLogger creates a new application logger
func NewApplicationLogger(config Config) (ApplicationLogger, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	s := &sink{}
	switch config.Output {
	case OutputBuffer:
		s.buffer = &bytes.Buffer{}
		s.out = s.buffer
	case OutputStderr:
		s.out = os.Stderr
	case OutputWriter:
		s.out = config.Writer
	default:
		s.out = os.Stdout
	}

	return &applicationLoggerImpl{
		config: config,
		level:  levels[strings.ToUpper(config.Level)],
		sink:   s,
	}, nil
}

// validateConfig validates logger configuration
func validateConfig(config Config) error {
	if _, ok := levels[strings.ToUpper(config.Level)]; !ok {
		return fmt.Errorf("invalid log level: %s", config.Level)
	}

	switch config.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", config.Format)
	}

	switch config.Output {
	case OutputStdout, OutputStderr, OutputBuffer:
	case OutputWriter:
		if config.Writer == nil {
			return fmt.Errorf("log output %q requires a writer", config.Output)
		}
	default:
		return fmt.Errorf("invalid log output: %s", config.Output)
	}

	return nil
}

func (l *applicationLoggerImpl) shouldLog(level string) bool {
	return levels[level] >= l.level
}

// Debug logs debug messages
func (l *applicationLoggerImpl) Debug(ctx context.Context, message string, fields Fields) {
	if l.shouldLog("DEBUG") {
		l.logEntry(ctx, "DEBUG", message, "", fields)
	}
}

// Info logs info messages
func (l *applicationLoggerImpl) Info(ctx context.Context, message string, fields Fields) {
	if l.shouldLog("INFO") {
		l.logEntry(ctx, "INFO", message, "", fields)
	}
}

// Warn logs warning messages
func (l *applicationLoggerImpl) Warn(ctx context.Context, message string, fields Fields) {
	if l.shouldLog("WARN") {
		l.logEntry(ctx, "WARN", message, "", fields)
	}
}

// Error logs error messages
func (l *applicationLoggerImpl) Error(ctx context.Context, message string, fields Fields) {
	if l.shouldLog("ERROR") {
		l.logEntry(ctx, "ERROR", message, "", fields)
	}
}

// ErrorWithError logs error messages with an error object
func (l *applicationLoggerImpl) ErrorWithError(ctx context.Context, err error, message string, fields Fields) {
	if l.shouldLog("ERROR") {
		errStr := ""
		if err != nil {
			errStr = err.Error()
		}
		l.logEntry(ctx, "ERROR", message, errStr, fields)
	}
}

// LogPerformance logs the duration of an operation at INFO level
func (l *applicationLoggerImpl) LogPerformance(ctx context.Context, operation string, duration time.Duration, fields Fields) {
	if !l.shouldLog("INFO") {
		return
	}
	merged := make(Fields, len(fields)+2)
	for k, v := range fields {
		merged[k] = v
	}
	merged["operation"] = operation
	merged["duration"] = duration.String()
	l.logEntry(ctx, "INFO", fmt.Sprintf("Performance metrics for %s", operation), "", merged)
}

// WithComponent creates a logger writing to the same output under a component name
func (l *applicationLoggerImpl) WithComponent(component string) ApplicationLogger {
	return &applicationLoggerImpl{
		config:    l.config,
		level:     l.level,
		component: component,
		sink:      l.sink,
	}
}

func (l *applicationLoggerImpl) logEntry(ctx context.Context, level, message, errorStr string, fields Fields) {
	component := l.component
	if component == "" {
		component = "default"
	}

	entry := &LogEntry{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Level:         level,
		Message:       message,
		CorrelationID: getOrGenerateCorrelationID(ctx),
		Component:     component,
		Error:         errorStr,
	}
	if len(fields) > 0 {
		entry.Metadata = make(map[string]interface{}, len(fields))
		for key, value := range fields {
			switch key {
			case "operation":
				if s, ok := value.(string); ok {
					entry.Operation = s
				}
			case "duration":
				if s, ok := value.(string); ok {
					entry.Duration = s
				}
			}
			entry.Metadata[key] = value
		}
	}

	l.writeLogEntry(entry)
}

func (l *applicationLoggerImpl) writeLogEntry(entry *LogEntry) {
	var line []byte
	if l.config.Format == "json" {
		data, err := json.Marshal(entry)
		if err != nil {
			return
		}
		line = data
	} else {
		line = []byte(formatText(entry))
	}
	line = append(line, '\n')

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = l.sink.out.Write(line)
}

// formatText renders "[ts] LEVEL component: message key=value ..." with sorted keys.
func formatText(entry *LogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s: %s", entry.Timestamp, entry.Level, entry.Component, entry.Message)
	if entry.Error != "" {
		fmt.Fprintf(&b, " error=%q", entry.Error)
	}
	keys := make([]string, 0, len(entry.Metadata))
	for k := range entry.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Metadata[k])
	}
	return b.String()
}

// getOrGenerateCorrelationID gets correlation ID from context or generates a new one
func getOrGenerateCorrelationID(ctx context.Context) string {
	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		return correlationID
	}
	return uuid.New().String()
}

// WithCorrelationID stores a correlation id on the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// CorrelationIDFromContext returns the stored correlation id or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// BufferedOutput returns everything written by a logger created with the "buffer" output.
func BufferedOutput(logger ApplicationLogger) string {
	appLogger, ok := logger.(*applicationLoggerImpl)
	if !ok || appLogger.sink.buffer == nil {
		return ""
	}
	appLogger.sink.mu.Lock()
	defer appLogger.sink.mu.Unlock()
	return appLogger.sink.buffer.String()
}

// getLoggerOutput returns the last buffered entry.
func getLoggerOutput(logger ApplicationLogger) string {
	lines := strings.Split(strings.TrimSpace(BufferedOutput(logger)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
