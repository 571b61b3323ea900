package treesitter

import (
	"context"
	"errors"
	"time"

	"testskel/internal/application/common/slogger"
	"testskel/internal/domain/valueobject"
	"testskel/internal/port/outbound"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Parser metric names.
const (
	ParseOperationsCounterName = "testskel_parser_operations_total"
	ParseDurationHistogramName = "testskel_parser_duration_seconds"
	ParseSourceBytesName       = "testskel_parser_source_bytes_total"
)

// Values of the "result" attribute.
const (
	parseResultOK       = "ok"
	parseResultRejected = "rejected"
	parseResultError    = "error"
)

// ObservableParser decorates a SourceParser with OpenTelemetry counters.
type ObservableParser struct {
	next     outbound.SourceParser
	language string

	operations metric.Int64Counter
	duration   metric.Float64Histogram
	bytes      metric.Int64Counter
}

var _ outbound.SourceParser = (*ObservableParser)(nil)

// NewObservableParser wraps next. The language name is recorded as an attribute.
func NewObservableParser(
	next outbound.SourceParser,
	language string,
	provider metric.MeterProvider,
) (*ObservableParser, error) {
	if next == nil {
		return nil, errors.New("observable parser requires a parser")
	}
	meter := provider.Meter("testskel/treesitter")

	operations, err := meter.Int64Counter(
		ParseOperationsCounterName,
		metric.WithDescription("Total number of parse operations"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		ParseDurationHistogramName,
		metric.WithDescription("Parse operation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	bytes, err := meter.Int64Counter(
		ParseSourceBytesName,
		metric.WithDescription("Source bytes handed to the parser"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &ObservableParser{
		next:       next,
		language:   language,
		operations: operations,
		duration:   duration,
		bytes:      bytes,
	}, nil
}

// Parse delegates to the wrapped parser and records the outcome.
func (p *ObservableParser) Parse(ctx context.Context, source []byte) (*valueobject.DeclarationTree, error) {
	start := time.Now()
	tree, err := p.next.Parse(ctx, source)

	result := parseResultOK
	switch {
	case errors.Is(err, outbound.ErrParseFailed):
		result = parseResultRejected
	case err != nil:
		result = parseResultError
		slogger.Warn(ctx, "Parser returned an unexpected error", slogger.Fields{
			"language": p.language,
			"error":    err.Error(),
		})
	}

	attrs := metric.WithAttributes(
		attribute.String("language", p.language),
		attribute.String("result", result),
	)
	p.operations.Add(ctx, 1, attrs)
	p.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	p.bytes.Add(ctx, int64(len(source)), metric.WithAttributes(attribute.String("language", p.language)))

	return tree, err
}
