package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	ItemsCounterName           = "testskel_pipeline_items_total"
	StageDurationHistogramName = "testskel_pipeline_stage_duration_seconds"
	RunsCounterName            = "testskel_pipeline_runs_total"
	InFlightGaugeName          = "testskel_pipeline_in_flight"
)

// Attribute keys.
const (
	AttrStage  = "stage"
	AttrState  = "state"
	AttrResult = "result"
)

const meterName = "testskel/pipeline"

// Metrics records pipeline activity through OpenTelemetry instruments.
type Metrics struct {
	items         metric.Int64Counter
	stageDuration metric.Float64Histogram
	runs          metric.Int64Counter
	inFlight      metric.Int64UpDownCounter
}

// NewMetrics creates instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithProvider(otel.GetMeterProvider())
}

// NewMetricsWithProvider creates instruments on the given provider.
func NewMetricsWithProvider(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(meterName, metric.WithInstrumentationVersion("1.0.0"))

	// 1ms to 10s: reads and writes of single source files, plus parsing.
	buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	items, err := meter.Int64Counter(
		ItemsCounterName,
		metric.WithDescription("Items leaving a pipeline stage, by resulting state"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		StageDurationHistogramName,
		metric.WithDescription("Time spent processing one item in a stage"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter(
		RunsCounterName,
		metric.WithDescription("Completed pipeline runs"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		InFlightGaugeName,
		metric.WithDescription("Items currently being processed by a stage"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		items:         items,
		stageDuration: stageDuration,
		runs:          runs,
		inFlight:      inFlight,
	}, nil
}

// A nil *Metrics records nothing, so the pipeline can call these unconditionally.

func (m *Metrics) stageStarted(ctx context.Context, stage Stage) {
	if m == nil {
		return
	}
	m.inFlight.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrStage, string(stage))))
}

func (m *Metrics) stageFinished(ctx context.Context, stage Stage, state ItemState, d time.Duration) {
	if m == nil {
		return
	}
	stageAttr := attribute.String(AttrStage, string(stage))
	m.inFlight.Add(ctx, -1, metric.WithAttributes(stageAttr))
	m.items.Add(ctx, 1, metric.WithAttributes(stageAttr, attribute.String(AttrState, state.String())))
	m.stageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(stageAttr))
}

func (m *Metrics) runFinished(ctx context.Context, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.runs.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrResult, result)))
}
