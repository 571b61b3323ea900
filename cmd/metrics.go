package cmd

import (
	"context"
	"fmt"
	"io"

	"testskel/internal/application/common/slogger"
	"testskel/internal/application/worker/pipeline"
	"testskel/internal/config"
	"testskel/internal/version"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

// newMeterProvider builds the run's meter provider. The manual reader always backs the
// end-of-run log entry; the stdout export adds a periodic reader that writes OpenTelemetry
// JSON to w when the provider shuts down.
func newMeterProvider(export string, w io.Writer, info version.Info) (*sdkmetric.MeterProvider, *sdkmetric.ManualReader, error) {
	manual := sdkmetric.NewManualReader()
	opts := []sdkmetric.Option{
		sdkmetric.WithReader(manual),
		sdkmetric.WithResource(resource.NewSchemaless(
			attribute.String("service.name", version.ApplicationName),
			attribute.String("service.version", info.Version),
		)),
	}

	if export == config.MetricsExportStdout {
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
	}

	return sdkmetric.NewMeterProvider(opts...), manual, nil
}

// logMetrics collects the run's instruments and logs one field per counter and stage.
func logMetrics(ctx context.Context, reader sdkmetric.Reader) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		slogger.ErrorWithError(ctx, err, "Failed to collect pipeline metrics", nil)
		return
	}
	fields := metricFields(rm)
	if len(fields) > 0 {
		slogger.Info(ctx, "Pipeline metrics", fields)
	}
}

func metricFields(rm metricdata.ResourceMetrics) slogger.Fields {
	fields := slogger.Fields{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				fields[m.Name] = total
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					prefix := m.Name
					if label := pointLabel(dp.Attributes); label != "" {
						prefix += "." + label
					}
					fields[prefix+".count"] = dp.Count
					fields[prefix+".sum"] = dp.Sum
				}
			}
		}
	}
	return fields
}

// pointLabel names a histogram point by its pipeline stage or, for parser
// instruments, by its result.
func pointLabel(set attribute.Set) string {
	if stage, ok := set.Value(attribute.Key(pipeline.AttrStage)); ok {
		return stage.AsString()
	}
	if result, ok := set.Value("result"); ok {
		return result.AsString()
	}
	return ""
}

