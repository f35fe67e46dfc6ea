package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records pipeline metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordProcessed records events that resolved successfully.
	RecordProcessed(ctx context.Context, count int64)

	// RecordDropped records events removed by runtime faults. The reason
	// should be a coarse class ("bind", "fault"), not the fault message,
	// so attribute cardinality stays bounded.
	RecordDropped(ctx context.Context, reason string, count int64)

	// RecordBatch records one batch evaluation with its size and latency.
	RecordBatch(ctx context.Context, size int, duration time.Duration)

	// RecordCompile records a program compilation.
	RecordCompile(ctx context.Context, success bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	eventsProcessed  metric.Int64Counter
	eventsDropped    metric.Int64Counter
	batchSize        metric.Int64Histogram
	batchLatency     metric.Float64Histogram
	programsCompiled metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("remap")

	eventsProcessed, err := meter.Int64Counter("remap.events.processed",
		metric.WithDescription("Number of events that resolved successfully"),
	)
	if err != nil {
		return nil, err
	}

	eventsDropped, err := meter.Int64Counter("remap.events.dropped",
		metric.WithDescription("Number of events removed by runtime faults"),
	)
	if err != nil {
		return nil, err
	}

	batchSize, err := meter.Int64Histogram("remap.batch.size",
		metric.WithDescription("Events per batch evaluation"),
	)
	if err != nil {
		return nil, err
	}

	batchLatency, err := meter.Float64Histogram("remap.batch.latency_ms",
		metric.WithDescription("Batch evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	programsCompiled, err := meter.Int64Counter("remap.programs.compiled",
		metric.WithDescription("Number of program compilations"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		eventsProcessed:  eventsProcessed,
		eventsDropped:    eventsDropped,
		batchSize:        batchSize,
		batchLatency:     batchLatency,
		programsCompiled: programsCompiled,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordProcessed records successfully resolved events.
func (m *otelMetrics) RecordProcessed(ctx context.Context, count int64) {
	m.eventsProcessed.Add(ctx, count)
}

// RecordDropped records events removed by faults.
func (m *otelMetrics) RecordDropped(ctx context.Context, reason string, count int64) {
	m.eventsDropped.Add(ctx, count, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

// RecordBatch records one batch evaluation.
func (m *otelMetrics) RecordBatch(ctx context.Context, size int, duration time.Duration) {
	m.batchSize.Record(ctx, int64(size))
	m.batchLatency.Record(ctx, float64(duration.Milliseconds()))
}

// RecordCompile records a program compilation.
func (m *otelMetrics) RecordCompile(ctx context.Context, success bool) {
	m.programsCompiled.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", success),
	))
}
