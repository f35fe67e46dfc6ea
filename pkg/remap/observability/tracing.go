package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the remap tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("remap")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartBatchSpan starts a span for one batch evaluation.
	// Returns the context with span and the span itself.
	StartBatchSpan(ctx context.Context, program string, size int) (context.Context, trace.Span)

	// StartEventSpan starts a span for a single-event evaluation.
	// The event span should be a child of the batch span when one exists.
	StartEventSpan(ctx context.Context, eventID string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartBatchSpan starts a span for one batch evaluation.
func (m *otelSpanManager) StartBatchSpan(ctx context.Context, program string, size int) (context.Context, trace.Span) {
	return StartBatchSpan(ctx, program, size)
}

// StartEventSpan starts a span for a single-event evaluation.
func (m *otelSpanManager) StartEventSpan(ctx context.Context, eventID string) (context.Context, trace.Span) {
	return StartEventSpan(ctx, eventID)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// Convenience functions that operate on the global tracer.
// These are useful for simple cases where you don't need the interface.

// StartBatchSpan starts a span for one batch evaluation.
// Uses the global OTel tracer.
func StartBatchSpan(ctx context.Context, program string, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "remap.batch",
		trace.WithAttributes(
			attribute.String("program.name", program),
			attribute.Int("batch.size", size),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartEventSpan starts a span for a single-event evaluation.
// Uses the global OTel tracer.
func StartEventSpan(ctx context.Context, eventID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "remap.event",
		trace.WithAttributes(
			attribute.String("event.id", eventID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
