// Package runtime drives compiled programs over event streams.
//
// A Runner pairs a compiled program with the machinery a pipeline stage
// needs around it: a drop store for events that fault, structured logging,
// metrics, and tracing. The evaluation packages stay pure; every side
// effect of running a program lives here.
package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/remap/pkg/remap"
	"github.com/randalmurphal/remap/pkg/remap/drop"
	"github.com/randalmurphal/remap/pkg/remap/event"
	"github.com/randalmurphal/remap/pkg/remap/observability"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// ErrNilProgram is returned by NewRunner when no program is given.
var ErrNilProgram = errors.New("runner requires a compiled program")

// Runner drives a compiled program over events, one at a time or in
// batches. Faulted events are removed from the stream and, when a drop
// store is configured, recorded there with the fault as reason.
//
// A Runner is safe for concurrent use. The program is immutable and
// every call evaluates on its own state.
type Runner struct {
	program *remap.Program
	name    string
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	drops   drop.Store
}

// Option configures a Runner.
type Option func(*Runner)

// WithName sets the program name used in logs and spans.
// Default: "program".
func WithName(name string) Option {
	return func(r *Runner) {
		if name != "" {
			r.name = name
		}
	}
}

// WithLogger attaches a structured logger. Runners without a logger are
// silent.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(r *Runner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithSpans sets the span manager used for tracing. Default: no-op.
func WithSpans(s observability.SpanManager) Option {
	return func(r *Runner) {
		if s != nil {
			r.spans = s
		}
	}
}

// WithDropStore records faulted events in the given store instead of
// discarding them. The Runner never closes the store.
func WithDropStore(s drop.Store) Option {
	return func(r *Runner) {
		r.drops = s
	}
}

// NewRunner wraps a compiled program for pipeline use.
func NewRunner(program *remap.Program, opts ...Option) (*Runner, error) {
	if program == nil {
		return nil, ErrNilProgram
	}
	r := &Runner{
		program: program,
		name:    "program",
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Program returns the compiled program the Runner drives.
func (r *Runner) Program() *remap.Program { return r.program }

// Name returns the program name used in logs and spans.
func (r *Runner) Name() string { return r.name }

// ProcessEvent evaluates the program against a single event.
//
// The returned event carries the program's result: an object result
// replaces the event fields wholesale, any other kind lands under the
// "value" key. A fault drops the event and is returned to the caller.
func (r *Runner) ProcessEvent(ctx context.Context, evt *event.Event) (*event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	evtCtx, span := r.spans.StartEventSpan(ctx, evt.ID)
	result, err := r.program.Resolve(evt.Fields)
	r.spans.EndSpanWithError(span, err)
	if err != nil {
		r.recordDrop(evtCtx, evt, err)
		return nil, err
	}

	r.metrics.RecordProcessed(evtCtx, 1)
	return evt.WithFields(outputFields(result)), nil
}

// ProcessBatch evaluates the program against a batch of events in one
// tree walk.
//
// Faults never abort the batch: rows that fault are dropped and the
// surviving events come back in their original order. The returned
// error is non-nil only when ctx is already cancelled.
func (r *Runner) ProcessBatch(ctx context.Context, events []*event.Event) ([]*event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	batchCtx, span := r.spans.StartBatchSpan(ctx, r.name, len(events))
	observability.LogBatchStart(r.logger, r.name, len(events))

	rows := make([]map[string]value.Value, len(events))
	for i, evt := range events {
		rows[i] = evt.Fields
	}
	results := r.program.ResolveBatch(rows)

	out := make([]*event.Event, 0, len(events))
	for i, res := range results {
		if !res.OK() {
			r.recordDrop(batchCtx, events[i], res.Err)
			continue
		}
		out = append(out, events[i].WithFields(outputFields(res.Value)))
	}

	duration := time.Since(start)
	dropped := len(events) - len(out)
	r.spans.EndSpanWithError(span, nil)
	r.metrics.RecordBatch(batchCtx, len(events), duration)
	r.metrics.RecordProcessed(batchCtx, int64(len(out)))
	observability.LogBatchComplete(r.logger, r.name, len(events), dropped, float64(duration.Milliseconds()))

	return out, nil
}

// outputFields shapes a resolved value into event fields.
func outputFields(v value.Value) value.Object {
	if obj, ok := v.(value.Object); ok {
		return obj
	}
	return value.Object{"value": v}
}

// dropClass buckets a fault for metric labels. Fault messages are
// unbounded, so metrics only ever see these two classes.
func dropClass(err error) string {
	var bindErr *remap.BindError
	if errors.As(err, &bindErr) {
		return "bind"
	}
	return "fault"
}

// recordDrop routes one faulted event to the drop store and emits the
// observability signals for it. Store failures are logged, never fatal.
func (r *Runner) recordDrop(ctx context.Context, evt *event.Event, faultErr error) {
	class := dropClass(faultErr)
	r.metrics.RecordDropped(ctx, class, 1)
	r.spans.AddSpanEvent(ctx, "event.dropped",
		attribute.String("event.id", evt.ID),
		attribute.String("class", class),
	)
	observability.LogEventDropped(r.logger, evt.ID, faultErr)

	if r.drops == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		payload = nil
	}
	if err := r.drops.Append(drop.Dropped{
		EventID:   evt.ID,
		Reason:    faultErr.Error(),
		Payload:   payload,
		DroppedAt: time.Now().UTC(),
	}); err != nil {
		observability.LogDropStoreError(r.logger, evt.ID, err)
	}
}
