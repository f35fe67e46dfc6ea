package expr

import (
	"fmt"

	"github.com/randalmurphal/remap/pkg/remap/state"
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// Expression is one node of a compiled program.
//
// ResolveBatch evaluates the rows named by selection and writes each
// row's outcome to ctx.Resolved. Implementations must treat selection as
// read-only: a node that needs to narrow or reorder it copies it into
// scratch owned by the context first.
type Expression interface {
	// Resolve evaluates the node against a single event.
	Resolve(ctx *Context) (value.Value, error)

	// ResolveBatch evaluates the rows named by selection, recording each
	// row's value or fault in ctx.Resolved.
	ResolveBatch(ctx *BatchContext, selection []int)

	// TypeDef reports the set of kinds the node can resolve to and
	// whether resolution can fault.
	TypeDef(st state.TypeState) types.Def

	fmt.Stringer
}

// Context carries the per-event state for scalar evaluation.
type Context struct {
	// State holds the event's live variable bindings.
	State *state.Runtime
}

// NewContext returns a scalar context over a fresh runtime.
func NewContext() *Context {
	return &Context{State: state.NewRuntime()}
}

// Resolved is the outcome of one row of a batch. A non-nil Err marks the
// row faulted; Value is meaningful only when Err is nil.
type Resolved struct {
	Value value.Value
	Err   error
}

// OK reports whether the row resolved without a fault.
func (r Resolved) OK() bool { return r.Err == nil }

// BatchContext carries the state for one batch evaluation. Resolved and
// States are indexed by row. A context belongs to a single goroutine;
// concurrent batches over the same tree each use their own context.
type BatchContext struct {
	// Resolved holds each row's current outcome. Nodes overwrite the
	// slots named by their selection and leave the rest alone.
	Resolved []Resolved

	// States holds each row's variable bindings.
	States []*state.Runtime

	// scratch holds per-node working buffers, keyed by node identity, so
	// an immutable tree can partition selections without allocating per
	// row or carrying mutable state in its nodes.
	scratch map[Expression]any
}

// NewBatchContext returns a context sized for rows.
func NewBatchContext(rows int) *BatchContext {
	ctx := &BatchContext{
		Resolved: make([]Resolved, rows),
		States:   make([]*state.Runtime, rows),
		scratch:  make(map[Expression]any),
	}
	for i := range ctx.States {
		ctx.States[i] = state.NewRuntime()
	}
	return ctx
}

// Len reports the number of rows the context holds.
func (ctx *BatchContext) Len() int { return len(ctx.Resolved) }

// Reset clears every outcome and binding so the context can be reused
// for another batch of the same size. Scratch buffers are retained.
func (ctx *BatchContext) Reset() {
	for i := range ctx.Resolved {
		ctx.Resolved[i] = Resolved{}
	}
	for _, st := range ctx.States {
		st.Clear()
	}
}

// scratchFor returns node's scratch buffer of type T, allocating it on
// first use. Distinct nodes never share a buffer, and a node sees the
// same buffer on every call within the context's lifetime.
func scratchFor[T any](ctx *BatchContext, node Expression) *T {
	if sc, ok := ctx.scratch[node].(*T); ok {
		return sc
	}
	if ctx.scratch == nil {
		ctx.scratch = make(map[Expression]any)
	}
	sc := new(T)
	ctx.scratch[node] = sc
	return sc
}

// ResolveBatchScalar implements ResolveBatch by evaluating node against
// each selected row in turn. It is the batch path for nodes with no
// columnar advantage, such as literals and operators.
func ResolveBatchScalar(node Expression, ctx *BatchContext, selection []int) {
	var sctx Context
	for _, row := range selection {
		sctx.State = ctx.States[row]
		v, err := node.Resolve(&sctx)
		if err != nil {
			ctx.Resolved[row] = Resolved{Err: err}
			continue
		}
		ctx.Resolved[row] = Resolved{Value: v}
	}
}
