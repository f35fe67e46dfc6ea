package expr

import (
	"github.com/randalmurphal/remap/pkg/remap/state"
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// Noop is the empty expression: it resolves to null and never faults.
// Trees assembled directly, rather than compiled from a document, use it
// to fill an expression slot with no effect.
type Noop struct{}

// NewNoop returns the empty expression.
func NewNoop() *Noop { return &Noop{} }

// Resolve returns null.
func (*Noop) Resolve(*Context) (value.Value, error) {
	return value.Null{}, nil
}

// ResolveBatch writes null to every selected row.
func (*Noop) ResolveBatch(ctx *BatchContext, selection []int) {
	for _, row := range selection {
		ctx.Resolved[row] = Resolved{Value: value.Null{}}
	}
}

// TypeDef reports null; the empty expression never faults.
func (*Noop) TypeDef(state.TypeState) types.Def {
	return types.Null()
}

// String renders the expression's resolved form.
func (*Noop) String() string { return "null" }

var _ Expression = (*Noop)(nil)
