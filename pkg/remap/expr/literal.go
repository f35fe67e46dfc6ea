package expr

import (
	"github.com/randalmurphal/remap/pkg/remap/state"
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// Literal is a constant expression.
type Literal struct {
	val value.Value
}

// NewLiteral returns a literal holding v. A nil v is treated as null.
func NewLiteral(v value.Value) *Literal {
	if v == nil {
		v = value.Null{}
	}
	return &Literal{val: v}
}

// Value returns the constant.
func (l *Literal) Value() value.Value { return l.val }

// Resolve returns the constant.
func (l *Literal) Resolve(*Context) (value.Value, error) {
	return l.val, nil
}

// ResolveBatch writes the constant to every selected row.
func (l *Literal) ResolveBatch(ctx *BatchContext, selection []int) {
	for _, row := range selection {
		ctx.Resolved[row] = Resolved{Value: l.val}
	}
}

// TypeDef reports the constant's kind; literals never fault.
func (l *Literal) TypeDef(state.TypeState) types.Def {
	return types.New(l.val.Kind())
}

// String renders the constant as source text.
func (l *Literal) String() string { return l.val.String() }

var _ Expression = (*Literal)(nil)
