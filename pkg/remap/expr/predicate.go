package expr

import (
	"strings"

	"github.com/randalmurphal/remap/pkg/remap/diag"
	"github.com/randalmurphal/remap/pkg/remap/state"
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// Predicate is the condition position of an if statement: one or more
// statements whose final result decides the branch.
//
// Construction proves the predicate resolves to a boolean, so evaluation
// can read the branch decision without checking kinds. A predicate may
// still fault at runtime; the if statement isolates faulted rows before
// branching.
type Predicate struct {
	statements []Expression
}

// NewPredicate type-checks statements as a branch condition. A predicate
// whose type is anything but boolean, including the empty predicate, is
// rejected with a *NonBooleanPredicateError.
func NewPredicate(st state.TypeState, statements []Expression, span diag.Span) (*Predicate, error) {
	p := &Predicate{statements: statements}
	if def := p.TypeDef(st); !def.IsBoolean() {
		return nil, &NonBooleanPredicateError{Got: def, Span: span}
	}
	return p, nil
}

// Resolve runs each statement in order and returns the last result.
func (p *Predicate) Resolve(ctx *Context) (value.Value, error) {
	var out value.Value = value.Null{}
	for _, st := range p.statements {
		v, err := st.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		out = v
	}
	return out, nil
}

// ResolveBatch runs each statement over the selection, narrowing it as
// rows fault, and leaves the final statement's booleans in the slots.
func (p *Predicate) ResolveBatch(ctx *BatchContext, selection []int) {
	resolveBatchSequential(p, ctx, p.statements, selection)
}

// TypeDef reports the final statement's type, fallible when any
// statement can fault.
func (p *Predicate) TypeDef(st state.TypeState) types.Def {
	return sequenceTypeDef(st, p.statements)
}

// String renders a single statement bare and longer sequences in
// parentheses.
func (p *Predicate) String() string {
	if len(p.statements) == 1 {
		return p.statements[0].String()
	}
	var sb strings.Builder
	sb.WriteString("(")
	for i, st := range p.statements {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(st.String())
	}
	sb.WriteString(")")
	return sb.String()
}

var _ Expression = (*Predicate)(nil)
