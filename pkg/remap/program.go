package remap

import (
	"github.com/randalmurphal/remap/pkg/remap/expr"
	"github.com/randalmurphal/remap/pkg/remap/state"
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// Program is a compiled document. It is immutable and safe for
// concurrent use; each evaluation brings its own bindings.
//
// Declared variables are a contract on the events a program sees. A
// declaration with a constant is bound to that constant on every event.
// Every other declared variable must be supplied by the event with a
// kind that fits its declared type, or the event faults before
// evaluation. Event fields that are not declared are ignored.
type Program struct {
	root  expr.Expression
	local *state.LocalEnv
	def   types.Def
}

// TypeDef reports the program's inferred result type.
func (p *Program) TypeDef() types.Def { return p.def }

// Variables returns the declared identifiers in declaration order.
func (p *Program) Variables() []string { return p.local.Idents() }

// Constant reports the compile-time constant declared for ident, if any.
func (p *Program) Constant(ident string) (value.Value, bool) {
	decl, ok := p.local.Variable(ident)
	if !ok || decl.Value == nil {
		return nil, false
	}
	return decl.Value, true
}

// VariableType reports the declared type for ident, if declared.
func (p *Program) VariableType(ident string) (types.Def, bool) {
	decl, ok := p.local.Variable(ident)
	if !ok {
		return types.Def{}, false
	}
	return decl.Type, true
}

// String renders the compiled expression in source form.
func (p *Program) String() string { return p.root.String() }

// Resolve evaluates the program against one event's fields.
func (p *Program) Resolve(vars map[string]value.Value) (value.Value, error) {
	ctx := expr.NewContext()
	if err := p.bind(ctx.State, vars); err != nil {
		return nil, err
	}
	return p.root.Resolve(ctx)
}

// ResolveBatch evaluates the program against a batch of events in one
// tree walk. The outcome for batch[i] is at index i of the result: the
// program's value, or the fault that removed the event. An event that
// cannot be bound faults without being evaluated.
func (p *Program) ResolveBatch(batch []map[string]value.Value) []expr.Resolved {
	ctx := expr.NewBatchContext(len(batch))
	selection := make([]int, 0, len(batch))
	for row, vars := range batch {
		if err := p.bind(ctx.States[row], vars); err != nil {
			ctx.Resolved[row] = expr.Resolved{Err: err}
			continue
		}
		selection = append(selection, row)
	}

	p.root.ResolveBatch(ctx, selection)
	return ctx.Resolved
}

// bind populates one event's runtime from its fields, enforcing the
// declared contract so the types proven at compile time hold while the
// tree runs.
func (p *Program) bind(rt *state.Runtime, vars map[string]value.Value) error {
	for _, ident := range p.local.Idents() {
		decl, _ := p.local.Variable(ident)

		if decl.Value != nil {
			rt.SetVariable(ident, decl.Value)
			continue
		}

		v, ok := vars[ident]
		if !ok {
			return &BindError{Ident: ident, Want: decl.Type}
		}
		if !decl.Type.Contains(v.Kind()) {
			return &BindError{Ident: ident, Want: decl.Type, Got: v.Kind()}
		}
		rt.SetVariable(ident, v)
	}
	return nil
}
