package expr

import (
	"github.com/randalmurphal/remap/pkg/remap/diag"
	"github.com/randalmurphal/remap/pkg/remap/state"
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// Variable references a declared variable by identifier.
//
// The reference is validated against the local environment when the node
// is built, so an undefined name is rejected before the program can run.
// If the declaration bound a compile-time constant, the node captures it
// as an advisory snapshot; resolution always reads the live binding.
type Variable struct {
	ident string
	span  diag.Span

	// constant is the declaration's compile-time value, if any. Advisory
	// only: Resolve never consults it.
	constant value.Value
}

// builtins are suggestion candidates of last resort, the constant names
// a writer may have meant instead of a variable. Declared identifiers
// are ranked first so they win edit-distance ties.
var builtins = [...]string{"null", "true", "false"}

// NewVariable checks ident against local and returns the reference. An
// undefined identifier yields an *UndefinedVariableError carrying the
// closest declared name or builtin constant as a suggestion.
func NewVariable(local *state.LocalEnv, ident string, span diag.Span) (*Variable, error) {
	decl, ok := local.Variable(ident)
	if !ok {
		return nil, &UndefinedVariableError{
			Ident:      ident,
			Suggestion: suggestIdent(local, ident),
			Span:       span,
		}
	}
	return &Variable{ident: ident, span: span, constant: decl.Value}, nil
}

func suggestIdent(local *state.LocalEnv, ident string) string {
	idents := local.Idents()
	candidates := make([]string, 0, len(idents)+len(builtins))
	candidates = append(candidates, idents...)
	candidates = append(candidates, builtins[:]...)
	best, _ := diag.Nearest(ident, candidates)
	return best
}

// Ident returns the referenced identifier.
func (v *Variable) Ident() string { return v.ident }

// Constant returns the compile-time value captured from the declaration,
// or nil when the variable is only populated at runtime.
func (v *Variable) Constant() value.Value { return v.constant }

// Resolve reads the live binding, or null when none has been set.
// Variable references never fault.
func (v *Variable) Resolve(ctx *Context) (value.Value, error) {
	if val, ok := ctx.State.Variable(v.ident); ok {
		return val, nil
	}
	return value.Null{}, nil
}

// ResolveBatch reads each selected row's live binding.
func (v *Variable) ResolveBatch(ctx *BatchContext, selection []int) {
	for _, row := range selection {
		val, ok := ctx.States[row].Variable(v.ident)
		if !ok {
			val = value.Null{}
		}
		ctx.Resolved[row] = Resolved{Value: val}
	}
}

// TypeDef reports the declared type, or null when the identifier is no
// longer present in the environment.
func (v *Variable) TypeDef(st state.TypeState) types.Def {
	if decl, ok := st.Local.Variable(v.ident); ok {
		return decl.Type
	}
	return types.Null()
}

// String renders the identifier.
func (v *Variable) String() string { return v.ident }

var _ Expression = (*Variable)(nil)
