// Package state holds the environments a program is checked and run
// against: the compile-time view of declared variables and the event
// record, and the mutable bindings used while evaluating.
package state

import (
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// Variable is one declared variable: its inferred type and, when the
// declaration bound a constant, the value known at compile time.
type Variable struct {
	Type types.Def

	// Value is the compile-time constant bound by the declaration, or
	// nil when the variable is only populated at runtime. It is advisory:
	// evaluation always reads the live binding, never this snapshot.
	Value value.Value
}

// LocalEnv records the variables visible to an expression while it is
// being constructed and type checked. Declaration order is preserved so
// diagnostics can rank suggestion candidates deterministically.
type LocalEnv struct {
	idents []string
	vars   map[string]Variable
}

// NewLocalEnv returns an empty local environment.
func NewLocalEnv() *LocalEnv {
	return &LocalEnv{vars: make(map[string]Variable)}
}

// Declare adds ident to the environment, replacing any earlier binding.
// Redeclaring keeps the original position in the declaration order.
func (e *LocalEnv) Declare(ident string, v Variable) {
	if e.vars == nil {
		e.vars = make(map[string]Variable)
	}
	if _, ok := e.vars[ident]; !ok {
		e.idents = append(e.idents, ident)
	}
	e.vars[ident] = v
}

// Variable reports the binding for ident and whether it is declared.
func (e *LocalEnv) Variable(ident string) (Variable, bool) {
	v, ok := e.vars[ident]
	return v, ok
}

// Idents returns the declared identifiers in declaration order. The
// returned slice is shared with the environment and must not be modified.
func (e *LocalEnv) Idents() []string {
	return e.idents
}

// Len reports the number of declared variables.
func (e *LocalEnv) Len() int {
	return len(e.idents)
}

// ExternalEnv describes the event record an expression evaluates against.
type ExternalEnv struct {
	// Target is the type of the event record. Programs reshape records,
	// so the default target is an object.
	Target types.Def
}

// NewExternalEnv returns an external environment with an object target.
func NewExternalEnv() *ExternalEnv {
	return &ExternalEnv{Target: types.Object()}
}

// TypeState bundles both environments for type inference. It is passed
// by value; the environments themselves are shared.
type TypeState struct {
	Local    *LocalEnv
	External *ExternalEnv
}

// NewTypeState returns a TypeState over fresh environments.
func NewTypeState() TypeState {
	return TypeState{Local: NewLocalEnv(), External: NewExternalEnv()}
}
