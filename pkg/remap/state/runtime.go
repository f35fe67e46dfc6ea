package state

import "github.com/randalmurphal/remap/pkg/remap/value"

// Runtime carries the live variable bindings for one evaluation. It is
// not safe for concurrent use; batch evaluation gives each row its own
// Runtime.
type Runtime struct {
	vars map[string]value.Value
}

// NewRuntime returns a runtime with no bindings.
func NewRuntime() *Runtime {
	return &Runtime{vars: make(map[string]value.Value)}
}

// Variable reports the value bound to ident and whether a binding exists.
func (r *Runtime) Variable(ident string) (value.Value, bool) {
	v, ok := r.vars[ident]
	return v, ok
}

// SetVariable binds ident to v, replacing any previous binding.
func (r *Runtime) SetVariable(ident string, v value.Value) {
	if r.vars == nil {
		r.vars = make(map[string]value.Value)
	}
	r.vars[ident] = v
}

// Clear removes every binding so the runtime can be reused for the next
// event without reallocating.
func (r *Runtime) Clear() {
	clear(r.vars)
}
