package remap

import (
	"fmt"

	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// BindError reports an event that cannot satisfy a declared variable:
// the event has no value for it, or the value's kind does not fit the
// declared type. Binding is checked before evaluation so the type
// guarantees proven at compile time hold at runtime.
type BindError struct {
	// Ident is the declared variable.
	Ident string
	// Want is the declared type.
	Want types.Def
	// Got is the kind the event supplied, or zero when the event has no
	// value for the variable.
	Got value.Kind
}

// Error implements the error interface.
func (e *BindError) Error() string {
	if e.Got == 0 {
		return fmt.Sprintf("variable %q is declared %s but the event has no value for it", e.Ident, e.Want)
	}
	return fmt.Sprintf("variable %q is declared %s but the event supplies %s", e.Ident, e.Want, e.Got)
}
