package expr

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/remap/pkg/remap/diag"
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// Sentinel errors for operator faults.
var (
	// ErrDivideByZero indicates the right operand of / resolved to zero.
	ErrDivideByZero = errors.New("division by zero")

	// ErrModuloByZero indicates the right operand of % resolved to zero.
	ErrModuloByZero = errors.New("modulo by zero")

	// ErrIncompatibleOperands indicates an operator was applied to values
	// it is not defined for.
	ErrIncompatibleOperands = errors.New("incompatible operand types")
)

// UndefinedVariableError reports a reference to a variable that is not
// declared in the local environment. It is raised while the program is
// being built, never while it runs.
type UndefinedVariableError struct {
	// Ident is the undefined identifier.
	Ident string
	// Suggestion is the closest declared identifier or builtin constant
	// name, measured by edit distance.
	Suggestion string
	// Span locates the reference in the source document.
	Span diag.Span
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable %q", e.Ident)
}

// Diagnostic renders the error, attaching the suggestion as a secondary
// label when one exists.
func (e *UndefinedVariableError) Diagnostic() *diag.Diagnostic {
	d := &diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     diag.CodeUndefinedVariable,
		Message:  "call to undefined variable",
		Labels:   []diag.Label{diag.Primary("undefined variable", e.Span)},
	}
	if e.Suggestion != "" {
		d.Labels = append(d.Labels, diag.Context(fmt.Sprintf("did you mean %q?", e.Suggestion), e.Span))
	}
	return d
}

// NonBooleanPredicateError reports an if predicate whose inferred type is
// anything other than boolean.
type NonBooleanPredicateError struct {
	// Got is the type the predicate resolves to.
	Got types.Def
	// Span locates the predicate in the source document.
	Span diag.Span
}

// Error implements the error interface.
func (e *NonBooleanPredicateError) Error() string {
	return fmt.Sprintf("predicate resolves to %s, not boolean", e.Got)
}

// Diagnostic renders the error, naming the offending type.
func (e *NonBooleanPredicateError) Diagnostic() *diag.Diagnostic {
	return &diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     diag.CodeNonBooleanPredicate,
		Message:  "the if predicate must resolve to a boolean",
		Labels: []diag.Label{
			diag.Primary("this predicate must resolve to a boolean", e.Span),
			diag.Context(fmt.Sprintf("instead it resolves to %s", e.Got), e.Span),
		},
	}
}

var (
	_ diag.Message = (*UndefinedVariableError)(nil)
	_ diag.Message = (*NonBooleanPredicateError)(nil)
)

// OpError is a runtime operator fault carrying the operands that
// produced it.
type OpError struct {
	// Op is the operator symbol, for example "/".
	Op string
	// Left is the resolved left operand.
	Left value.Value
	// Right is the resolved right operand, or nil when the fault was
	// raised before the right side was evaluated.
	Right value.Value
	// Err is the underlying fault.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Right == nil {
		return fmt.Sprintf("%v: %s %s", e.Err, e.Left, e.Op)
	}
	return fmt.Sprintf("%v: %s %s %s", e.Err, e.Left, e.Op, e.Right)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OpError) Unwrap() error {
	return e.Err
}
