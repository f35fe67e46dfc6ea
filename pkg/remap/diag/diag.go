// Package diag implements the diagnostic model for program validation.
//
// Construction-time failures (undefined variables, non-boolean predicates,
// malformed documents) are reported as Diagnostics: a numeric code, a
// message, and one or more labeled source spans. Diagnostics are collected
// rather than returned one at a time, so a single validation pass reports
// every problem in a program.
//
// Runtime faults are deliberately not diagnostics; they are plain errors
// scoped to individual records.
package diag

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic.
type Severity int

// Severity levels, ordered from most to least severe.
const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the lowercase display name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Position is a 1-based line and column in the source document.
type Position struct {
	Line   int
	Column int
}

// Span marks a region of the source document. End is exclusive: the span
// covers columns Start.Column up to but not including End.Column. The zero
// Span means "no location".
type Span struct {
	Start Position
	End   Position
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s == Span{}
}

// String returns the start position as "line:column".
func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Start.Line, s.Start.Column)
}

// Label attaches a message to a source span. A primary label marks the cause
// of the diagnostic; context labels add supporting detail.
type Label struct {
	Message string
	Primary bool
	Span    Span
}

// Primary returns a primary label.
func Primary(message string, span Span) Label {
	return Label{Message: message, Primary: true, Span: span}
}

// Context returns a context label.
func Context(message string, span Span) Label {
	return Label{Message: message, Span: span}
}

// Diagnostic is one reported problem with a program.
type Diagnostic struct {
	Severity Severity
	Code     int
	Message  string
	Labels   []Label
	Notes    []string
}

// Error implements the error interface, returning the header line, such as
// "error[E701]: call to undefined variable".
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s[E%03d]: %s", d.Severity, d.Code, d.Message)
}

// Span returns the span of the first primary label, or the first label when
// none is primary, or the zero span.
func (d *Diagnostic) Span() Span {
	for _, l := range d.Labels {
		if l.Primary {
			return l.Span
		}
	}
	if len(d.Labels) > 0 {
		return d.Labels[0].Span
	}
	return Span{}
}

// List is an ordered collection of diagnostics. It implements error so a
// validation pass can hand back everything it found in one value.
type List []*Diagnostic

// Error implements the error interface by joining the header line of every
// diagnostic.
func (l List) Error() string {
	msgs := make([]string, len(l))
	for i, d := range l {
		msgs[i] = d.Error()
	}
	return strings.Join(msgs, "\n")
}

// HasErrors reports whether any diagnostic has error severity.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Message is implemented by errors that carry a full diagnostic. Validation
// code unwraps these to collect rich reports instead of flat error strings.
type Message interface {
	error

	// Diagnostic returns the diagnostic form of the error.
	Diagnostic() *Diagnostic
}
