// Package types implements static type descriptors for expressions.
//
// A Def is a conservative over-approximation of what an expression can
// produce at runtime: the set of value kinds it may resolve to, plus whether
// resolution can fail. Inference never narrows below the truth; when in doubt
// a Def widens.
package types

import "github.com/randalmurphal/remap/pkg/remap/value"

// Def describes the static type of an expression: the kinds its result can
// have, and whether resolving it can fail at runtime.
//
// The zero Def has an empty kind set and is not meaningful; construct values
// with New or the kind-specific constructors.
type Def struct {
	kind     value.Kind
	fallible bool
}

// New returns an infallible Def with the given kind set.
func New(kind value.Kind) Def {
	return Def{kind: kind}
}

// Null returns the type of the null value.
func Null() Def { return New(value.KindNull) }

// Boolean returns the boolean type.
func Boolean() Def { return New(value.KindBoolean) }

// Integer returns the integer type.
func Integer() Def { return New(value.KindInteger) }

// Float returns the float type.
func Float() Def { return New(value.KindFloat) }

// String returns the string type.
func String() Def { return New(value.KindString) }

// Timestamp returns the timestamp type.
func Timestamp() Def { return New(value.KindTimestamp) }

// Array returns the array type.
func Array() Def { return New(value.KindArray) }

// Object returns the object type.
func Object() Def { return New(value.KindObject) }

// Any returns the type containing every kind.
func Any() Def { return New(value.KindAny) }

// Kind returns the set of kinds the expression can resolve to.
func (d Def) Kind() value.Kind {
	return d.kind
}

// IsFallible reports whether resolving the expression can fail.
func (d Def) IsFallible() bool {
	return d.fallible
}

// Fallible returns a copy of d marked as able to fail.
func (d Def) Fallible() Def {
	d.fallible = true
	return d
}

// Infallible returns a copy of d marked as never failing.
func (d Def) Infallible() Def {
	d.fallible = false
	return d
}

// Merge returns the union of both descriptors: a result may have any kind
// either side allows, and is fallible if either side is. Merge is associative
// and commutative.
func (d Def) Merge(other Def) Def {
	return Def{
		kind:     d.kind.Union(other.kind),
		fallible: d.fallible || other.fallible,
	}
}

// AddNull returns a copy of d that also admits the null kind. Used when a
// code path can skip producing a value, such as a conditional without an
// else branch.
func (d Def) AddNull() Def {
	d.kind = d.kind.Union(value.KindNull)
	return d
}

// Contains reports whether every kind in k is admitted by d.
func (d Def) Contains(k value.Kind) bool {
	return d.kind.Contains(k)
}

// IsBoolean reports whether d admits exactly the boolean kind.
func (d Def) IsBoolean() bool {
	return d.kind.Is(value.KindBoolean)
}

// String returns a display form such as "string or integer" or
// "integer (fallible)".
func (d Def) String() string {
	s := d.kind.String()
	if d.fallible {
		s += " (fallible)"
	}
	return s
}
