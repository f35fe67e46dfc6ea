// Package value defines the runtime data model for event records.
//
// Every piece of data flowing through a program - field contents, literals,
// intermediate results - is a Value. The set of kinds is closed: null,
// boolean, integer, float, string, timestamp, array, and object. Arrays and
// objects nest arbitrarily.
//
// Values are immutable by convention. Expressions that produce derived data
// build new values rather than mutating inputs.
package value

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies one or more value kinds as a bitset.
//
// A concrete Value always reports a single kind. Sets with multiple bits
// describe the possible kinds of an expression result and are produced by
// static type inference.
type Kind uint16

// Single value kinds.
const (
	KindNull Kind = 1 << iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindTimestamp
	KindArray
	KindObject
)

// KindAny is the set of all kinds.
const KindAny = KindNull | KindBoolean | KindInteger | KindFloat |
	KindString | KindTimestamp | KindArray | KindObject

// kindNames maps single kinds to their display names, in declaration order.
var kindNames = []struct {
	kind Kind
	name string
}{
	{KindNull, "null"},
	{KindBoolean, "boolean"},
	{KindInteger, "integer"},
	{KindFloat, "float"},
	{KindString, "string"},
	{KindTimestamp, "timestamp"},
	{KindArray, "array"},
	{KindObject, "object"},
}

// Contains reports whether every kind in other is also in k.
func (k Kind) Contains(other Kind) bool {
	return k&other == other
}

// Intersects reports whether k and other share at least one kind.
func (k Kind) Intersects(other Kind) bool {
	return k&other != 0
}

// Is reports whether k is exactly other.
func (k Kind) Is(other Kind) bool {
	return k == other
}

// Union returns the set holding the kinds of both k and other.
func (k Kind) Union(other Kind) Kind {
	return k | other
}

// String returns a human-readable form such as "string or integer".
func (k Kind) String() string {
	if k == KindAny {
		return "any"
	}
	var names []string
	for _, kn := range kindNames {
		if k.Contains(kn.kind) {
			names = append(names, kn.name)
		}
	}
	if len(names) == 0 {
		return "unknown"
	}
	return strings.Join(names, " or ")
}

// Value is the runtime representation of a piece of event data.
//
// The set of implementations is closed: Null, Bool, Integer, Float, String,
// Timestamp, Array, and Object.
type Value interface {
	// Kind returns the single kind of this value.
	Kind() Kind

	// Equal reports deep equality with another value.
	// Values of different kinds are never equal.
	Equal(other Value) bool

	// String returns the display form used in diagnostics and logs.
	String() string

	isValue()
}

// Null is the absent value.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// Integer is a 64-bit signed integer value.
type Integer int64

// Float is a 64-bit floating point value.
type Float float64

// String is a UTF-8 string value.
type String string

// Timestamp is a point in time.
type Timestamp struct {
	time.Time
}

// Array is an ordered sequence of values.
type Array []Value

// Object maps field names to values.
type Object map[string]Value

func (Null) isValue()      {}
func (Bool) isValue()      {}
func (Integer) isValue()   {}
func (Float) isValue()     {}
func (String) isValue()    {}
func (Timestamp) isValue() {}
func (Array) isValue()     {}
func (Object) isValue()    {}

// Kind implements Value.
func (Null) Kind() Kind { return KindNull }

// Kind implements Value.
func (Bool) Kind() Kind { return KindBoolean }

// Kind implements Value.
func (Integer) Kind() Kind { return KindInteger }

// Kind implements Value.
func (Float) Kind() Kind { return KindFloat }

// Kind implements Value.
func (String) Kind() Kind { return KindString }

// Kind implements Value.
func (Timestamp) Kind() Kind { return KindTimestamp }

// Kind implements Value.
func (Array) Kind() Kind { return KindArray }

// Kind implements Value.
func (Object) Kind() Kind { return KindObject }

// Equal implements Value.
func (Null) Equal(other Value) bool {
	_, ok := other.(Null)
	return ok
}

// Equal implements Value.
func (v Bool) Equal(other Value) bool {
	o, ok := other.(Bool)
	return ok && v == o
}

// Equal implements Value.
func (v Integer) Equal(other Value) bool {
	o, ok := other.(Integer)
	return ok && v == o
}

// Equal implements Value.
func (v Float) Equal(other Value) bool {
	o, ok := other.(Float)
	return ok && v == o
}

// Equal implements Value.
func (v String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && v == o
}

// Equal implements Value.
func (v Timestamp) Equal(other Value) bool {
	o, ok := other.(Timestamp)
	return ok && v.Time.Equal(o.Time)
}

// Equal implements Value.
func (v Array) Equal(other Value) bool {
	o, ok := other.(Array)
	if !ok || len(v) != len(o) {
		return false
	}
	for i := range v {
		if !v[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Equal implements Value.
func (v Object) Equal(other Value) bool {
	o, ok := other.(Object)
	if !ok || len(v) != len(o) {
		return false
	}
	for key, val := range v {
		oval, ok := o[key]
		if !ok || !val.Equal(oval) {
			return false
		}
	}
	return true
}

// String implements Value.
func (Null) String() string { return "null" }

// String implements Value.
func (v Bool) String() string { return strconv.FormatBool(bool(v)) }

// String implements Value.
func (v Integer) String() string { return strconv.FormatInt(int64(v), 10) }

// String implements Value.
func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// String implements Value.
func (v String) String() string { return strconv.Quote(string(v)) }

// String implements Value.
func (v Timestamp) String() string { return v.UTC().Format(time.RFC3339Nano) }

// String implements Value.
func (v Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, elem := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(elem.String())
	}
	b.WriteByte(']')
	return b.String()
}

// String implements Value.
// Keys are sorted so the display form is deterministic.
func (v Object) String() string {
	keys := make([]string, 0, len(v))
	for key := range v {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(key))
		b.WriteString(": ")
		b.WriteString(v[key].String())
	}
	b.WriteByte('}')
	return b.String()
}
