package expr

import (
	"cmp"
	"fmt"
	"math"
	"strings"

	"github.com/randalmurphal/remap/pkg/remap/state"
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// OpKind identifies a binary operator.
type OpKind int

// Binary operators, in the order they render.
const (
	OpEq OpKind = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
)

var opSymbols = [...]string{"==", "!=", ">", ">=", "<", "<=", "&&", "||", "+", "-", "*", "/", "%"}

// String returns the operator symbol.
func (k OpKind) String() string {
	if k < 0 || int(k) >= len(opSymbols) {
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
	return opSymbols[k]
}

// Op applies a binary operator to two operands.
//
// Operand kinds are not checked at construction; an operator applied to
// values it is not defined for faults the row at runtime with an
// *OpError. && and || short-circuit: a false (or null) left side settles
// && and a true left side settles || without touching the right operand,
// faults included.
type Op struct {
	kind  OpKind
	left  Expression
	right Expression
}

// NewOp returns the operator node.
func NewOp(kind OpKind, left, right Expression) *Op {
	return &Op{kind: kind, left: left, right: right}
}

// Kind returns the operator.
func (o *Op) Kind() OpKind { return o.kind }

// Resolve evaluates the operands and applies the operator.
func (o *Op) Resolve(ctx *Context) (value.Value, error) {
	switch o.kind {
	case OpAnd:
		return o.resolveAnd(ctx)
	case OpOr:
		return o.resolveOr(ctx)
	}

	lhs, err := o.left.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	rhs, err := o.right.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	v, err := applyOp(o.kind, lhs, rhs)
	if err != nil {
		return nil, &OpError{Op: o.kind.String(), Left: lhs, Right: rhs, Err: err}
	}
	return v, nil
}

func (o *Op) resolveAnd(ctx *Context) (value.Value, error) {
	lhs, err := o.left.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	switch l := lhs.(type) {
	case value.Null:
		return value.Bool(false), nil
	case value.Bool:
		if !bool(l) {
			return value.Bool(false), nil
		}
	default:
		return nil, &OpError{Op: "&&", Left: lhs, Err: ErrIncompatibleOperands}
	}

	rhs, err := o.right.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	b, ok := rhs.(value.Bool)
	if !ok {
		return nil, &OpError{Op: "&&", Left: lhs, Right: rhs, Err: ErrIncompatibleOperands}
	}
	return b, nil
}

func (o *Op) resolveOr(ctx *Context) (value.Value, error) {
	lhs, err := o.left.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	switch l := lhs.(type) {
	case value.Null:
		// Null is falsy here; the right side decides.
	case value.Bool:
		if bool(l) {
			return value.Bool(true), nil
		}
	default:
		return nil, &OpError{Op: "||", Left: lhs, Err: ErrIncompatibleOperands}
	}

	rhs, err := o.right.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	b, ok := rhs.(value.Bool)
	if !ok {
		return nil, &OpError{Op: "||", Left: lhs, Right: rhs, Err: ErrIncompatibleOperands}
	}
	return b, nil
}

// ResolveBatch evaluates row by row; operators have no columnar form.
func (o *Op) ResolveBatch(ctx *BatchContext, selection []int) {
	ResolveBatchScalar(o, ctx, selection)
}

// TypeDef reports the operator's result type from the operand types.
func (o *Op) TypeDef(st state.TypeState) types.Def {
	l := o.left.TypeDef(st)
	r := o.right.TypeDef(st)
	operandsFallible := l.IsFallible() || r.IsFallible()

	switch o.kind {
	case OpEq, OpNe:
		// Any pair of values compares; mismatched kinds are unequal.
		d := types.Boolean()
		if operandsFallible {
			d = d.Fallible()
		}
		return d

	case OpGt, OpGe, OpLt, OpLe:
		d := types.Boolean()
		if operandsFallible || !orderedComparable(l.Kind(), r.Kind()) {
			d = d.Fallible()
		}
		return d

	case OpAnd, OpOr:
		d := types.Boolean()
		boolish := value.KindBoolean | value.KindNull
		if operandsFallible || !boolish.Contains(l.Kind()) || !boolish.Contains(r.Kind()) {
			d = d.Fallible()
		}
		return d

	default:
		return arithmeticTypeDef(o.kind, l, r)
	}
}

// String renders the expression infix.
func (o *Op) String() string {
	return fmt.Sprintf("%s %s %s", o.left, o.kind, o.right)
}

var _ Expression = (*Op)(nil)

func applyOp(kind OpKind, lhs, rhs value.Value) (value.Value, error) {
	switch kind {
	case OpEq:
		return value.Bool(valuesEqual(lhs, rhs)), nil
	case OpNe:
		return value.Bool(!valuesEqual(lhs, rhs)), nil
	case OpGt, OpGe, OpLt, OpLe:
		return compareOrdered(kind, lhs, rhs)
	case OpAdd:
		return addValues(lhs, rhs)
	default:
		return arithmetic(kind, lhs, rhs)
	}
}

// valuesEqual compares across numeric kinds, so 1 == 1.0. Everything
// else is the strict same-kind equality of the value package.
func valuesEqual(lhs, rhs value.Value) bool {
	if lhs.Kind() != rhs.Kind() {
		lf, lok := toFloat(lhs)
		rf, rok := toFloat(rhs)
		return lok && rok && lf == rf
	}
	return lhs.Equal(rhs)
}

func compareOrdered(kind OpKind, lhs, rhs value.Value) (value.Value, error) {
	var ord int
	switch l := lhs.(type) {
	case value.Integer:
		switch r := rhs.(type) {
		case value.Integer:
			ord = cmp.Compare(int64(l), int64(r))
		case value.Float:
			ord = cmp.Compare(float64(l), float64(r))
		default:
			return nil, ErrIncompatibleOperands
		}
	case value.Float:
		rf, ok := toFloat(rhs)
		if !ok {
			return nil, ErrIncompatibleOperands
		}
		ord = cmp.Compare(float64(l), rf)
	case value.String:
		r, ok := rhs.(value.String)
		if !ok {
			return nil, ErrIncompatibleOperands
		}
		ord = strings.Compare(string(l), string(r))
	case value.Timestamp:
		r, ok := rhs.(value.Timestamp)
		if !ok {
			return nil, ErrIncompatibleOperands
		}
		ord = l.Time.Compare(r.Time)
	default:
		return nil, ErrIncompatibleOperands
	}

	switch kind {
	case OpGt:
		return value.Bool(ord > 0), nil
	case OpGe:
		return value.Bool(ord >= 0), nil
	case OpLt:
		return value.Bool(ord < 0), nil
	default:
		return value.Bool(ord <= 0), nil
	}
}

func addValues(lhs, rhs value.Value) (value.Value, error) {
	switch l := lhs.(type) {
	case value.Integer:
		switch r := rhs.(type) {
		case value.Integer:
			return value.Integer(int64(l) + int64(r)), nil
		case value.Float:
			return value.Float(float64(l) + float64(r)), nil
		}
	case value.Float:
		if rf, ok := toFloat(rhs); ok {
			return value.Float(float64(l) + rf), nil
		}
	case value.String:
		if r, ok := rhs.(value.String); ok {
			return value.String(string(l) + string(r)), nil
		}
	}
	return nil, ErrIncompatibleOperands
}

func arithmetic(kind OpKind, lhs, rhs value.Value) (value.Value, error) {
	li, lInt := lhs.(value.Integer)
	ri, rInt := rhs.(value.Integer)
	if lInt && rInt {
		switch kind {
		case OpSub:
			return value.Integer(int64(li) - int64(ri)), nil
		case OpMul:
			return value.Integer(int64(li) * int64(ri)), nil
		case OpDiv:
			if ri == 0 {
				return nil, ErrDivideByZero
			}
			return value.Integer(int64(li) / int64(ri)), nil
		case OpRem:
			if ri == 0 {
				return nil, ErrModuloByZero
			}
			return value.Integer(int64(li) % int64(ri)), nil
		}
	}

	lf, lok := toFloat(lhs)
	rf, rok := toFloat(rhs)
	if !lok || !rok {
		return nil, ErrIncompatibleOperands
	}
	switch kind {
	case OpSub:
		return value.Float(lf - rf), nil
	case OpMul:
		return value.Float(lf * rf), nil
	case OpDiv:
		if rf == 0 {
			return nil, ErrDivideByZero
		}
		return value.Float(lf / rf), nil
	case OpRem:
		if rf == 0 {
			return nil, ErrModuloByZero
		}
		return value.Float(math.Mod(lf, rf)), nil
	}
	return nil, ErrIncompatibleOperands
}

func toFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case value.Integer:
		return float64(n), true
	case value.Float:
		return float64(n), true
	}
	return 0, false
}

// orderedComparable reports whether the ordered comparisons are total
// over the given operand kinds.
func orderedComparable(l, r value.Kind) bool {
	numeric := value.KindInteger | value.KindFloat
	switch {
	case numeric.Contains(l) && numeric.Contains(r):
		return true
	case l == value.KindString && r == value.KindString:
		return true
	case l == value.KindTimestamp && r == value.KindTimestamp:
		return true
	}
	return false
}

func arithmeticTypeDef(kind OpKind, l, r types.Def) types.Def {
	numeric := value.KindInteger | value.KindFloat
	lk, rk := l.Kind(), r.Kind()
	fallible := l.IsFallible() || r.IsFallible()

	var result value.Kind
	switch {
	case lk == value.KindInteger && rk == value.KindInteger:
		result = value.KindInteger
	case numeric.Contains(lk) && numeric.Contains(rk):
		result = value.KindFloat
	case kind == OpAdd && lk == value.KindString && rk == value.KindString:
		result = value.KindString
	default:
		// Operand kinds include pairs the operator is not defined for,
		// so the row may fault; the result covers the defined outcomes.
		result = value.KindInteger | value.KindFloat
		if kind == OpAdd {
			result |= value.KindString
		}
		fallible = true
	}

	if kind == OpDiv || kind == OpRem {
		fallible = true
	}

	d := types.New(result)
	if fallible {
		return d.Fallible()
	}
	return d
}
