// Package ast parses program documents into a positioned syntax tree.
//
// A document is YAML (or JSON, which the YAML parser accepts) with two
// sections: an optional variables mapping declaring the identifiers a
// program may reference, and a required expr holding the expression
// tree. Every parsed node carries the source span it came from, so
// later stages can attach diagnostics to the exact tokens.
package ast

import (
	"github.com/randalmurphal/remap/pkg/remap/diag"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// NodeKind discriminates the expression forms a document can hold.
type NodeKind int

const (
	// NodeLiteral is a constant: {lit: <value>}.
	NodeLiteral NodeKind = iota
	// NodeVariable is a variable reference: {var: <ident>}.
	NodeVariable
	// NodeIf is a conditional: {if: {predicate: ..., then: ..., else: ...}}.
	NodeIf
	// NodeBlock is an explicit statement sequence: {block: [...]}.
	NodeBlock
	// NodeOp is a binary operator: {op: [<symbol>, <left>, <right>]}.
	NodeOp
)

var nodeKindNames = [...]string{"lit", "var", "if", "block", "op"}

// String returns the document key for the kind.
func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(nodeKindNames) {
		return "unknown"
	}
	return nodeKindNames[k]
}

// Node is one expression in a document. Kind selects which of the
// remaining fields is populated. Span points at the node's most salient
// token: the literal value, the identifier, the operator symbol, or the
// introducing key.
type Node struct {
	Kind NodeKind
	Span diag.Span

	// Literal is the constant for NodeLiteral.
	Literal value.Value
	// Ident is the identifier for NodeVariable.
	Ident string
	// If holds the branches for NodeIf.
	If *IfNode
	// Stmts holds the statements for NodeBlock.
	Stmts []*Node
	// Op holds the operands for NodeOp.
	Op *OpNode
}

// IfNode is the body of a conditional node.
type IfNode struct {
	// Predicate is the condition, a statement sequence of at least one
	// node in well-formed documents.
	Predicate []*Node
	// PredicateSpan locates the condition for type diagnostics.
	PredicateSpan diag.Span
	// Then is the true branch.
	Then []*Node
	// Else is the false branch. nil means the document wrote none; an
	// empty non-nil slice means an explicit empty branch.
	Else []*Node
}

// OpNode is the body of an operator node.
type OpNode struct {
	// Symbol is the operator as written, for example ">=".
	Symbol string
	// SymbolSpan locates the symbol for unknown-operator diagnostics.
	SymbolSpan diag.Span
	Left       *Node
	Right      *Node
}

// VarDecl is one declaration from the variables section.
type VarDecl struct {
	// Ident is the declared identifier.
	Ident string
	// IdentSpan locates the identifier.
	IdentSpan diag.Span
	// Type is the type name as written, for example "integer".
	Type string
	// TypeSpan locates the type name.
	TypeSpan diag.Span
	// Value is the declared constant, or nil when the declaration only
	// names a type.
	Value value.Value
	// ValueSpan locates the constant.
	ValueSpan diag.Span
}

// Document is a parsed program document.
type Document struct {
	Variables []VarDecl
	Expr      *Node
}
