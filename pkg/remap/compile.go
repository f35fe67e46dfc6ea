package remap

import (
	"errors"
	"fmt"
	"os"

	"github.com/randalmurphal/remap/pkg/remap/ast"
	"github.com/randalmurphal/remap/pkg/remap/diag"
	"github.com/randalmurphal/remap/pkg/remap/expr"
	"github.com/randalmurphal/remap/pkg/remap/state"
	"github.com/randalmurphal/remap/pkg/remap/types"
)

// typeNames resolves the type names a declaration may use. Aliases map
// to the same type.
var typeNames = map[string]types.Def{
	"null":      types.Null(),
	"boolean":   types.Boolean(),
	"bool":      types.Boolean(),
	"integer":   types.Integer(),
	"int":       types.Integer(),
	"float":     types.Float(),
	"string":    types.String(),
	"timestamp": types.Timestamp(),
	"array":     types.Array(),
	"object":    types.Object(),
	"any":       types.Any(),
}

// typeNameOrder keeps unknown-type suggestions deterministic.
var typeNameOrder = []string{
	"any", "array", "bool", "boolean", "float", "int", "integer",
	"null", "object", "string", "timestamp",
}

// opKinds resolves operator symbols to operators.
var opKinds = map[string]expr.OpKind{
	"==": expr.OpEq,
	"!=": expr.OpNe,
	">":  expr.OpGt,
	">=": expr.OpGe,
	"<":  expr.OpLt,
	"<=": expr.OpLe,
	"&&": expr.OpAnd,
	"||": expr.OpOr,
	"+":  expr.OpAdd,
	"-":  expr.OpSub,
	"*":  expr.OpMul,
	"/":  expr.OpDiv,
	"%":  expr.OpRem,
}

// Compile parses src and builds an executable program.
//
// The returned list carries every diagnostic found. Warnings may
// accompany a usable program; if the list has errors the program is nil.
// Render the list with diag.Render for compiler-style output.
func Compile(src []byte, opts ...Option) (*Program, diag.List) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	doc, diags := ast.Parse(src)
	if diags.HasErrors() {
		return nil, diags
	}

	c := &compiler{maxDepth: o.maxDepth, diags: diags}
	local := c.buildEnv(doc.Variables)
	st := state.TypeState{Local: local, External: state.NewExternalEnv()}

	root, ok := c.node(st, doc.Expr, 0)
	if !ok || c.diags.HasErrors() {
		return nil, c.diags
	}

	return &Program{
		root:  root,
		local: local,
		def:   root.TypeDef(st),
	}, c.diags
}

// CompileFile reads path and compiles it.
func CompileFile(path string, opts ...Option) (*Program, diag.List) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.List{{
			Severity: diag.SeverityError,
			Code:     diag.CodeInvalidDocument,
			Message:  fmt.Sprintf("cannot read program: %v", err),
		}}
	}
	return Compile(src, opts...)
}

type compiler struct {
	maxDepth int
	diags    diag.List
}

func (c *compiler) add(d *diag.Diagnostic) {
	c.diags = append(c.diags, d)
}

// addErr records err, using its own diagnostic when it carries one.
func (c *compiler) addErr(err error) {
	var msg diag.Message
	if errors.As(err, &msg) {
		c.add(msg.Diagnostic())
		return
	}
	c.add(&diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     diag.CodeInvalidDocument,
		Message:  err.Error(),
	})
}

// buildEnv turns the declarations into the local environment programs
// are checked against. The first declaration of a name wins; later ones
// warn and are dropped.
func (c *compiler) buildEnv(decls []ast.VarDecl) *state.LocalEnv {
	local := state.NewLocalEnv()
	for _, decl := range decls {
		if _, exists := local.Variable(decl.Ident); exists {
			c.add(&diag.Diagnostic{
				Severity: diag.SeverityWarning,
				Code:     diag.CodeDuplicateVariable,
				Message:  "variable declared more than once",
				Labels:   []diag.Label{diag.Primary("variable declared more than once", decl.IdentSpan)},
				Notes:    []string{"the first declaration wins"},
			})
			continue
		}

		def, ok := c.declType(decl)
		if !ok {
			continue
		}

		if decl.Value != nil && !def.Contains(decl.Value.Kind()) {
			c.add(&diag.Diagnostic{
				Severity: diag.SeverityError,
				Code:     diag.CodeMismatchedConstant,
				Message:  "constant does not match its declared type",
				Labels: []diag.Label{
					diag.Primary(fmt.Sprintf("this constant is %s", decl.Value.Kind()), decl.ValueSpan),
					diag.Context(fmt.Sprintf("declared as %s", def), decl.TypeSpan),
				},
			})
			continue
		}

		local.Declare(decl.Ident, state.Variable{Type: def, Value: decl.Value})
	}
	return local
}

// declType resolves a declaration's type: the named type when one was
// written, otherwise the kind of its constant.
func (c *compiler) declType(decl ast.VarDecl) (types.Def, bool) {
	if decl.Type == "" {
		if decl.Value != nil {
			return types.New(decl.Value.Kind()), true
		}
		c.add(&diag.Diagnostic{
			Severity: diag.SeverityError,
			Code:     diag.CodeInvalidDocument,
			Message:  fmt.Sprintf("declaration of %q names neither a type nor a value", decl.Ident),
			Labels:   []diag.Label{diag.Primary("declared without a type", decl.IdentSpan)},
		})
		return types.Def{}, false
	}

	def, ok := typeNames[decl.Type]
	if !ok {
		d := &diag.Diagnostic{
			Severity: diag.SeverityError,
			Code:     diag.CodeUnknownType,
			Message:  fmt.Sprintf("unknown type %q", decl.Type),
			Labels:   []diag.Label{diag.Primary("unknown type", decl.TypeSpan)},
		}
		if best, found := diag.Nearest(decl.Type, typeNameOrder); found {
			d.Labels = append(d.Labels, diag.Context(fmt.Sprintf("did you mean %q?", best), decl.TypeSpan))
		}
		c.add(d)
		return types.Def{}, false
	}
	return def, true
}

func (c *compiler) node(st state.TypeState, n *ast.Node, depth int) (expr.Expression, bool) {
	if depth > c.maxDepth {
		c.add(&diag.Diagnostic{
			Severity: diag.SeverityError,
			Code:     diag.CodeDepthLimit,
			Message:  "expression nests too deeply",
			Labels:   []diag.Label{diag.Primary(fmt.Sprintf("nesting exceeds the limit of %d", c.maxDepth), n.Span)},
		})
		return nil, false
	}

	switch n.Kind {
	case ast.NodeLiteral:
		return expr.NewLiteral(n.Literal), true

	case ast.NodeVariable:
		v, err := expr.NewVariable(st.Local, n.Ident, n.Span)
		if err != nil {
			c.addErr(err)
			return nil, false
		}
		return v, true

	case ast.NodeIf:
		return c.ifNode(st, n, depth)

	case ast.NodeBlock:
		stmts, ok := c.statements(st, n.Stmts, depth)
		if !ok {
			return nil, false
		}
		return expr.NewBlock(stmts), true

	case ast.NodeOp:
		kind, known := opKinds[n.Op.Symbol]
		if !known {
			c.add(&diag.Diagnostic{
				Severity: diag.SeverityError,
				Code:     diag.CodeUnknownOperator,
				Message:  fmt.Sprintf("unknown operator %q", n.Op.Symbol),
				Labels:   []diag.Label{diag.Primary("not an operator", n.Op.SymbolSpan)},
			})
			// Still walk the operands so their problems surface too.
			c.node(st, n.Op.Left, depth+1)
			c.node(st, n.Op.Right, depth+1)
			return nil, false
		}
		left, lok := c.node(st, n.Op.Left, depth+1)
		right, rok := c.node(st, n.Op.Right, depth+1)
		if !lok || !rok {
			return nil, false
		}
		return expr.NewOp(kind, left, right), true
	}

	c.add(&diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     diag.CodeUnknownNodeKind,
		Message:  fmt.Sprintf("unknown expression kind %q", n.Kind),
		Labels:   []diag.Label{diag.Primary("not an expression kind", n.Span)},
	})
	return nil, false
}

// statements compiles a sequence, continuing past failures so one pass
// reports every problem.
func (c *compiler) statements(st state.TypeState, nodes []*ast.Node, depth int) ([]expr.Expression, bool) {
	stmts := make([]expr.Expression, 0, len(nodes))
	ok := true
	for _, n := range nodes {
		stmt, sok := c.node(st, n, depth)
		if !sok {
			ok = false
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts, ok
}

func (c *compiler) ifNode(st state.TypeState, n *ast.Node, depth int) (expr.Expression, bool) {
	predStmts, pok := c.statements(st, n.If.Predicate, depth+1)
	thenStmts, tok := c.statements(st, n.If.Then, depth+1)

	var alt expr.Expression
	aok := true
	if n.If.Else != nil {
		var altStmts []expr.Expression
		altStmts, aok = c.statements(st, n.If.Else, depth+1)
		if aok {
			alt = expr.NewBlock(altStmts)
		}
	}

	if !pok || !tok || !aok {
		return nil, false
	}

	pred, err := expr.NewPredicate(st, predStmts, n.If.PredicateSpan)
	if err != nil {
		c.addErr(err)
		return nil, false
	}
	return expr.NewIfStatement(pred, expr.NewBlock(thenStmts), alt), true
}
