package ast

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/remap/pkg/remap/diag"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// maxParseDepth caps expression nesting so a hostile document cannot
// exhaust the stack. Compilation applies its own, configurable budget on
// top of this.
const maxParseDepth = 10000

// Parse reads a program document. The returned list carries every
// diagnostic found; a document returned alongside a non-empty list is
// partial and not fit to compile.
func Parse(src []byte) (*Document, diag.List) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, diag.List{{
			Severity: diag.SeverityError,
			Code:     diag.CodeInvalidDocument,
			Message:  fmt.Sprintf("document is not valid YAML: %v", err),
		}}
	}

	p := &parser{}
	doc := p.document(&root)
	return doc, p.diags
}

type parser struct {
	diags diag.List
}

func (p *parser) addAt(code int, message, label string, span diag.Span) {
	p.diags = append(p.diags, &diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     code,
		Message:  message,
		Labels:   []diag.Label{diag.Primary(label, span)},
	})
}

func (p *parser) document(root *yaml.Node) *Document {
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			p.noExpr()
			return nil
		}
		root = root.Content[0]
	}
	root = deref(root)
	if root.Kind != yaml.MappingNode {
		p.addAt(diag.CodeInvalidDocument, "document must be a mapping", "expected a mapping here", spanOf(root))
		return nil
	}

	doc := &Document{}
	sawExpr := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "variables":
			doc.Variables = p.variables(val)
		case "expr":
			sawExpr = true
			doc.Expr = p.node(val, 0)
		default:
			p.addAt(diag.CodeInvalidDocument,
				fmt.Sprintf("unknown section %q", key.Value),
				"not a document section", spanOf(key))
		}
	}
	if !sawExpr {
		p.noExpr()
	}
	return doc
}

func (p *parser) noExpr() {
	p.diags = append(p.diags, &diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     diag.CodeInvalidDocument,
		Message:  "document has no expr section",
		Notes:    []string{"add an expr mapping at the top level"},
	})
}

func (p *parser) variables(n *yaml.Node) []VarDecl {
	n = deref(n)
	if n.Kind != yaml.MappingNode {
		p.addAt(diag.CodeInvalidDocument,
			"variables must be a mapping of name to declaration",
			"expected a mapping here", spanOf(n))
		return nil
	}

	decls := make([]VarDecl, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], deref(n.Content[i+1])
		decl := VarDecl{Ident: key.Value, IdentSpan: spanOf(key)}

		switch val.Kind {
		case yaml.ScalarNode:
			decl.Type = val.Value
			decl.TypeSpan = spanOf(val)
		case yaml.MappingNode:
			if !p.declBody(&decl, val) {
				continue
			}
		default:
			p.addAt(diag.CodeInvalidDocument,
				fmt.Sprintf("declaration of %q must be a type name or a mapping", decl.Ident),
				"expected a type name or mapping here", spanOf(val))
			continue
		}
		decls = append(decls, decl)
	}
	return decls
}

func (p *parser) declBody(decl *VarDecl, n *yaml.Node) bool {
	ok := true
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "type":
			decl.Type = val.Value
			decl.TypeSpan = spanOf(val)
		case "value":
			v, err := literalValue(val)
			if err != nil {
				p.addAt(diag.CodeInvalidDocument,
					fmt.Sprintf("invalid constant for variable %q: %v", decl.Ident, err),
					"not a representable value", spanOf(val))
				ok = false
				continue
			}
			decl.Value = v
			decl.ValueSpan = spanOf(val)
		default:
			p.addAt(diag.CodeInvalidDocument,
				fmt.Sprintf("unknown declaration field %q", key.Value),
				"not a declaration field", spanOf(key))
			ok = false
		}
	}
	return ok
}

func (p *parser) node(n *yaml.Node, depth int) *Node {
	if depth > maxParseDepth {
		p.addAt(diag.CodeDepthLimit, "expression nests too deeply",
			"nesting exceeds the parser limit", spanOf(n))
		return nil
	}
	n = deref(n)
	if n.Kind != yaml.MappingNode {
		p.addAt(diag.CodeInvalidDocument, "expression must be a single-key mapping",
			"expected an expression here", spanOf(n))
		return nil
	}
	if len(n.Content) != 2 {
		p.addAt(diag.CodeInvalidDocument, "expression takes exactly one key",
			"one of lit, var, if, block, op", spanOf(n))
		return nil
	}

	key, val := n.Content[0], n.Content[1]
	switch key.Value {
	case "lit":
		v, err := literalValue(val)
		if err != nil {
			p.addAt(diag.CodeInvalidDocument, fmt.Sprintf("invalid literal: %v", err),
				"not a representable value", spanOf(val))
			return nil
		}
		return &Node{Kind: NodeLiteral, Span: spanOf(val), Literal: v}

	case "var":
		ident := deref(val)
		if ident.Kind != yaml.ScalarNode || ident.Tag != "!!str" || ident.Value == "" {
			p.addAt(diag.CodeInvalidDocument, "var takes an identifier",
				"expected an identifier here", spanOf(ident))
			return nil
		}
		return &Node{Kind: NodeVariable, Span: spanOf(ident), Ident: ident.Value}

	case "if":
		return p.ifNode(key, val, depth)

	case "block":
		stmts, ok := p.statements(val, depth)
		if !ok {
			return nil
		}
		return &Node{Kind: NodeBlock, Span: spanOf(key), Stmts: stmts}

	case "op":
		return p.opNode(val, depth)

	default:
		p.addAt(diag.CodeUnknownNodeKind,
			fmt.Sprintf("unknown expression kind %q", key.Value),
			"not an expression kind", spanOf(key))
		return nil
	}
}

// statements accepts either a single expression mapping or a sequence of
// them, normalizing to a slice.
func (p *parser) statements(n *yaml.Node, depth int) ([]*Node, bool) {
	n = deref(n)
	if n.Kind == yaml.MappingNode {
		stmt := p.node(n, depth+1)
		if stmt == nil {
			return nil, false
		}
		return []*Node{stmt}, true
	}
	if n.Kind != yaml.SequenceNode {
		p.addAt(diag.CodeInvalidDocument, "expected an expression or a list of expressions",
			"not an expression list", spanOf(n))
		return nil, false
	}

	stmts := make([]*Node, 0, len(n.Content))
	ok := true
	for _, item := range n.Content {
		stmt := p.node(item, depth+1)
		if stmt == nil {
			ok = false
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts, ok
}

func (p *parser) ifNode(key, val *yaml.Node, depth int) *Node {
	body := deref(val)
	if body.Kind != yaml.MappingNode {
		p.addAt(diag.CodeInvalidDocument, "if takes a mapping with predicate, then and else",
			"expected a mapping here", spanOf(body))
		return nil
	}

	out := &IfNode{}
	sawPredicate, sawThen := false, false
	ok := true
	for i := 0; i+1 < len(body.Content); i += 2 {
		k, v := body.Content[i], body.Content[i+1]
		switch k.Value {
		case "predicate":
			sawPredicate = true
			stmts, sok := p.statements(v, depth)
			if !sok {
				ok = false
				continue
			}
			out.Predicate = stmts
			out.PredicateSpan = statementsSpan(stmts, v)
		case "then":
			sawThen = true
			stmts, sok := p.statements(v, depth)
			if !sok {
				ok = false
				continue
			}
			out.Then = stmts
		case "else":
			stmts, sok := p.statements(v, depth)
			if !sok {
				ok = false
				continue
			}
			out.Else = stmts
		default:
			p.addAt(diag.CodeInvalidDocument, fmt.Sprintf("unknown if field %q", k.Value),
				"not an if field", spanOf(k))
			ok = false
		}
	}
	if !sawPredicate {
		p.addAt(diag.CodeInvalidDocument, "if has no predicate", "this if needs a predicate", spanOf(key))
		ok = false
	}
	if !sawThen {
		p.addAt(diag.CodeInvalidDocument, "if has no then branch", "this if needs a then branch", spanOf(key))
		ok = false
	}
	if !ok {
		return nil
	}
	return &Node{Kind: NodeIf, Span: spanOf(key), If: out}
}

func (p *parser) opNode(val *yaml.Node, depth int) *Node {
	body := deref(val)
	if body.Kind != yaml.SequenceNode || len(body.Content) != 3 {
		p.addAt(diag.CodeInvalidDocument, "op takes [symbol, left, right]",
			"expected a three-element list", spanOf(body))
		return nil
	}
	sym := deref(body.Content[0])
	if sym.Kind != yaml.ScalarNode {
		p.addAt(diag.CodeInvalidDocument, "operator symbol must be a string",
			"expected a symbol here", spanOf(sym))
		return nil
	}

	left := p.node(body.Content[1], depth+1)
	right := p.node(body.Content[2], depth+1)
	if left == nil || right == nil {
		return nil
	}
	return &Node{
		Kind: NodeOp,
		Span: spanOf(sym),
		Op:   &OpNode{Symbol: sym.Value, SymbolSpan: spanOf(sym), Left: left, Right: right},
	}
}

// literalValue decodes an arbitrary YAML node into a value.
func literalValue(n *yaml.Node) (value.Value, error) {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	return value.FromAny(raw)
}

// statementsSpan is the span type diagnostics point at: the lone
// statement when there is exactly one, the container otherwise.
func statementsSpan(stmts []*Node, container *yaml.Node) diag.Span {
	if len(stmts) == 1 {
		return stmts[0].Span
	}
	return spanOf(container)
}

// spanOf approximates a node's source span. Scalar spans cover the
// token; container spans degenerate to the opening position, which the
// renderer widens to the rest of the line.
func spanOf(n *yaml.Node) diag.Span {
	start := diag.Position{Line: n.Line, Column: n.Column}
	end := diag.Position{Line: n.Line, Column: n.Column + 1}
	if n.Kind == yaml.ScalarNode {
		end.Column = n.Column + len([]rune(n.Value))
	}
	return diag.Span{Start: start, End: end}
}

func deref(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		return n.Alias
	}
	return n
}
