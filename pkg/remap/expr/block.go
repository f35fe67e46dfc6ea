package expr

import (
	"strings"

	"github.com/randalmurphal/remap/pkg/remap/state"
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// Block is a statement sequence that resolves to its final statement's
// value. An empty block resolves to null.
type Block struct {
	statements []Expression
}

// NewBlock returns a block over statements.
func NewBlock(statements []Expression) *Block {
	return &Block{statements: statements}
}

// Statements returns the block's statements in order. The slice is
// shared with the block and must not be modified.
func (b *Block) Statements() []Expression { return b.statements }

// Resolve runs each statement in order and returns the last result. The
// first fault stops the block and becomes the block's fault.
func (b *Block) Resolve(ctx *Context) (value.Value, error) {
	var out value.Value = value.Null{}
	for _, st := range b.statements {
		v, err := st.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		out = v
	}
	return out, nil
}

// ResolveBatch runs each statement over the selection. A row that faults
// keeps its fault and drops out of the selection seen by later
// statements; healthy rows carry the final statement's value.
func (b *Block) ResolveBatch(ctx *BatchContext, selection []int) {
	resolveBatchSequential(b, ctx, b.statements, selection)
}

// TypeDef reports the final statement's type, fallible when any
// statement can fault.
func (b *Block) TypeDef(st state.TypeState) types.Def {
	return sequenceTypeDef(st, b.statements)
}

// String renders the statements between braces, separated by semicolons.
func (b *Block) String() string {
	if len(b.statements) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, st := range b.statements {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(st.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

var _ Expression = (*Block)(nil)

// seqScratch holds the live selection a statement sequence narrows as
// rows fault.
type seqScratch struct {
	live []int
}

// resolveBatchSequential is the shared batch path for statement
// sequences. Each statement evaluates the rows still live; rows whose
// slot holds a fault afterwards are swapped out of the live set so later
// statements never observe them.
func resolveBatchSequential(node Expression, ctx *BatchContext, statements []Expression, selection []int) {
	switch len(statements) {
	case 0:
		for _, row := range selection {
			ctx.Resolved[row] = Resolved{Value: value.Null{}}
		}
		return
	case 1:
		statements[0].ResolveBatch(ctx, selection)
		return
	}

	sc := scratchFor[seqScratch](ctx, node)
	sc.live = append(sc.live[:0], selection...)

	for _, st := range statements {
		st.ResolveBatch(ctx, sc.live)

		n := len(sc.live)
		for i := 0; i < n; {
			row := sc.live[i]
			if ctx.Resolved[row].Err != nil {
				n--
				sc.live[i], sc.live[n] = sc.live[n], sc.live[i]
				continue
			}
			i++
		}
		sc.live = sc.live[:n]
	}
}

// sequenceTypeDef is the shared inference for statement sequences: the
// final statement's type, fallible when any earlier statement is.
func sequenceTypeDef(st state.TypeState, statements []Expression) types.Def {
	if len(statements) == 0 {
		return types.Null()
	}
	def := statements[len(statements)-1].TypeDef(st)
	for _, s := range statements[:len(statements)-1] {
		if s.TypeDef(st).IsFallible() {
			def = def.Fallible()
		}
	}
	return def
}
