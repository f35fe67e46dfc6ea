package expr

import (
	"fmt"

	"github.com/randalmurphal/remap/pkg/remap/state"
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// IfStatement branches on a boolean predicate. Without an alternative,
// rows whose predicate is false resolve to null.
//
// The predicate's type is proven boolean at construction, so evaluation
// trusts the recorded value; a non-boolean there means the environment
// was mutated behind the type checker's back, and evaluation panics.
type IfStatement struct {
	predicate   *Predicate
	consequent  *Block
	alternative Expression
}

// NewIfStatement returns the conditional. alternative may be nil; a
// nested *IfStatement there forms an else-if chain.
func NewIfStatement(predicate *Predicate, consequent *Block, alternative Expression) *IfStatement {
	return &IfStatement{predicate: predicate, consequent: consequent, alternative: alternative}
}

// Predicate returns the branch condition.
func (e *IfStatement) Predicate() *Predicate { return e.predicate }

// Consequent returns the true branch.
func (e *IfStatement) Consequent() *Block { return e.consequent }

// Alternative returns the false branch, or nil when none was written.
func (e *IfStatement) Alternative() Expression { return e.alternative }

// Resolve evaluates the predicate and then the branch it selects.
func (e *IfStatement) Resolve(ctx *Context) (value.Value, error) {
	cond, err := e.predicate.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	b, ok := cond.(value.Bool)
	if !ok {
		panic(fmt.Sprintf("if predicate resolved to %s, expected the checked boolean", cond.Kind()))
	}
	if bool(b) {
		return e.consequent.Resolve(ctx)
	}
	if e.alternative != nil {
		return e.alternative.Resolve(ctx)
	}
	return value.Null{}, nil
}

// ifScratch holds the two selections an if statement partitions rows
// into: sc.then is narrowed in place, sc.els collects false rows.
type ifScratch struct {
	then []int
	els  []int
}

// ResolveBatch partitions the selection by the predicate's per-row
// outcome and sends each partition through its branch.
//
// The predicate runs over the full selection first. Rows it faulted keep
// the fault and leave the live set; the remainder split on the recorded
// boolean. The true rows are compacted in place at the head of the
// scratch selection, false rows collect in a second buffer, and each
// branch then evaluates only its own rows. Order within a partition is
// not preserved; slots are indexed by row, so results land correctly
// regardless.
func (e *IfStatement) ResolveBatch(ctx *BatchContext, selection []int) {
	e.predicate.ResolveBatch(ctx, selection)

	sc := scratchFor[ifScratch](ctx, e)
	sc.then = append(sc.then[:0], selection...)

	// Drop faulted rows. The fault stays recorded in the row's slot.
	live := len(sc.then)
	for i := 0; i < live; {
		row := sc.then[i]
		if ctx.Resolved[row].Err != nil {
			live--
			sc.then[i], sc.then[live] = sc.then[live], sc.then[i]
			continue
		}
		i++
	}
	sc.then = sc.then[:live]

	// Split the healthy rows on the recorded boolean.
	sc.els = sc.els[:0]
	live = len(sc.then)
	for i := 0; i < live; {
		row := sc.then[i]
		b, ok := ctx.Resolved[row].Value.(value.Bool)
		if !ok {
			panic(fmt.Sprintf("if predicate resolved to %s, expected the checked boolean", ctx.Resolved[row].Value.Kind()))
		}
		if bool(b) {
			i++
			continue
		}
		live--
		sc.then[i], sc.then[live] = sc.then[live], sc.then[i]
		sc.els = append(sc.els, row)
	}
	sc.then = sc.then[:live]

	e.consequent.ResolveBatch(ctx, sc.then)

	if e.alternative != nil {
		e.alternative.ResolveBatch(ctx, sc.els)
		return
	}
	for _, row := range sc.els {
		ctx.Resolved[row] = Resolved{Value: value.Null{}}
	}
}

// TypeDef merges the branch types: both branches when an alternative
// exists, the consequent widened with null when it does not. A fallible
// predicate makes the whole conditional fallible.
func (e *IfStatement) TypeDef(st state.TypeState) types.Def {
	def := e.consequent.TypeDef(st)
	if e.alternative != nil {
		def = def.Merge(e.alternative.TypeDef(st))
	} else {
		def = def.AddNull()
	}
	if e.predicate.TypeDef(st).IsFallible() {
		def = def.Fallible()
	}
	return def
}

// String renders the conditional in source form.
func (e *IfStatement) String() string {
	if e.alternative == nil {
		return fmt.Sprintf("if %s %s", e.predicate, e.consequent)
	}
	return fmt.Sprintf("if %s %s else %s", e.predicate, e.consequent, e.alternative)
}

var _ Expression = (*IfStatement)(nil)
