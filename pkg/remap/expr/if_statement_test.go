package expr

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/randalmurphal/remap/pkg/remap/state"
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

// flagConditional builds `if flag { 1 } else { 2 }` over a boolean flag.
func flagConditional(t *testing.T, withElse bool) (*IfStatement, state.TypeState) {
	t.Helper()
	st := state.NewTypeState()
	st.Local.Declare("flag", state.Variable{Type: types.Boolean()})

	pred := mustPredicate(t, st, mustVariable(t, st.Local, "flag"))
	cons := NewBlock([]Expression{NewLiteral(value.Integer(1))})
	var alt Expression
	if withElse {
		alt = NewBlock([]Expression{NewLiteral(value.Integer(2))})
	}
	return NewIfStatement(pred, cons, alt), st
}

func TestIfStatement_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		withElse bool
		flag     bool
		want     value.Value
	}{
		{name: "true takes consequent", withElse: true, flag: true, want: value.Integer(1)},
		{name: "false takes alternative", withElse: true, flag: false, want: value.Integer(2)},
		{name: "false without alternative is null", withElse: false, flag: false, want: value.Null{}},
		{name: "true without alternative", withElse: false, flag: true, want: value.Integer(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, _ := flagConditional(t, tt.withElse)

			ctx := NewContext()
			ctx.State.SetVariable("flag", value.Bool(tt.flag))

			got, err := node.Resolve(ctx)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Resolve = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIfStatement_ResolveBatch_Partition(t *testing.T) {
	node, _ := flagConditional(t, true)

	ctx, sel := batchOf([]map[string]value.Value{
		{"flag": value.Bool(true)},
		{"flag": value.Bool(false)},
		{"flag": value.Bool(true)},
		{"flag": value.Bool(false)},
		{"flag": value.Bool(true)},
	})

	node.ResolveBatch(ctx, sel)

	want := []int64{1, 2, 1, 2, 1}
	for row, w := range want {
		r := ctx.Resolved[row]
		if r.Err != nil {
			t.Fatalf("row %d faulted: %v", row, r.Err)
		}
		if !r.Value.Equal(value.Integer(w)) {
			t.Errorf("row %d = %v, want %d", row, r.Value, w)
		}
	}
}

func TestIfStatement_ResolveBatch_NoAlternative(t *testing.T) {
	node, _ := flagConditional(t, false)

	ctx, sel := batchOf([]map[string]value.Value{
		{"flag": value.Bool(false)},
		{"flag": value.Bool(true)},
		{"flag": value.Bool(false)},
	})

	node.ResolveBatch(ctx, sel)

	want := []value.Value{value.Null{}, value.Integer(1), value.Null{}}
	for row, w := range want {
		r := ctx.Resolved[row]
		if r.Err != nil {
			t.Fatalf("row %d faulted: %v", row, r.Err)
		}
		if !r.Value.Equal(w) {
			t.Errorf("row %d = %v, want %v", row, r.Value, w)
		}
	}
}

// faultingConditional builds `if 10 / count == 5 { "high" } else { "low" }`,
// whose predicate faults on count == 0.
func faultingConditional(t *testing.T) *IfStatement {
	t.Helper()
	st := state.NewTypeState()
	st.Local.Declare("count", state.Variable{Type: types.Integer()})

	pred := mustPredicate(t, st, NewOp(OpEq,
		NewOp(OpDiv, NewLiteral(value.Integer(10)), mustVariable(t, st.Local, "count")),
		NewLiteral(value.Integer(5)),
	))
	return NewIfStatement(pred,
		NewBlock([]Expression{NewLiteral(value.String("high"))}),
		NewBlock([]Expression{NewLiteral(value.String("low"))}),
	)
}

func TestIfStatement_ResolveBatch_FaultIsolation(t *testing.T) {
	node := faultingConditional(t)

	ctx, sel := batchOf([]map[string]value.Value{
		{"count": value.Integer(2)},
		{"count": value.Integer(0)},
		{"count": value.Integer(5)},
		{"count": value.Integer(0)},
		{"count": value.Integer(2)},
	})

	node.ResolveBatch(ctx, sel)

	if !ctx.Resolved[0].Value.Equal(value.String("high")) {
		t.Errorf("row 0 = %v, want \"high\"", ctx.Resolved[0].Value)
	}
	if !ctx.Resolved[2].Value.Equal(value.String("low")) {
		t.Errorf("row 2 = %v, want \"low\"", ctx.Resolved[2].Value)
	}
	if !ctx.Resolved[4].Value.Equal(value.String("high")) {
		t.Errorf("row 4 = %v, want \"high\"", ctx.Resolved[4].Value)
	}
	for _, row := range []int{1, 3} {
		if !errors.Is(ctx.Resolved[row].Err, ErrDivideByZero) {
			t.Errorf("row %d err = %v, want division by zero", row, ctx.Resolved[row].Err)
		}
	}
}

func TestIfStatement_ResolveBatch_ScalarAgreement(t *testing.T) {
	node := faultingConditional(t)

	counts := []int64{2, 0, 5, 3, 0, 2, 10}
	bindings := make([]map[string]value.Value, len(counts))
	for i, c := range counts {
		bindings[i] = map[string]value.Value{"count": value.Integer(c)}
	}

	ctx, sel := batchOf(bindings)
	node.ResolveBatch(ctx, sel)

	for row, c := range counts {
		sctx := NewContext()
		sctx.State.SetVariable("count", value.Integer(c))
		scalarVal, scalarErr := node.Resolve(sctx)

		batch := ctx.Resolved[row]
		if (scalarErr == nil) != batch.OK() {
			t.Fatalf("row %d: scalar err = %v, batch err = %v", row, scalarErr, batch.Err)
		}
		if scalarErr != nil {
			continue
		}
		if !batch.Value.Equal(scalarVal) {
			t.Errorf("row %d: batch = %v, scalar = %v", row, batch.Value, scalarVal)
		}
	}
}

func TestIfStatement_ResolveBatch_SelectionNotMutated(t *testing.T) {
	node, _ := flagConditional(t, true)

	ctx, sel := batchOf([]map[string]value.Value{
		{"flag": value.Bool(true)},
		{"flag": value.Bool(false)},
		{"flag": value.Bool(true)},
	})

	before := make([]int, len(sel))
	copy(before, sel)

	node.ResolveBatch(ctx, sel)

	if !reflect.DeepEqual(sel, before) {
		t.Errorf("selection mutated: %v, was %v", sel, before)
	}
}

func TestIfStatement_ResolveBatch_ContextReuse(t *testing.T) {
	node, _ := flagConditional(t, true)

	ctx, sel := batchOf([]map[string]value.Value{
		{"flag": value.Bool(true)},
		{"flag": value.Bool(false)},
	})
	node.ResolveBatch(ctx, sel)

	ctx.Reset()
	ctx.States[0].SetVariable("flag", value.Bool(false))
	ctx.States[1].SetVariable("flag", value.Bool(true))
	node.ResolveBatch(ctx, sel)

	if !ctx.Resolved[0].Value.Equal(value.Integer(2)) {
		t.Errorf("row 0 = %v, want 2 after rebinding", ctx.Resolved[0].Value)
	}
	if !ctx.Resolved[1].Value.Equal(value.Integer(1)) {
		t.Errorf("row 1 = %v, want 1 after rebinding", ctx.Resolved[1].Value)
	}
}

func TestIfStatement_ResolveBatch_Concurrent(t *testing.T) {
	node, _ := flagConditional(t, true)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()

			flags := []bool{g%2 == 0, g%2 != 0, true, false}
			bindings := make([]map[string]value.Value, len(flags))
			for i, f := range flags {
				bindings[i] = map[string]value.Value{"flag": value.Bool(f)}
			}

			ctx, sel := batchOf(bindings)
			for run := 0; run < 50; run++ {
				ctx.Reset()
				for i, f := range flags {
					ctx.States[i].SetVariable("flag", value.Bool(f))
				}
				node.ResolveBatch(ctx, sel)

				for row, f := range flags {
					want := value.Integer(2)
					if f {
						want = value.Integer(1)
					}
					if !ctx.Resolved[row].Value.Equal(want) {
						t.Errorf("goroutine %d row %d = %v, want %v", g, row, ctx.Resolved[row].Value, want)
						return
					}
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestIfStatement_ElseIfChain(t *testing.T) {
	st := state.NewTypeState()
	st.Local.Declare("level", state.Variable{Type: types.String()})

	levelIs := func(s string) *Predicate {
		return mustPredicate(t, st, NewOp(OpEq, mustVariable(t, st.Local, "level"), NewLiteral(value.String(s))))
	}

	inner := NewIfStatement(levelIs("warn"),
		NewBlock([]Expression{NewLiteral(value.Integer(2))}),
		NewBlock([]Expression{NewLiteral(value.Integer(1))}),
	)
	node := NewIfStatement(levelIs("error"),
		NewBlock([]Expression{NewLiteral(value.Integer(3))}),
		inner,
	)

	ctx, sel := batchOf([]map[string]value.Value{
		{"level": value.String("error")},
		{"level": value.String("warn")},
		{"level": value.String("info")},
		{"level": value.String("error")},
	})

	node.ResolveBatch(ctx, sel)

	want := []int64{3, 2, 1, 3}
	for row, w := range want {
		r := ctx.Resolved[row]
		if r.Err != nil {
			t.Fatalf("row %d faulted: %v", row, r.Err)
		}
		if !r.Value.Equal(value.Integer(w)) {
			t.Errorf("row %d = %v, want %d", row, r.Value, w)
		}
	}
}

func TestIfStatement_TypeDef(t *testing.T) {
	st := state.NewTypeState()
	st.Local.Declare("flag", state.Variable{Type: types.Boolean()})
	st.Local.Declare("count", state.Variable{Type: types.Integer()})

	flagPred := mustPredicate(t, st, mustVariable(t, st.Local, "flag"))
	intBlock := NewBlock([]Expression{NewLiteral(value.Integer(1))})
	strBlock := NewBlock([]Expression{NewLiteral(value.String("s"))})

	t.Run("branch union", func(t *testing.T) {
		node := NewIfStatement(flagPred, intBlock, strBlock)
		def := node.TypeDef(st)
		if got, want := def.Kind(), value.KindInteger|value.KindString; got != want {
			t.Errorf("Kind = %v, want %v", got, want)
		}
		if def.IsFallible() {
			t.Error("IsFallible = true for infallible branches")
		}
	})

	t.Run("missing alternative adds null", func(t *testing.T) {
		node := NewIfStatement(flagPred, intBlock, nil)
		def := node.TypeDef(st)
		if got, want := def.Kind(), value.KindInteger|value.KindNull; got != want {
			t.Errorf("Kind = %v, want %v", got, want)
		}
	})

	t.Run("fallible predicate taints result", func(t *testing.T) {
		pred := mustPredicate(t, st, NewOp(OpEq,
			NewOp(OpDiv, NewLiteral(value.Integer(10)), mustVariable(t, st.Local, "count")),
			NewLiteral(value.Integer(5)),
		))
		node := NewIfStatement(pred, intBlock, strBlock)
		if def := node.TypeDef(st); !def.IsFallible() {
			t.Errorf("TypeDef = %v, want fallible", def)
		}
	})
}

func TestIfStatement_String(t *testing.T) {
	node, _ := flagConditional(t, true)
	if got, want := node.String(), "if flag { 1 } else { 2 }"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	node, _ = flagConditional(t, false)
	if got, want := node.String(), "if flag { 1 }"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
