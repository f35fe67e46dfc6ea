package expr

import (
	"errors"
	"testing"

	"github.com/randalmurphal/remap/pkg/remap/diag"
	"github.com/randalmurphal/remap/pkg/remap/state"
	"github.com/randalmurphal/remap/pkg/remap/types"
	"github.com/randalmurphal/remap/pkg/remap/value"
)

func TestNewPredicate(t *testing.T) {
	st := state.NewTypeState()
	st.Local.Declare("flag", state.Variable{Type: types.Boolean()})
	st.Local.Declare("count", state.Variable{Type: types.Integer()})

	tests := []struct {
		name       string
		statements []Expression
		wantKind   value.Kind
		wantErr    bool
	}{
		{
			name:       "boolean variable",
			statements: []Expression{mustVariable(t, st.Local, "flag")},
		},
		{
			name:       "fallible boolean is allowed",
			statements: []Expression{NewOp(OpEq, NewOp(OpDiv, NewLiteral(value.Integer(10)), mustVariable(t, st.Local, "count")), NewLiteral(value.Integer(5)))},
		},
		{
			name:       "final statement decides",
			statements: []Expression{NewLiteral(value.Integer(1)), mustVariable(t, st.Local, "flag")},
		},
		{
			name:       "integer literal rejected",
			statements: []Expression{NewLiteral(value.Integer(1))},
			wantKind:   value.KindInteger,
			wantErr:    true,
		},
		{
			name:       "integer variable rejected",
			statements: []Expression{mustVariable(t, st.Local, "count")},
			wantKind:   value.KindInteger,
			wantErr:    true,
		},
		{
			name:     "empty predicate rejected",
			wantKind: value.KindNull,
			wantErr:  true,
		},
		{
			name:       "boolean or null rejected",
			statements: []Expression{NewIfStatement(mustPredicate(t, st, mustVariable(t, st.Local, "flag")), NewBlock([]Expression{NewLiteral(value.Bool(true))}), nil)},
			wantKind:   value.KindBoolean | value.KindNull,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPredicate(st, tt.statements, diag.Span{})
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("NewPredicate: %v", err)
				}
				return
			}

			var perr *NonBooleanPredicateError
			if !errors.As(err, &perr) {
				t.Fatalf("error type = %T, want *NonBooleanPredicateError", err)
			}
			if perr.Got.Kind() != tt.wantKind {
				t.Errorf("Got kind = %v, want %v", perr.Got.Kind(), tt.wantKind)
			}
		})
	}
}

func TestNonBooleanPredicateError_Diagnostic(t *testing.T) {
	span := diag.Span{Start: diag.Position{Line: 5, Column: 23}, End: diag.Position{Line: 5, Column: 28}}
	perr := &NonBooleanPredicateError{Got: types.Integer(), Span: span}

	d := perr.Diagnostic()
	if d.Code != diag.CodeNonBooleanPredicate {
		t.Errorf("Code = %d, want %d", d.Code, diag.CodeNonBooleanPredicate)
	}
	if len(d.Labels) != 2 {
		t.Fatalf("len(Labels) = %d, want 2", len(d.Labels))
	}
	if d.Labels[1].Message != "instead it resolves to integer" {
		t.Errorf("context label = %q", d.Labels[1].Message)
	}
	if d.Span() != span {
		t.Errorf("Span() = %+v, want %+v", d.Span(), span)
	}
}

func TestPredicate_Resolve(t *testing.T) {
	st := state.NewTypeState()
	st.Local.Declare("flag", state.Variable{Type: types.Boolean()})
	p := mustPredicate(t, st, NewLiteral(value.Integer(1)), mustVariable(t, st.Local, "flag"))

	ctx := NewContext()
	ctx.State.SetVariable("flag", value.Bool(true))

	got, err := p.Resolve(ctx)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !got.Equal(value.Bool(true)) {
		t.Errorf("Resolve = %v, want true", got)
	}
}

func TestPredicate_String(t *testing.T) {
	st := state.NewTypeState()
	st.Local.Declare("flag", state.Variable{Type: types.Boolean()})

	single := mustPredicate(t, st, mustVariable(t, st.Local, "flag"))
	if got := single.String(); got != "flag" {
		t.Errorf("String() = %q, want %q", got, "flag")
	}

	multi := mustPredicate(t, st, NewLiteral(value.Integer(1)), mustVariable(t, st.Local, "flag"))
	if got, want := multi.String(), "(1; flag)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
