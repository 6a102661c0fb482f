package ast

import (
	"testing"

	"github.com/glintlang/glint/internal/token"
)

func TestPrintRendersSExpressions(t *testing.T) {
	assign := NewAssign(loc(1, 1), Unit{},
		NewIdent[Unit](loc(1, 1), Unit{}, "x"),
		NewBinOp(loc(1, 5), Unit{}, token.PLUS,
			NewIdent[Unit](loc(1, 5), Unit{}, "y"),
			NewIntLit[Unit](loc(1, 9), Unit{}, token.IntLiteral{Value: 2})))

	want := "(assign x (PLUS y 2))"
	if got := Print[Unit](assign); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrintErasesAttributeType(t *testing.T) {
	unitNode := NewIntLit[Unit](loc(1, 1), Unit{}, token.IntLiteral{Value: 42})
	intNode := NewIntLit[int](loc(1, 1), 99, token.IntLiteral{Value: 42})
	if Print[Unit](unitNode) != Print[int](intNode) {
		t.Fatal("attribute type leaked into the rendering")
	}
}

func TestPrintStruct(t *testing.T) {
	st := NewStruct(loc(1, 1), Unit{},
		[]string{"x", "y"},
		[]Node[Unit]{
			NewPrimitiveType[Unit](loc(1, 9), Unit{}, token.I32),
			NewPrimitiveType[Unit](loc(1, 17), Unit{}, token.I32),
		})
	want := "(struct (x I32) (y I32))"
	if got := Print[Unit](st); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPrintIfWithElse(t *testing.T) {
	n := NewIf(loc(1, 1), Unit{},
		[]Node[Unit]{NewTrue[Unit](loc(1, 4), Unit{})},
		[]Node[Unit]{NewIntLit[Unit](loc(1, 9), Unit{}, token.IntLiteral{Value: 1})},
		NewIntLit[Unit](loc(1, 16), Unit{}, token.IntLiteral{Value: 2}))
	want := "(if (true 1) (else 2))"
	if got := Print[Unit](n); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
