package parser

import (
	"testing"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/lexer"
	"github.com/glintlang/glint/internal/token"
)

func mustParse(t *testing.T, src string) ast.Node[ast.Unit] {
	t.Helper()
	toks, _, err := lexer.Tokenize([]byte(src))
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	n, err := Parse(toks, []byte(src))
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return n
}

func TestLiteralParses(t *testing.T) {
	n := mustParse(t, "42")
	lit, ok := n.(*ast.IntLit[ast.Unit])
	if !ok {
		t.Fatalf("got %T, want *ast.IntLit", n)
	}
	if lit.Value.Value != 42 {
		t.Fatalf("got %d, want 42", lit.Value.Value)
	}
}

func TestAssignmentOfBinOp(t *testing.T) {
	n := mustParse(t, "x = y + 2")
	assign, ok := n.(*ast.Assign[ast.Unit])
	if !ok {
		t.Fatalf("got %T, want *ast.Assign", n)
	}
	if _, ok := assign.Lhs.(*ast.Ident[ast.Unit]); !ok {
		t.Fatalf("lhs: got %T, want *ast.Ident", assign.Lhs)
	}
	bin, ok := assign.Rhs.(*ast.BinOp[ast.Unit])
	if !ok {
		t.Fatalf("rhs: got %T, want *ast.BinOp", assign.Rhs)
	}
	if bin.Op != token.PLUS {
		t.Fatalf("op: got %s, want PLUS", bin.Op)
	}
}

func TestNotInDesugars(t *testing.T) {
	n := mustParse(t, "x not in xs")
	unary, ok := n.(*ast.UnaryOp[ast.Unit])
	if !ok || unary.Op != token.NOT {
		t.Fatalf("got %T (%v), want UnaryOp(NOT, ...)", n, n)
	}
	bin, ok := unary.Operand.(*ast.BinOp[ast.Unit])
	if !ok || bin.Op != token.IN {
		t.Fatalf("operand: got %#v, want BinOp(IN, ...)", unary.Operand)
	}
}

func TestIsNotDesugars(t *testing.T) {
	n := mustParse(t, "x is not y")
	unary, ok := n.(*ast.UnaryOp[ast.Unit])
	if !ok || unary.Op != token.NOT {
		t.Fatalf("got %T, want UnaryOp(NOT, ...)", n)
	}
	bin, ok := unary.Operand.(*ast.BinOp[ast.Unit])
	if !ok || bin.Op != token.IS {
		t.Fatalf("operand: got %#v, want BinOp(IS, ...)", unary.Operand)
	}
}

func TestPipeLeftAssociative(t *testing.T) {
	n := mustParse(t, "a | b | c")
	outer, ok := n.(*ast.BinOp[ast.Unit])
	if !ok || outer.Op != token.PIPE {
		t.Fatalf("got %T, want BinOp(PIPE, ...)", n)
	}
	if _, ok := outer.Lhs.(*ast.BinOp[ast.Unit]); !ok {
		t.Fatalf("lhs: got %T, want nested BinOp (left-associative)", outer.Lhs)
	}
	if _, ok := outer.Rhs.(*ast.Ident[ast.Unit]); !ok {
		t.Fatalf("rhs: got %T, want bare Ident", outer.Rhs)
	}
}

func TestPowerRightAssociative(t *testing.T) {
	n := mustParse(t, "a ** b ** c")
	outer, ok := n.(*ast.BinOp[ast.Unit])
	if !ok || outer.Op != token.POW {
		t.Fatalf("got %T, want BinOp(POW, ...)", n)
	}
	if _, ok := outer.Lhs.(*ast.Ident[ast.Unit]); !ok {
		t.Fatalf("lhs: got %T, want bare Ident (right-associative)", outer.Lhs)
	}
	if _, ok := outer.Rhs.(*ast.BinOp[ast.Unit]); !ok {
		t.Fatalf("rhs: got %T, want nested BinOp", outer.Rhs)
	}
}

func TestDanglingElifIsFatal(t *testing.T) {
	toks, _, err := lexer.Tokenize([]byte("elif x\n"))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if _, err := Parse(toks, []byte("elif x\n")); err == nil {
		t.Fatal("expected dangling elif error")
	}
}

func TestDanglingElseIsFatal(t *testing.T) {
	toks, _, err := lexer.Tokenize([]byte("else 1\n"))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if _, err := Parse(toks, []byte("else 1\n")); err == nil {
		t.Fatal("expected dangling else error")
	}
}

func TestVarDefWithDeclaredType(t *testing.T) {
	n := mustParse(t, "var x: int = 42")
	def, ok := n.(*ast.VarDef[ast.Unit])
	if !ok {
		t.Fatalf("got %T, want *ast.VarDef", n)
	}
	if def.Name != "x" {
		t.Fatalf("name: got %q, want x", def.Name)
	}
	texpr, ok := def.DeclType.(*ast.TypeExpr[ast.Unit])
	if !ok {
		t.Fatalf("decl type: got %T, want *ast.TypeExpr", def.DeclType)
	}
	if _, ok := texpr.Child.(*ast.PrimitiveType[ast.Unit]); !ok {
		t.Fatalf("decl type child: got %T, want *ast.PrimitiveType", texpr.Child)
	}
	if _, ok := def.Rhs.(*ast.IntLit[ast.Unit]); !ok {
		t.Fatalf("rhs: got %T, want *ast.IntLit", def.Rhs)
	}
}

func TestFnDeclParamTypePropagation(t *testing.T) {
	n := mustParse(t, "def f(x, y: int): int = x + y")
	def, ok := n.(*ast.VarDef[ast.Unit])
	if !ok {
		t.Fatalf("got %T, want *ast.VarDef", n)
	}
	fn, ok := def.Rhs.(*ast.FnExpr[ast.Unit])
	if !ok {
		t.Fatalf("rhs: got %T, want *ast.FnExpr", def.Rhs)
	}
	if len(fn.ArgNames) != 2 || fn.ArgNames[0] != "x" || fn.ArgNames[1] != "y" {
		t.Fatalf("arg names: got %v", fn.ArgNames)
	}
	for i, at := range fn.ArgTypes {
		texpr, ok := at.(*ast.TypeExpr[ast.Unit])
		if !ok {
			t.Fatalf("arg %d type: got %T, want *ast.TypeExpr (propagated)", i, at)
		}
		if _, ok := texpr.Child.(*ast.PrimitiveType[ast.Unit]); !ok {
			t.Fatalf("arg %d type child: got %T, want *ast.PrimitiveType", i, texpr.Child)
		}
	}
	if _, ok := fn.Body.(*ast.BinOp[ast.Unit]); !ok {
		t.Fatalf("body: got %T, want *ast.BinOp", fn.Body)
	}
}

func TestStructTypeDecl(t *testing.T) {
	n := mustParse(t, "type Point(x, y: int)")
	def, ok := n.(*ast.DefType[ast.Unit])
	if !ok {
		t.Fatalf("got %T, want *ast.DefType", n)
	}
	if def.Name != "Point" {
		t.Fatalf("name: got %q, want Point", def.Name)
	}
	texpr, ok := def.TypeExpr.(*ast.TypeExpr[ast.Unit])
	if !ok {
		t.Fatalf("type expr: got %T, want *ast.TypeExpr", def.TypeExpr)
	}
	st, ok := texpr.Child.(*ast.Struct[ast.Unit])
	if !ok {
		t.Fatalf("child: got %T, want *ast.Struct", texpr.Child)
	}
	if len(st.Names) != 2 || st.Names[0] != "x" || st.Names[1] != "y" {
		t.Fatalf("field names: got %v", st.Names)
	}
	for i, ft := range st.Types {
		fexpr, ok := ft.(*ast.TypeExpr[ast.Unit])
		if !ok {
			t.Fatalf("field %d type: got %T, want *ast.TypeExpr (propagated)", i, ft)
		}
		if _, ok := fexpr.Child.(*ast.PrimitiveType[ast.Unit]); !ok {
			t.Fatalf("field %d type child: got %T, want *ast.PrimitiveType", i, fexpr.Child)
		}
	}
}

func TestStructTypeDeclLayoutForm(t *testing.T) {
	n := mustParse(t, "type Point:\n    x: int\n    y: int\n")
	def, ok := n.(*ast.DefType[ast.Unit])
	if !ok {
		t.Fatalf("got %T, want *ast.DefType", n)
	}
	texpr := def.TypeExpr.(*ast.TypeExpr[ast.Unit])
	st, ok := texpr.Child.(*ast.Struct[ast.Unit])
	if !ok {
		t.Fatalf("child: got %T, want *ast.Struct", texpr.Child)
	}
	if len(st.Names) != 2 || st.Names[0] != "x" || st.Names[1] != "y" {
		t.Fatalf("field names: got %v", st.Names)
	}
}

func TestAnonymousStructExpression(t *testing.T) {
	n := mustParse(t, "type (x: int)")
	st, ok := n.(*ast.Struct[ast.Unit])
	if !ok {
		t.Fatalf("got %T, want *ast.Struct", n)
	}
	if len(st.Names) != 1 || st.Names[0] != "x" {
		t.Fatalf("field names: got %v", st.Names)
	}
}

func TestIfElseOnOneLine(t *testing.T) {
	n := mustParse(t, "if x > 0 1 else 2")
	ifNode, ok := n.(*ast.If[ast.Unit])
	if !ok {
		t.Fatalf("got %T, want *ast.If", n)
	}
	if len(ifNode.ElifTests) != 1 || len(ifNode.ElifBodies) != 1 {
		t.Fatalf("expected exactly one if-clause, got %d", len(ifNode.ElifTests))
	}
	if _, ok := ifNode.ElifTests[0].(*ast.BinOp[ast.Unit]); !ok {
		t.Fatalf("test: got %T, want *ast.BinOp", ifNode.ElifTests[0])
	}
	if ifNode.ElseBranch == nil {
		t.Fatal("expected an else branch")
	}
}

func TestVerbatimInvocation(t *testing.T) {
	n := mustParse(t, "foo:\n    verbatim\n")
	invoc, ok := n.(*ast.Invoc[ast.Unit])
	if !ok {
		t.Fatalf("got %T, want *ast.Invoc", n)
	}
	if _, ok := invoc.Target.(*ast.Ident[ast.Unit]); !ok {
		t.Fatalf("target: got %T, want *ast.Ident", invoc.Target)
	}
}
