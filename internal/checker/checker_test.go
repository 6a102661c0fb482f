package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/diagnostics"
	"github.com/glintlang/glint/internal/lexer"
	"github.com/glintlang/glint/internal/parser"
	"github.com/glintlang/glint/internal/prelude"
	"github.com/glintlang/glint/internal/types"
)

// checkSource runs the whole pipeline — tokenize, parse, check against a
// fresh prelude — and returns the typed tree plus the diagnostics it
// produced. Fatal lexer/parser errors fail the test immediately.
func checkSource(t *testing.T, src string) (typedNode, []diagnostics.Diagnostic) {
	t.Helper()
	toks, _, err := lexer.Tokenize([]byte(src))
	require.NoError(t, err, "tokenize %q", src)
	tree, err := parser.Parse(toks, []byte(src))
	require.NoError(t, err, "parse %q", src)

	sink := diagnostics.NewSink()
	typed := New(sink).Check(tree, prelude.New())
	return typed, sink.Items()
}

func TestIntegerLiteralDefaultsToI64(t *testing.T) {
	typed, diags := checkSource(t, "42")
	assert.Empty(t, diags)
	assert.True(t, types.Equal(types.IntType(true, 64), typed.Attribute()),
		"got %s", typed.Attribute())
}

func TestBoolOrIsBool(t *testing.T) {
	typed, diags := checkSource(t, "true or false")
	assert.Empty(t, diags)
	require.IsType(t, &ast.BinOp[*types.Type]{}, typed)
	assert.True(t, types.Equal(types.BoolType(), typed.Attribute()),
		"got %s", typed.Attribute())
}

func TestVarDefAdoptsDeclaredType(t *testing.T) {
	typed, diags := checkSource(t, "var x: int = 42")
	assert.Empty(t, diags)

	def := typed.(*ast.VarDef[*types.Type])
	want := types.PtrType(types.IntType(true, 32), nil)
	assert.True(t, types.Equal(want, def.Attribute()),
		"VarDef attribute: got %s, want %s", def.Attribute(), want)
	assert.True(t, types.Equal(types.IntType(true, 32), def.Rhs.Attribute()),
		"rhs attribute: got %s", def.Rhs.Attribute())
}

func TestVarDefRejectsMismatchedRhs(t *testing.T) {
	_, diags := checkSource(t, `var x: int = "hello"`)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "cannot assign")
}

func TestSuffixedLiteralWidens(t *testing.T) {
	typed, diags := checkSource(t, "var x: i64 = 42i16")
	assert.Empty(t, diags)
	def := typed.(*ast.VarDef[*types.Type])
	assert.True(t, types.Equal(types.IntType(true, 16), def.Rhs.Attribute()),
		"suffixed rhs keeps its own type, got %s", def.Rhs.Attribute())
	assert.True(t, types.Equal(types.PtrType(types.IntType(true, 64), nil), def.Attribute()))
}

func TestFnDefBodyType(t *testing.T) {
	typed, diags := checkSource(t, "def f(x: int, y: int): int = x + y")
	assert.Empty(t, diags)

	def := typed.(*ast.VarDef[*types.Type])
	require.Equal(t, types.Function, def.Attribute().Variant)
	assert.True(t, types.Equal(types.IntType(true, 32), def.Attribute().Result),
		"result: got %s", def.Attribute().Result)

	fn := def.Rhs.(*ast.FnExpr[*types.Type])
	assert.True(t, types.Equal(types.IntType(true, 32), fn.Body.Attribute()),
		"body: got %s", fn.Body.Attribute())
}

func TestRecursiveFnResolvesItsOwnName(t *testing.T) {
	_, diags := checkSource(t, "def f(n: i64): i64 = f(n)")
	assert.Empty(t, diags)
}

func TestIfElseJoinsBranchTypes(t *testing.T) {
	src := "var x: i64 = 1\nif (x > 0) 1 else 2"
	typed, diags := checkSource(t, src)
	assert.Empty(t, diags)

	block := typed.(*ast.Block[*types.Type])
	ifNode := block.Stmts[1].(*ast.If[*types.Type])
	assert.True(t, types.Equal(types.BoolType(), ifNode.ElifTests[0].Attribute()),
		"test: got %s", ifNode.ElifTests[0].Attribute())
	assert.True(t, types.Equal(types.IntType(true, 64), ifNode.Attribute()),
		"if: got %s", ifNode.Attribute())
}

func TestIfWithoutElseIsVoid(t *testing.T) {
	typed, diags := checkSource(t, "var x: i64 = 1\nif (x > 0) 1")
	assert.Empty(t, diags)
	block := typed.(*ast.Block[*types.Type])
	assert.Equal(t, types.Void, block.Stmts[1].Attribute().Variant)
}

func TestUndeclaredIdentifierDiagnostic(t *testing.T) {
	_, diags := checkSource(t, "if (x > 0) 1 else 2")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "no type information for x")
	assert.Equal(t, 1, diags[0].Loc.Line)
}

func TestDidYouMeanSuggestion(t *testing.T) {
	_, diags := checkSource(t, `prnt("hi")`)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "did you mean 'print'?")
}

func TestInvocChecksArity(t *testing.T) {
	_, diags := checkSource(t, `print("a", "b")`)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "wrong number of arguments")
}

func TestInvocChecksArgumentAssignability(t *testing.T) {
	_, diags := checkSource(t, "print(true)")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "cannot assign bool")
}

func TestStrlitAssignableToStringParameter(t *testing.T) {
	_, diags := checkSource(t, `print("hello")`)
	assert.Empty(t, diags)
}

func TestDuplicateVarDeclarationDiagnostic(t *testing.T) {
	_, diags := checkSource(t, "var x: i64 = 1\nvar x: i64 = 2")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "duplicate declaration of 'x'")
}

func TestShadowingInNestedBlockIsAllowed(t *testing.T) {
	// Two statements keep the do-group a Block of its own (a single
	// statement would collapse into the outer block and genuinely clash).
	src := "var x: i64 = 1\ndo (\n    var x: i64 = 2\n    x + 1\n)\n"
	_, diags := checkSource(t, src)
	assert.Empty(t, diags)
}

func TestAssignToDeclaredVariable(t *testing.T) {
	_, diags := checkSource(t, "var x: int = 1\nx = 2")
	assert.Empty(t, diags)
}

func TestAssignRejectsIncompatibleType(t *testing.T) {
	_, diags := checkSource(t, `var x: int = 1`+"\n"+`x = "oops"`)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "cannot assign")
}

func TestDefTypeIntroducesNominal(t *testing.T) {
	typed, diags := checkSource(t, "type Age = i32\nvar a: Age = 42i16")
	assert.Empty(t, diags)

	block := typed.(*ast.Block[*types.Type])
	deft := block.Stmts[0].(*ast.DefType[*types.Type])
	require.Equal(t, types.Nominal, deft.Attribute().Variant)
	assert.Equal(t, "Age", deft.Attribute().Name)

	def := block.Stmts[1].(*ast.VarDef[*types.Type])
	assert.Equal(t, types.Nominal, def.Attribute().Elem.Variant)
}

func TestStructTypeDeclaration(t *testing.T) {
	typed, diags := checkSource(t, "type Point(x: i32, y: i32)")
	assert.Empty(t, diags)

	deft := typed.(*ast.DefType[*types.Type])
	require.Equal(t, types.Nominal, deft.Attribute().Variant)
	assert.Equal(t, "Point", deft.Attribute().Name)

	underlying := deft.Attribute().Underlying
	require.Equal(t, types.Struct, underlying.Variant)
	require.Len(t, underlying.Fields, 2)
	assert.Equal(t, "x", underlying.Fields[0].Name)
	assert.Equal(t, "y", underlying.Fields[1].Name)
	assert.True(t, types.Equal(types.IntType(true, 32), underlying.Fields[0].Type))
}

func TestStructFieldTypePropagation(t *testing.T) {
	typed, diags := checkSource(t, "type Pair(a, b: i64)")
	assert.Empty(t, diags)
	deft := typed.(*ast.DefType[*types.Type])
	underlying := deft.Attribute().Underlying
	require.Equal(t, types.Struct, underlying.Variant)
	require.Len(t, underlying.Fields, 2)
	for _, f := range underlying.Fields {
		assert.True(t, types.Equal(types.IntType(true, 64), f.Type), "field %s: got %s", f.Name, f.Type)
	}
}

func TestStrlitTypeAnnotation(t *testing.T) {
	typed, diags := checkSource(t, `var s: strlit(5) = "hello"`)
	assert.Empty(t, diags)
	def := typed.(*ast.VarDef[*types.Type])
	inner := def.Attribute().Elem
	require.Equal(t, types.Strlit, inner.Variant)
	assert.Equal(t, 5, inner.Size)
}

func TestStrlitTypeSizeMismatch(t *testing.T) {
	_, diags := checkSource(t, `var s: strlit(3) = "hello"`)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "cannot assign strlit(5) to declared type strlit(3)")
}

func TestStrlitTypeArityDiagnostic(t *testing.T) {
	_, diags := checkSource(t, `var s: strlit(3, 4) = "abc"`)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "strlit expects exactly one size argument")
}

func TestAliasDoesNotIntroduceNominal(t *testing.T) {
	typed, diags := checkSource(t, "alias word = u16\nvar w: word = 7u8")
	assert.Empty(t, diags)
	block := typed.(*ast.Block[*types.Type])
	let := block.Stmts[0].(*ast.LetType[*types.Type])
	assert.Equal(t, types.Int, let.Attribute().Variant)
}

func TestHomogeneousDataIsArray(t *testing.T) {
	typed, diags := checkSource(t, "data(1, 2, 3)")
	assert.Empty(t, diags)
	got := typed.Attribute()
	require.Equal(t, types.Array, got.Variant)
	assert.Equal(t, []int{3}, got.Shape)
	assert.True(t, types.Equal(types.IntType(true, 64), got.Elem))
}

func TestMixedDataIsTuple(t *testing.T) {
	typed, diags := checkSource(t, "data(1, true)")
	assert.Empty(t, diags)
	require.Equal(t, types.Tuple, typed.Attribute().Variant)
	assert.Len(t, typed.Attribute().Fields, 2)
}

func TestEmptyDataIsVoid(t *testing.T) {
	typed, diags := checkSource(t, "data()")
	assert.Empty(t, diags)
	assert.Equal(t, types.Void, typed.Attribute().Variant)
}

func TestForLoopBindsElementType(t *testing.T) {
	src := "var xs: ptr(char) = \"abc\"\nfor c in xs print(c)"
	_, diags := checkSource(t, src)
	// c is char; print wants string — exactly one diagnostic, proving the
	// loop variable picked up the element type rather than Unknown.
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "cannot assign char")
}

func TestTypeConstructorPtr(t *testing.T) {
	typed, diags := checkSource(t, "var p: ptr(char) = \"x\"")
	assert.Empty(t, diags)
	def := typed.(*ast.VarDef[*types.Type])
	inner := def.Attribute().Elem
	require.Equal(t, types.Ptr, inner.Variant)
	assert.Equal(t, types.Char, inner.Elem.Variant)
}

func TestTypeConstructorArityDiagnostic(t *testing.T) {
	_, diags := checkSource(t, "var p: ptr(char, i8, i8) = 0i8")
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "1 or 2 type arguments")
}

func TestBinOpPromotion(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want *types.Type
	}{
		{"int widens", "var a: i16 = 1i16\nvar b: i32 = 2i32\na + b", types.IntType(true, 32)},
		{"int joins float", "var a: i32 = 1i32\nvar f: f32 = 2.5f32\na * f", types.FloatType(32)},
		{"float widens", "var a: f32 = 1.5f32\nvar b: f64 = 2.5\na + b", types.FloatType(64)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			typed, diags := checkSource(t, c.src)
			assert.Empty(t, diags)
			block := typed.(*ast.Block[*types.Type])
			last := block.Stmts[len(block.Stmts)-1]
			assert.True(t, types.Equal(c.want, last.Attribute()),
				"got %s, want %s", last.Attribute(), c.want)
		})
	}
}

func TestUnrelatedBinOpBecomesVariant(t *testing.T) {
	typed, diags := checkSource(t, `var s: string = "a"`+"\n"+`var b: bool = true`+"\n"+"s + b")
	assert.Empty(t, diags)
	block := typed.(*ast.Block[*types.Type])
	last := block.Stmts[len(block.Stmts)-1]
	require.Equal(t, types.VariantSet, last.Attribute().Variant)
	assert.Len(t, last.Attribute().Alts, 2)
}

func TestDiagnosticsAppearInSourceOrder(t *testing.T) {
	src := "a\nb" // two unresolved names on separate lines
	_, diags := checkSource(t, src)
	require.Len(t, diags, 2)
	assert.Less(t, diags[0].Loc.Line, diags[1].Loc.Line)
}

func TestCheckerNeverFailsFatally(t *testing.T) {
	// A pile of unresolvable constructs: every one reports and continues.
	src := "a + b\nc(d)\nvar x: nosuch = e"
	typed, diags := checkSource(t, src)
	require.NotNil(t, typed)
	assert.GreaterOrEqual(t, len(diags), 3)
}
