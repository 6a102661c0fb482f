// Package checker implements glint's bidirectional type checker: it
// walks a parsed Tree<Unit> inside a lexically-scoped
// env.Environment, filling every node's attribute with a resolved
// internal/types.Type and reporting non-fatal diagnostics to an
// explicitly threaded internal/diagnostics.Sink.
//
// The checker does not build on internal/ast's Synthesize/Inherit
// combinator (whose only consumer is ast.Print): the combinator threads a
// single context value unchanged (synthesised mode) or top-down
// (inherited mode), but the checker needs both an inherited value (the
// environment) AND a synthesised one (the resolved type) at once, with
// scope extension that differs per node kind (Block, FnExpr, For all
// introduce bindings; most other kinds don't). A bespoke recursive
// walker expresses that more directly than forcing it through a
// single-context combinator.
package checker

import (
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/diagnostics"
	"github.com/glintlang/glint/internal/env"
	"github.com/glintlang/glint/internal/token"
	"github.com/glintlang/glint/internal/types"
)

type unitNode = ast.Node[ast.Unit]
type typedNode = ast.Node[*types.Type]

// Checker holds the diagnostic sink every Check call reports into.
type Checker struct {
	sink *diagnostics.Sink
}

// New returns a Checker that reports into sink.
func New(sink *diagnostics.Sink) *Checker {
	return &Checker{sink: sink}
}

// Check walks n inside env e, producing a fully attributed Tree<Type>.
// Type checking never fails outright: every rejected
// construct reports a diagnostic and the offending node's attribute
// becomes types.Unknown so the walk always terminates.
func (c *Checker) Check(n unitNode, e env.Environment) typedNode {
	out, _ := c.checkStmt(n, e, nil)
	return out
}

func (c *Checker) report(loc token.Location, format string, args ...interface{}) {
	c.sink.Report(loc, format, args...)
}

// lookup resolves name against ctx's table in e, reporting a
// did-you-mean diagnostic on failure.
func (c *Checker) lookup(e env.Environment, ctx env.Context, name string, loc token.Location) *types.Type {
	if t, ok := e.LookupIn(ctx, name); ok {
		return t
	}
	msg := "no type information for " + name
	if guess := closestName(name, e.Names(ctx)); guess != "" {
		msg += "; did you mean '" + guess + "'?"
	}
	c.report(loc, "%s", msg)
	return types.UnknownType()
}

func closestName(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}

// checkStmt checks one statement-position node, returning the rebuilt
// node and — for the handful of kinds that bind a name at block scope
// (VarDef, DefType, LetType) — an environment extended with that
// binding. Every other kind returns e unchanged; checkBlock is the only
// caller that threads the returned environment onward to later
// statements in the same block.
func (c *Checker) checkStmt(n unitNode, e env.Environment, declared map[string]token.Location) (typedNode, env.Environment) {
	switch v := n.(type) {
	case *ast.VarDef[ast.Unit]:
		return c.checkVarDef(v, e, declared)
	case *ast.DefType[ast.Unit]:
		return c.checkDefType(v, e, declared)
	case *ast.LetType[ast.Unit]:
		return c.checkLetType(v, e, declared)
	case *ast.Block[ast.Unit]:
		return c.checkBlock(v, e), e
	default:
		return c.check(n, e), e
	}
}

// check dispatches every node kind to its per-variant rule.
func (c *Checker) check(n unitNode, e env.Environment) typedNode {
	switch v := n.(type) {
	case nil:
		return nil
	case *ast.IntLit[ast.Unit]:
		return c.checkIntLit(v)
	case *ast.FloatLit[ast.Unit]:
		return c.checkFloatLit(v)
	case *ast.StringLit[ast.Unit]:
		return ast.NewStringLit(v.Loc, types.StrlitType(len(v.Bytes)), v.Bytes)
	case *ast.True[ast.Unit]:
		return ast.NewTrue(v.Loc, types.BoolType())
	case *ast.False[ast.Unit]:
		return ast.NewFalse(v.Loc, types.BoolType())
	case *ast.Ident[ast.Unit]:
		t := c.lookup(e, e.Context(), v.Name, v.Loc)
		// A variable binding is the l-value ptr(T);
		// using the name in value position reads through it.
		if e.Context() == env.Var && t.Variant == types.Ptr {
			t = t.Elem
		}
		return ast.NewIdent(v.Loc, t, v.Name)
	case *ast.PrimitiveType[ast.Unit]:
		return ast.NewPrimitiveType(v.Loc, primitiveType(v.Name), v.Name)
	case *ast.Block[ast.Unit]:
		return c.checkBlock(v, e)
	case *ast.Data[ast.Unit]:
		return c.checkData(v, e)
	case *ast.UnaryOp[ast.Unit]:
		return c.checkUnaryOp(v, e)
	case *ast.BinOp[ast.Unit]:
		return c.checkBinOp(v, e)
	case *ast.Invoc[ast.Unit]:
		return c.checkInvoc(v, e)
	case *ast.If[ast.Unit]:
		return c.checkIf(v, e)
	case *ast.FnExpr[ast.Unit]:
		out, _ := c.checkFnExpr(v, e, "")
		return out
	case *ast.VarDef[ast.Unit]:
		out, _ := c.checkVarDef(v, e, nil)
		return out
	case *ast.For[ast.Unit]:
		return c.checkFor(v, e)
	case *ast.While[ast.Unit]:
		return c.checkWhile(v, e)
	case *ast.Break[ast.Unit]:
		return ast.NewBreak(v.Loc, types.VoidType())
	case *ast.Continue[ast.Unit]:
		return ast.NewContinue(v.Loc, types.VoidType())
	case *ast.Return[ast.Unit]:
		return c.checkReturn(v, e)
	case *ast.Yield[ast.Unit]:
		return c.checkYield(v, e)
	case *ast.Struct[ast.Unit]:
		return c.checkStruct(v, e)
	case *ast.DefType[ast.Unit]:
		out, _ := c.checkDefType(v, e, nil)
		return out
	case *ast.LetType[ast.Unit]:
		out, _ := c.checkLetType(v, e, nil)
		return out
	case *ast.Template[ast.Unit]:
		return c.checkTemplate(v, e)
	case *ast.TypeExpr[ast.Unit]:
		return c.checkTypeExpr(v, e)
	case *ast.Assign[ast.Unit]:
		return c.checkAssign(v, e)
	case *ast.Elif[ast.Unit]:
		c.report(v.Loc, "dangling elif with no preceding if")
		return nil
	case *ast.Else[ast.Unit]:
		c.report(v.Loc, "dangling else with no preceding if")
		return nil
	default:
		c.report(n.Location(), "internal: unhandled node kind %s", n.Kind())
		return nil
	}
}

func (c *Checker) checkIntLit(v *ast.IntLit[ast.Unit]) *ast.IntLit[*types.Type] {
	width := v.Value.Width
	if width == 0 {
		width = 64
	}
	if width != 8 && width != 16 && width != 32 && width != 64 {
		c.report(v.Loc, "illegal integer width %d", width)
		return ast.NewIntLit(v.Loc, types.UnknownType(), v.Value)
	}
	signed := v.Value.Sign != token.SignUnsigned
	return ast.NewIntLit(v.Loc, types.IntType(signed, width), v.Value)
}

func (c *Checker) checkFloatLit(v *ast.FloatLit[ast.Unit]) *ast.FloatLit[*types.Type] {
	width := v.Value.Width
	if width == 0 {
		width = 64
	}
	if width != 32 && width != 64 {
		c.report(v.Loc, "illegal float width %d", width)
		return ast.NewFloatLit(v.Loc, types.UnknownType(), v.Value)
	}
	return ast.NewFloatLit(v.Loc, types.FloatType(width), v.Value)
}

// primitiveType maps a bare type-name keyword to its concrete type (for
// the fixed-width/aliased names) or a placeholder compound type to be
// refined by an enclosing Invoc in type context.
func primitiveType(k token.Kind) *types.Type {
	switch k {
	case token.I8:
		return types.IntType(true, 8)
	case token.I16:
		return types.IntType(true, 16)
	case token.I32:
		return types.IntType(true, 32)
	case token.I64:
		return types.IntType(true, 64)
	case token.U8:
		return types.IntType(false, 8)
	case token.U16:
		return types.IntType(false, 16)
	case token.U32:
		return types.IntType(false, 32)
	case token.U64:
		return types.IntType(false, 64)
	case token.F32:
		return types.FloatType(32)
	case token.F64:
		return types.FloatType(64)
	case token.BYTE, token.UBYTE:
		return types.IntType(false, 8)
	case token.SHORT:
		return types.IntType(true, 16)
	case token.USHORT:
		return types.IntType(false, 16)
	case token.INT:
		return types.IntType(true, 32)
	case token.UINT:
		return types.IntType(false, 32)
	case token.LONG:
		return types.IntType(true, 64)
	case token.ULONG:
		return types.IntType(false, 64)
	case token.BOOL:
		return types.BoolType()
	case token.CHAR:
		return types.CharType()
	case token.STRING_KW:
		return types.StringType(nil)
	case token.PTR:
		return types.PtrType(types.UnknownType(), nil)
	case token.ARRAY:
		return types.ArrayType(types.UnknownType(), nil)
	case token.DYNARR:
		return types.DynarrType(types.UnknownType(), nil)
	case token.SLICE:
		return types.SliceType(types.UnknownType(), 0, 0, 1)
	case token.VARIANT_KW:
		return types.VariantType(nil)
	case token.TUPLE_KW:
		return types.TupleType(nil)
	case token.FN:
		return types.FunctionType(types.VoidType(), nil)
	default:
		return types.UnknownType()
	}
}

// checkData recurses on every child independently: an empty
// Data is void; if every child shares one type it's array(T,[n]),
// otherwise an unnamed tuple of the element types.
func (c *Checker) checkData(v *ast.Data[ast.Unit], e env.Environment) *ast.Data[*types.Type] {
	elems := make([]typedNode, len(v.Elems))
	for i, el := range v.Elems {
		elems[i] = c.check(el, e)
	}
	out := ast.NewData(v.Loc, dataType(elems), elems)
	return out
}

func dataType(elems []typedNode) *types.Type {
	if len(elems) == 0 {
		return types.VoidType()
	}
	first := elems[0].Attribute()
	allSame := true
	for _, el := range elems[1:] {
		if !types.Equal(el.Attribute(), first) {
			allSame = false
			break
		}
	}
	if allSame {
		return types.ArrayType(first, []int{len(elems)})
	}
	fields := make([]types.Field, len(elems))
	for i, el := range elems {
		fields[i] = types.Field{Type: el.Attribute()}
	}
	return types.TupleType(fields)
}

func (c *Checker) checkUnaryOp(v *ast.UnaryOp[ast.Unit], e env.Environment) *ast.UnaryOp[*types.Type] {
	operand := c.check(v.Operand, e.WithContext(env.Var))
	return ast.NewUnaryOp(v.Loc, operand.Attribute(), v.Op, operand)
}

func isComparisonOp(k token.Kind) bool {
	switch k {
	case token.EQEQ, token.NOTEQ, token.LE, token.GE, token.LT, token.GT, token.IN, token.IS:
		return true
	default:
		return false
	}
}

func isLogicalOp(k token.Kind) bool {
	switch k {
	case token.AND, token.OR, token.XOR:
		return true
	default:
		return false
	}
}

func (c *Checker) checkBinOp(v *ast.BinOp[ast.Unit], e env.Environment) *ast.BinOp[*types.Type] {
	lhs := c.check(v.Lhs, e.WithContext(env.Var))
	rhs := c.check(v.Rhs, e.WithContext(env.Var))
	var result *types.Type
	switch {
	case isComparisonOp(v.Op), isLogicalOp(v.Op):
		result = types.BoolType()
	default:
		result = promote(lhs.Attribute(), rhs.Attribute())
	}
	return ast.NewBinOp(v.Loc, result, v.Op, lhs, rhs)
}

// promote is the numeric-widening join for operator operands: identical
// types join to themselves, int-int widens to the wider width (signed if either
// operand is), int-float joins to the float's width, and anything else
// that isn't directly comparable becomes a variant of both — the type
// checker's way of saying "could be either, refine later".
func promote(a, b *types.Type) *types.Type {
	if a.IsUnknown() || b.IsUnknown() {
		return types.UnknownType()
	}
	if types.Equal(a, b) {
		return a
	}
	if a.Variant == types.Int && b.Variant == types.Int {
		width := a.Width
		if b.Width > width {
			width = b.Width
		}
		return types.IntType(a.Signed || b.Signed, width)
	}
	if a.Variant == types.Int && b.Variant == types.Float {
		return b
	}
	if a.Variant == types.Float && b.Variant == types.Int {
		return a
	}
	if a.Variant == types.Float && b.Variant == types.Float {
		width := a.Width
		if b.Width > width {
			width = b.Width
		}
		return types.FloatType(width)
	}
	return types.VariantType([]*types.Type{a, b})
}
