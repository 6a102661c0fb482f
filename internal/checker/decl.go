package checker

import (
	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/env"
	"github.com/glintlang/glint/internal/token"
	"github.com/glintlang/glint/internal/types"
)

// checkBlock iterates statements in source order, threading a local
// environment forward so each VarDef,
// DefType, and LetType is visible to the statements that follow it, and
// a per-namespace declared-name map that catches a re-declaration in the
// same block. The block's own type is its last statement's type (void
// for an empty block).
func (c *Checker) checkBlock(v *ast.Block[ast.Unit], e env.Environment) *ast.Block[*types.Type] {
	localEnv := e
	declared := map[string]token.Location{}
	stmts := make([]typedNode, len(v.Stmts))
	for i, stmt := range v.Stmts {
		out, next := c.checkStmt(stmt, localEnv, declared)
		stmts[i] = out
		localEnv = next
	}
	t := types.VoidType()
	if len(stmts) > 0 {
		t = stmts[len(stmts)-1].Attribute()
	}
	return ast.NewBlock(v.Loc, t, stmts)
}

func (c *Checker) checkDuplicate(declared map[string]token.Location, namespace, name string, loc token.Location) {
	if declared == nil {
		return
	}
	key := namespace + ":" + name
	if first, ok := declared[key]; ok {
		c.report(loc, "duplicate declaration of '%s', first declared at %s", name, first)
		return
	}
	declared[key] = loc
}

// checkVarDef resolves the declared type in type context and the rhs in
// var context, requiring the rhs be assignable to the declared type.
// `def name(...) = body` parses as a VarDef whose Rhs is a FnExpr; that
// case binds the function's own name in the FN table before the body is
// checked, so Invoc's fn-context lookup resolves recursive calls.
func (c *Checker) checkVarDef(v *ast.VarDef[ast.Unit], e env.Environment, declared map[string]token.Location) (*ast.VarDef[*types.Type], env.Environment) {
	if fn, ok := v.Rhs.(*ast.FnExpr[ast.Unit]); ok {
		fnOut, finalType := c.checkFnExpr(fn, e, v.Name)
		c.checkDuplicate(declared, "fn", v.Name, v.Loc)
		newEnv := e.WithFn(v.Name, finalType)
		out := ast.NewVarDef(v.Loc, finalType, v.Name, nil, fnOut)
		return out, newEnv
	}

	var declType typedNode
	var declared_ *types.Type
	if v.DeclType != nil {
		declType = c.check(v.DeclType, e.WithContext(env.Type))
		declared_ = declType.Attribute()
	}
	rhs := c.check(v.Rhs, e.WithContext(env.Var))
	if declared_ != nil {
		rhs = adoptDeclared(v.Rhs, rhs, declared_)
	}

	effective := rhs.Attribute()
	if declared_ != nil {
		if !declared_.IsUnknown() && !rhs.Attribute().IsUnknown() &&
			!types.Equal(rhs.Attribute(), declared_) && !types.Assignable(rhs.Attribute(), declared_) {
			c.report(v.Loc, "cannot assign %s to declared type %s", rhs.Attribute(), declared_)
		}
		effective = declared_
	}

	c.checkDuplicate(declared, "var", v.Name, v.Loc)
	ptrType := types.PtrType(effective, nil)
	newEnv := e.WithVar(v.Name, ptrType)
	out := ast.NewVarDef(v.Loc, ptrType, v.Name, declType, rhs)
	return out, newEnv
}

// adoptDeclared lets an integer literal with no explicit suffix take the
// VarDef's declared type instead of the i64 default, so `var x: int = 42`
// types its rhs i32 with no diagnostic. Suffixed literals keep their own
// type and go through the ordinary assignability check.
func adoptDeclared(src unitNode, rhs typedNode, declared *types.Type) typedNode {
	lit, ok := src.(*ast.IntLit[ast.Unit])
	if !ok || lit.Value.Sign != token.SignUnspecified || lit.Value.Width != 0 {
		return rhs
	}
	if declared.Variant != types.Int && declared.Variant != types.Float {
		return rhs
	}
	return ast.NewIntLit(lit.Loc, declared, lit.Value)
}

// checkFnExpr resolves parameter and result types once, binds the
// parameters as local variables (l-values like any VarDef), and checks
// the body. When selfName is non-empty (the `def` path) the
// function's own provisional signature — its declared result, or
// Unknown if the result is to be deduced from the body — is bound under
// selfName in the FN table before the body is checked, so a recursive
// call inside the body resolves. Returns the rebuilt node and its final
// function type.
func (c *Checker) checkFnExpr(v *ast.FnExpr[ast.Unit], e env.Environment, selfName string) (*ast.FnExpr[*types.Type], *types.Type) {
	argTypes := make([]typedNode, len(v.ArgTypes))
	fields := make([]types.Field, len(v.ArgNames))
	bodyEnv := e
	for i, name := range v.ArgNames {
		t := c.check(v.ArgTypes[i], e.WithContext(env.Type))
		argTypes[i] = t
		fields[i] = types.Field{Name: name, Type: t.Attribute()}
	}

	var declaredResult *types.Type
	var resultNode typedNode
	if v.Result != nil {
		resultNode = c.check(v.Result, e.WithContext(env.Type))
		declaredResult = resultNode.Attribute()
	}

	provisionalResult := declaredResult
	if provisionalResult == nil {
		provisionalResult = types.UnknownType()
	}
	if selfName != "" {
		bodyEnv = bodyEnv.WithFn(selfName, types.FunctionType(provisionalResult, fields))
	}
	bodyEnv = bodyEnv.WithContext(env.Var)
	for i, name := range v.ArgNames {
		bodyEnv = bodyEnv.WithVar(name, types.PtrType(fields[i].Type, nil))
	}

	body := c.check(v.Body, bodyEnv)

	finalResult := body.Attribute()
	if declaredResult != nil {
		if !declaredResult.IsUnknown() && !body.Attribute().IsUnknown() &&
			!types.Equal(body.Attribute(), declaredResult) && !types.Assignable(body.Attribute(), declaredResult) {
			c.report(v.Loc, "function body type %s not assignable to declared result %s", body.Attribute(), declaredResult)
		}
		finalResult = declaredResult
	}

	finalType := types.FunctionType(finalResult, fields)
	out := ast.NewFnExpr(v.Loc, finalType, v.ArgNames, argTypes, resultNode, body, v.Captures)
	return out, finalType
}

func (c *Checker) checkDefType(v *ast.DefType[ast.Unit], e env.Environment, declared map[string]token.Location) (*ast.DefType[*types.Type], env.Environment) {
	texpr := c.check(v.TypeExpr, e.WithContext(env.Type))
	nominal := types.NominalType(v.Name, texpr.Attribute())
	c.checkDuplicate(declared, "type", v.Name, v.Loc)
	newEnv := e.WithType(v.Name, nominal)
	return ast.NewDefType(v.Loc, nominal, v.Name, texpr), newEnv
}

func (c *Checker) checkLetType(v *ast.LetType[ast.Unit], e env.Environment, declared map[string]token.Location) (*ast.LetType[*types.Type], env.Environment) {
	texpr := c.check(v.TypeExpr, e.WithContext(env.Type))
	underlying := texpr.Attribute()
	c.checkDuplicate(declared, "type", v.Name, v.Loc)
	newEnv := e.WithType(v.Name, underlying)
	return ast.NewLetType(v.Loc, underlying, v.Name, texpr), newEnv
}

func (c *Checker) checkStruct(v *ast.Struct[ast.Unit], e env.Environment) *ast.Struct[*types.Type] {
	typeNodes := make([]typedNode, len(v.Types))
	fields := make([]types.Field, len(v.Names))
	for i, name := range v.Names {
		t := c.check(v.Types[i], e.WithContext(env.Type))
		typeNodes[i] = t
		fields[i] = types.Field{Name: name, Type: t.Attribute()}
	}
	return ast.NewStruct(v.Loc, types.StructType(fields), v.Names, typeNodes)
}

func (c *Checker) checkTypeExpr(v *ast.TypeExpr[ast.Unit], e env.Environment) *ast.TypeExpr[*types.Type] {
	child := c.check(v.Child, e.WithContext(env.Type))
	return ast.NewTypeExpr(v.Loc, child.Attribute(), child)
}

// checkIf checks every elif test and body, plus an optional else body,
// in the enclosing scope (an If introduces no bindings of its own). When
// an else branch is present the If's type is every branch's
// type joined with promote (the same rule BinOp uses); with no else,
// the construct cannot be guaranteed to produce a value and types void.
func (c *Checker) checkIf(v *ast.If[ast.Unit], e env.Environment) *ast.If[*types.Type] {
	tests := make([]typedNode, len(v.ElifTests))
	bodies := make([]typedNode, len(v.ElifBodies))
	for i := range v.ElifTests {
		tests[i] = c.check(v.ElifTests[i], e.WithContext(env.Var))
		bodies[i] = c.check(v.ElifBodies[i], e)
	}
	var elseBranch typedNode
	if v.ElseBranch != nil {
		elseBranch = c.check(v.ElseBranch, e)
	}

	result := types.VoidType()
	if v.ElseBranch != nil {
		result = bodies[0].Attribute()
		for _, b := range bodies[1:] {
			result = promote(result, b.Attribute())
		}
		result = promote(result, elseBranch.Attribute())
	}
	return ast.NewIf(v.Loc, result, tests, bodies, elseBranch)
}

func (c *Checker) checkWhile(v *ast.While[ast.Unit], e env.Environment) *ast.While[*types.Type] {
	test := c.check(v.Test, e.WithContext(env.Var))
	body := c.check(v.Body, e)
	return ast.NewWhile(v.Loc, types.VoidType(), test, body)
}

// checkFor binds the loop variable to the iterable's element type
// (array/dynarr/slice/string yield their Elem or char) for the body's
// scope, then types the whole construct void — a for loop is a
// statement, not an expression producing a value.
func (c *Checker) checkFor(v *ast.For[ast.Unit], e env.Environment) *ast.For[*types.Type] {
	iter := c.check(v.Iter, e.WithContext(env.Var))
	elemT := elementType(iter.Attribute())
	bodyEnv := e.WithVar(v.Var, types.PtrType(elemT, nil))
	body := c.check(v.Body, bodyEnv)
	return ast.NewFor(v.Loc, types.VoidType(), v.Var, iter, body)
}

func elementType(t *types.Type) *types.Type {
	if t.IsUnknown() {
		return types.UnknownType()
	}
	switch t.Variant {
	case types.Array, types.Dynarr, types.Slice, types.Ptr:
		return t.Elem
	case types.String, types.Strlit:
		return types.CharType()
	default:
		return types.UnknownType()
	}
}

func (c *Checker) checkReturn(v *ast.Return[ast.Unit], e env.Environment) *ast.Return[*types.Type] {
	if v.Value == nil {
		return ast.NewReturn(v.Loc, types.VoidType(), nil)
	}
	val := c.check(v.Value, e.WithContext(env.Var))
	return ast.NewReturn(v.Loc, val.Attribute(), val)
}

func (c *Checker) checkYield(v *ast.Yield[ast.Unit], e env.Environment) *ast.Yield[*types.Type] {
	if v.Value == nil {
		return ast.NewYield(v.Loc, types.VoidType(), nil)
	}
	val := c.check(v.Value, e.WithContext(env.Var))
	return ast.NewYield(v.Loc, val.Attribute(), val)
}

// checkTemplate is a genuine stub: the grammar has no production that
// invokes a Template, so there is nothing to bidirectionally check it
// against. Parameters and
// body are still walked so diagnostics inside them surface, but the
// Template node itself types Unknown without reporting one of its own.
func (c *Checker) checkTemplate(v *ast.Template[ast.Unit], e env.Environment) *ast.Template[*types.Type] {
	paramTypes := make([]typedNode, len(v.ParamTypes))
	bodyEnv := e
	for i, name := range v.ParamNames {
		t := c.check(v.ParamTypes[i], e.WithContext(env.Type))
		paramTypes[i] = t
		bodyEnv = bodyEnv.WithVar(name, types.PtrType(t.Attribute(), nil))
	}
	body := c.check(v.Body, bodyEnv)
	return ast.NewTemplate(v.Loc, types.UnknownType(), v.ParamNames, paramTypes, body)
}

// checkAssign checks the rhs is assignable into the lhs's value type.
// An lhs identifier already reads through its l-value ptr wrapper, so no
// extra unwrap happens here.
func (c *Checker) checkAssign(v *ast.Assign[ast.Unit], e env.Environment) *ast.Assign[*types.Type] {
	lhs := c.check(v.Lhs, e.WithContext(env.Var))
	rhs := c.check(v.Rhs, e.WithContext(env.Var))

	target := lhs.Attribute()
	if target != nil {
		rhs = adoptDeclared(v.Rhs, rhs, target)
	}
	if target != nil && !target.IsUnknown() && !rhs.Attribute().IsUnknown() &&
		!types.Equal(rhs.Attribute(), target) && !types.Assignable(rhs.Attribute(), target) {
		c.report(v.Loc, "cannot assign %s to %s", rhs.Attribute(), target)
	}
	return ast.NewAssign(v.Loc, target, lhs, rhs)
}
