package checker

import (
	"github.com/glintlang/glint/internal/ast"
	"github.com/glintlang/glint/internal/env"
	"github.com/glintlang/glint/internal/token"
	"github.com/glintlang/glint/internal/types"
)

// checkInvoc dispatches on the enclosing environment's context: in type
// context the target names a generic type marker and the arguments
// carry its type parameters; everywhere else it's an ordinary function
// call.
func (c *Checker) checkInvoc(v *ast.Invoc[ast.Unit], e env.Environment) *ast.Invoc[*types.Type] {
	if e.Context() == env.Type {
		return c.checkTypeInvoc(v, e)
	}
	return c.checkFnInvoc(v, e)
}

func (c *Checker) checkFnInvoc(v *ast.Invoc[ast.Unit], e env.Environment) *ast.Invoc[*types.Type] {
	target := c.check(v.Target, e.WithContext(env.Fn))
	args := make([]typedNode, len(v.Args.Elems))
	for i, a := range v.Args.Elems {
		args[i] = c.check(a, e.WithContext(env.Var))
	}
	argsOut := ast.NewData(v.Args.Location(), dataType(args), args)

	ft := target.Attribute()
	result := types.UnknownType()
	switch {
	case ft.IsUnknown():
		// Already reported by the target lookup; don't cascade a second
		// diagnostic for the same unresolved name.
	case ft.Variant != types.Function:
		c.report(v.Loc, "cannot invoke non-function value of type %s", ft)
	case len(ft.Fields) != len(args):
		c.report(v.Loc, "wrong number of arguments: got %d, want %d", len(args), len(ft.Fields))
		result = ft.Result
	default:
		for i, f := range ft.Fields {
			if !types.Equal(args[i].Attribute(), f.Type) && !types.Assignable(args[i].Attribute(), f.Type) {
				c.report(args[i].Location(), "argument %d: cannot assign %s to parameter of type %s", i+1, args[i].Attribute(), f.Type)
			}
		}
		result = ft.Result
	}
	return ast.NewInvoc(v.Loc, result, target, argsOut)
}

// checkTypeInvoc handles the type-constructor keywords the parser
// recognises as PrimitiveType targets, plus strlit — which is not a
// reserved word, so a `strlit(5)` target reaches the checker as an
// Ident resolving to the prelude's strlit marker. Any other target kind
// in type context is a diagnostic.
func (c *Checker) checkTypeInvoc(v *ast.Invoc[ast.Unit], e env.Environment) *ast.Invoc[*types.Type] {
	if id, ok := v.Target.(*ast.Ident[ast.Unit]); ok {
		if t, found := e.LookupIn(env.Type, id.Name); found && t.Variant == types.Strlit {
			return c.checkStrlitInvoc(v, id, e)
		}
	}
	pt, ok := v.Target.(*ast.PrimitiveType[ast.Unit])
	if !ok {
		c.report(v.Loc, "invalid type constructor target")
		return c.unknownTypeInvoc(v, e)
	}

	switch pt.Name {
	case token.PTR:
		return c.checkPtrLikeInvoc(v, pt, e, types.Ptr)
	case token.DYNARR:
		return c.checkPtrLikeInvoc(v, pt, e, types.Dynarr)
	case token.ARRAY:
		return c.checkArrayInvoc(v, pt, e)
	case token.SLICE:
		return c.checkSliceInvoc(v, pt, e)
	case token.VARIANT_KW:
		return c.checkVariantInvoc(v, pt, e)
	case token.TUPLE_KW:
		return c.checkTupleInvoc(v, pt, e)
	case token.FN:
		return c.checkFnTypeInvoc(v, pt, e)
	default:
		c.report(v.Loc, "cannot parameterise type %s", pt.Name)
		return c.unknownTypeInvoc(v, e)
	}
}

func (c *Checker) unknownTypeInvoc(v *ast.Invoc[ast.Unit], e env.Environment) *ast.Invoc[*types.Type] {
	target := c.check(v.Target, e)
	elems := make([]typedNode, len(v.Args.Elems))
	for i, a := range v.Args.Elems {
		elems[i] = c.check(a, e)
	}
	args := ast.NewData(v.Args.Location(), types.UnknownType(), elems)
	return ast.NewInvoc(v.Loc, types.UnknownType(), target, args)
}

// checkPtrLikeInvoc handles ptr(T[, allocator]) and dynarr(T[, allocator]):
// one element type plus an optional allocator type.
func (c *Checker) checkPtrLikeInvoc(v *ast.Invoc[ast.Unit], pt *ast.PrimitiveType[ast.Unit], e env.Environment, variant types.Variant) *ast.Invoc[*types.Type] {
	elems := v.Args.Elems
	if len(elems) < 1 || len(elems) > 2 {
		c.report(v.Loc, "%s expects 1 or 2 type arguments, got %d", pt.Name, len(elems))
		return c.unknownTypeInvoc(v, e)
	}
	elemNode := c.check(elems[0], e.WithContext(env.Type))
	argNodes := []typedNode{elemNode}
	var allocator *types.Type
	if len(elems) == 2 {
		allocNode := c.check(elems[1], e.WithContext(env.Type))
		argNodes = append(argNodes, allocNode)
		allocator = allocNode.Attribute()
	}

	var result *types.Type
	if variant == types.Dynarr {
		result = types.DynarrType(elemNode.Attribute(), allocator)
	} else {
		result = types.PtrType(elemNode.Attribute(), allocator)
	}
	targetOut := ast.NewPrimitiveType(pt.Loc, result, pt.Name)
	argsOut := ast.NewData(v.Args.Location(), result, argNodes)
	return ast.NewInvoc(v.Loc, result, targetOut, argsOut)
}

// checkStrlitInvoc handles strlit(N): a single integer literal fixing
// the known length of a string-literal type.
func (c *Checker) checkStrlitInvoc(v *ast.Invoc[ast.Unit], id *ast.Ident[ast.Unit], e env.Environment) *ast.Invoc[*types.Type] {
	elems := v.Args.Elems
	if len(elems) != 1 {
		c.report(v.Loc, "strlit expects exactly one size argument, got %d", len(elems))
		return c.unknownTypeInvoc(v, e)
	}
	n, ok := intLiteralValue(elems[0])
	if !ok {
		c.report(elems[0].Location(), "strlit size must be an integer literal")
		return c.unknownTypeInvoc(v, e)
	}
	result := types.StrlitType(n)
	targetOut := ast.NewIdent(id.Loc, result, id.Name)
	sizeNode := c.check(elems[0], e.WithContext(env.Var))
	argsOut := ast.NewData(v.Args.Location(), result, []typedNode{sizeNode})
	return ast.NewInvoc(v.Loc, result, targetOut, argsOut)
}

func intLiteralValue(n ast.Node[ast.Unit]) (int, bool) {
	lit, ok := n.(*ast.IntLit[ast.Unit])
	if !ok {
		return 0, false
	}
	return int(lit.Value.Value), true
}

func (c *Checker) checkArrayInvoc(v *ast.Invoc[ast.Unit], pt *ast.PrimitiveType[ast.Unit], e env.Environment) *ast.Invoc[*types.Type] {
	elems := v.Args.Elems
	if len(elems) < 1 {
		c.report(v.Loc, "array expects a value type and at least one size")
		return c.unknownTypeInvoc(v, e)
	}
	elemNode := c.check(elems[0], e.WithContext(env.Type))
	argNodes := []typedNode{elemNode}
	var shape []int
	for _, sz := range elems[1:] {
		n, ok := intLiteralValue(sz)
		if !ok {
			c.report(sz.Location(), "array size must be an integer literal")
		}
		shape = append(shape, n)
		argNodes = append(argNodes, c.check(sz, e.WithContext(env.Var)))
	}
	result := types.ArrayType(elemNode.Attribute(), shape)
	targetOut := ast.NewPrimitiveType(pt.Loc, result, pt.Name)
	argsOut := ast.NewData(v.Args.Location(), result, argNodes)
	return ast.NewInvoc(v.Loc, result, targetOut, argsOut)
}

func (c *Checker) checkSliceInvoc(v *ast.Invoc[ast.Unit], pt *ast.PrimitiveType[ast.Unit], e env.Environment) *ast.Invoc[*types.Type] {
	elems := v.Args.Elems
	if len(elems) < 1 {
		c.report(v.Loc, "slice expects at least a value type")
		return c.unknownTypeInvoc(v, e)
	}
	elemNode := c.check(elems[0], e.WithContext(env.Type))
	argNodes := []typedNode{elemNode}
	begin, end, stride := 0, 0, 1
	bounds := []int{}
	for _, a := range elems[1:] {
		n, ok := intLiteralValue(a)
		if !ok {
			c.report(a.Location(), "slice bound must be an integer literal")
		}
		bounds = append(bounds, n)
		argNodes = append(argNodes, c.check(a, e.WithContext(env.Var)))
	}
	if len(bounds) > 0 {
		begin = bounds[0]
	}
	if len(bounds) > 1 {
		end = bounds[1]
	}
	if len(bounds) > 2 {
		stride = bounds[2]
	}
	result := types.SliceType(elemNode.Attribute(), begin, end, stride)
	targetOut := ast.NewPrimitiveType(pt.Loc, result, pt.Name)
	argsOut := ast.NewData(v.Args.Location(), result, argNodes)
	return ast.NewInvoc(v.Loc, result, targetOut, argsOut)
}

func (c *Checker) checkVariantInvoc(v *ast.Invoc[ast.Unit], pt *ast.PrimitiveType[ast.Unit], e env.Environment) *ast.Invoc[*types.Type] {
	elems := v.Args.Elems
	argNodes := make([]typedNode, len(elems))
	alts := make([]*types.Type, len(elems))
	for i, a := range elems {
		n := c.check(a, e.WithContext(env.Type))
		argNodes[i] = n
		alts[i] = n.Attribute()
	}
	result := types.VariantType(alts)
	targetOut := ast.NewPrimitiveType(pt.Loc, result, pt.Name)
	argsOut := ast.NewData(v.Args.Location(), result, argNodes)
	return ast.NewInvoc(v.Loc, result, targetOut, argsOut)
}

func (c *Checker) checkTupleInvoc(v *ast.Invoc[ast.Unit], pt *ast.PrimitiveType[ast.Unit], e env.Environment) *ast.Invoc[*types.Type] {
	elems := v.Args.Elems
	argNodes := make([]typedNode, len(elems))
	fields := make([]types.Field, len(elems))
	for i, a := range elems {
		n := c.check(a, e.WithContext(env.Type))
		argNodes[i] = n
		fields[i] = types.Field{Type: n.Attribute()}
	}
	result := types.TupleType(fields)
	targetOut := ast.NewPrimitiveType(pt.Loc, result, pt.Name)
	argsOut := ast.NewData(v.Args.Location(), result, argNodes)
	return ast.NewInvoc(v.Loc, result, targetOut, argsOut)
}

// checkFnTypeInvoc handles fn(T1, T2, ..., Result) — every argument but
// the last is a parameter type, the last is the result type; fn() alone
// is fn() -> void.
func (c *Checker) checkFnTypeInvoc(v *ast.Invoc[ast.Unit], pt *ast.PrimitiveType[ast.Unit], e env.Environment) *ast.Invoc[*types.Type] {
	elems := v.Args.Elems
	argNodes := make([]typedNode, len(elems))
	var fields []types.Field
	result := types.VoidType()
	for i, a := range elems {
		n := c.check(a, e.WithContext(env.Type))
		argNodes[i] = n
		if i == len(elems)-1 {
			result = n.Attribute()
		} else {
			fields = append(fields, types.Field{Type: n.Attribute()})
		}
	}
	ft := types.FunctionType(result, fields)
	targetOut := ast.NewPrimitiveType(pt.Loc, ft, pt.Name)
	argsOut := ast.NewData(v.Args.Location(), ft, argNodes)
	return ast.NewInvoc(v.Loc, ft, targetOut, argsOut)
}
