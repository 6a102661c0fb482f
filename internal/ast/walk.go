package ast

import "fmt"

// DanglingClauseError is returned when a Synthesize/Inherit walk reaches
// an Elif or Else node — both are transient parser productions that must
// already have been folded into an enclosing If.
type DanglingClauseError struct {
	Kind Kind
	Loc  string
}

func (e *DanglingClauseError) Error() string {
	return fmt.Sprintf("dangling %s at %s", e.Kind, e.Loc)
}

// SynthHandlers is a struct of optional per-variant callbacks for the
// bottom-up (synthesised) walk. A handler receives the node with its
// children already rebuilt into Out, plus the context value the walk was
// invoked or recursed with, and returns this node's Out attribute. At
// most one handler exists per variant.
type SynthHandlers[In, Out any] struct {
	IntLit        func(*IntLit[Out], Out) Out
	FloatLit      func(*FloatLit[Out], Out) Out
	StringLit     func(*StringLit[Out], Out) Out
	True          func(*True[Out], Out) Out
	False         func(*False[Out], Out) Out
	Ident         func(*Ident[Out], Out) Out
	PrimitiveType func(*PrimitiveType[Out], Out) Out
	Block         func(*Block[Out], Out) Out
	Data          func(*Data[Out], Out) Out
	UnaryOp       func(*UnaryOp[Out], Out) Out
	BinOp         func(*BinOp[Out], Out) Out
	Invoc         func(*Invoc[Out], Out) Out
	If            func(*If[Out], Out) Out
	FnExpr        func(*FnExpr[Out], Out) Out
	VarDef        func(*VarDef[Out], Out) Out
	For           func(*For[Out], Out) Out
	While         func(*While[Out], Out) Out
	Break         func(*Break[Out], Out) Out
	Continue      func(*Continue[Out], Out) Out
	Return        func(*Return[Out], Out) Out
	Yield         func(*Yield[Out], Out) Out
	Struct        func(*Struct[Out], Out) Out
	DefType       func(*DefType[Out], Out) Out
	LetType       func(*LetType[Out], Out) Out
	Template      func(*Template[Out], Out) Out
	TypeExpr      func(*TypeExpr[Out], Out) Out
	Assign        func(*Assign[Out], Out) Out
}

// InheritHandlers is the top-down analogue: each handler sees the
// ORIGINAL (pre-rebuild) node — since children haven't been walked yet —
// plus the attribute inherited from the parent, and returns the Out
// attribute to assign to this node AND to thread down into its children.
type InheritHandlers[In, Out any] struct {
	IntLit        func(*IntLit[In], Out) Out
	FloatLit      func(*FloatLit[In], Out) Out
	StringLit     func(*StringLit[In], Out) Out
	True          func(*True[In], Out) Out
	False         func(*False[In], Out) Out
	Ident         func(*Ident[In], Out) Out
	PrimitiveType func(*PrimitiveType[In], Out) Out
	Block         func(*Block[In], Out) Out
	Data          func(*Data[In], Out) Out
	UnaryOp       func(*UnaryOp[In], Out) Out
	BinOp         func(*BinOp[In], Out) Out
	Invoc         func(*Invoc[In], Out) Out
	If            func(*If[In], Out) Out
	FnExpr        func(*FnExpr[In], Out) Out
	VarDef        func(*VarDef[In], Out) Out
	For           func(*For[In], Out) Out
	While         func(*While[In], Out) Out
	Break         func(*Break[In], Out) Out
	Continue      func(*Continue[In], Out) Out
	Return        func(*Return[In], Out) Out
	Yield         func(*Yield[In], Out) Out
	Struct        func(*Struct[In], Out) Out
	DefType       func(*DefType[In], Out) Out
	LetType       func(*LetType[In], Out) Out
	Template      func(*Template[In], Out) Out
	TypeExpr      func(*TypeExpr[In], Out) Out
	Assign        func(*Assign[In], Out) Out
}

func call[T, Out any](h func(T, Out) Out, v T, ctx Out) Out {
	if h == nil {
		var zero Out
		return zero
	}
	return h(v, ctx)
}

// Synthesize rebuilds n bottom-up: every child is walked first, then the
// new node is assembled, then (if registered) this variant's handler
// computes the output attribute from the rebuilt node and ctx. ctx is
// forwarded unchanged to every recursive call — synthesised mode carries
// no top-down context of its own, only whatever the caller seeded it
// with.
func Synthesize[In, Out any](n Node[In], ctx Out, h SynthHandlers[In, Out]) (Node[Out], error) {
	switch v := n.(type) {
	case *IntLit[In]:
		out := NewIntLit[Out](v.Loc, ctx, v.Value)
		out.Attr = call(h.IntLit, out, ctx)
		return out, nil
	case *FloatLit[In]:
		out := NewFloatLit[Out](v.Loc, ctx, v.Value)
		out.Attr = call(h.FloatLit, out, ctx)
		return out, nil
	case *StringLit[In]:
		out := NewStringLit[Out](v.Loc, ctx, v.Bytes)
		out.Attr = call(h.StringLit, out, ctx)
		return out, nil
	case *True[In]:
		out := NewTrue[Out](v.Loc, ctx)
		out.Attr = call(h.True, out, ctx)
		return out, nil
	case *False[In]:
		out := NewFalse[Out](v.Loc, ctx)
		out.Attr = call(h.False, out, ctx)
		return out, nil
	case *Ident[In]:
		out := NewIdent[Out](v.Loc, ctx, v.Name)
		out.Attr = call(h.Ident, out, ctx)
		return out, nil
	case *PrimitiveType[In]:
		out := NewPrimitiveType[Out](v.Loc, ctx, v.Name)
		out.Attr = call(h.PrimitiveType, out, ctx)
		return out, nil
	case *Block[In]:
		stmts, err := synthAll(v.Stmts, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewBlock(v.Loc, ctx, stmts)
		out.Attr = call(h.Block, out, ctx)
		return out, nil
	case *Data[In]:
		elems, err := synthAll(v.Elems, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewData(v.Loc, ctx, elems)
		out.Attr = call(h.Data, out, ctx)
		return out, nil
	case *UnaryOp[In]:
		operand, err := Synthesize(v.Operand, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewUnaryOp(v.Loc, ctx, v.Op, operand)
		out.Attr = call(h.UnaryOp, out, ctx)
		return out, nil
	case *BinOp[In]:
		lhs, err := Synthesize(v.Lhs, ctx, h)
		if err != nil {
			return nil, err
		}
		rhs, err := Synthesize(v.Rhs, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewBinOp(v.Loc, ctx, v.Op, lhs, rhs)
		out.Attr = call(h.BinOp, out, ctx)
		return out, nil
	case *Invoc[In]:
		target, err := Synthesize(v.Target, ctx, h)
		if err != nil {
			return nil, err
		}
		argsNode, err := Synthesize[In, Out](v.Args, ctx, h)
		if err != nil {
			return nil, err
		}
		args := argsNode.(*Data[Out])
		out := NewInvoc(v.Loc, ctx, target, args)
		out.Attr = call(h.Invoc, out, ctx)
		return out, nil
	case *If[In]:
		tests, err := synthAll(v.ElifTests, ctx, h)
		if err != nil {
			return nil, err
		}
		bodies, err := synthAll(v.ElifBodies, ctx, h)
		if err != nil {
			return nil, err
		}
		var elseBranch Node[Out]
		if v.ElseBranch != nil {
			elseBranch, err = Synthesize(v.ElseBranch, ctx, h)
			if err != nil {
				return nil, err
			}
		}
		out := NewIf(v.Loc, ctx, tests, bodies, elseBranch)
		out.Attr = call(h.If, out, ctx)
		return out, nil
	case *Elif[In]:
		return nil, &DanglingClauseError{Kind: KindElif, Loc: v.Loc.String()}
	case *Else[In]:
		return nil, &DanglingClauseError{Kind: KindElse, Loc: v.Loc.String()}
	case *FnExpr[In]:
		argTypes, err := synthAll(v.ArgTypes, ctx, h)
		if err != nil {
			return nil, err
		}
		var result Node[Out]
		if v.Result != nil {
			result, err = Synthesize(v.Result, ctx, h)
			if err != nil {
				return nil, err
			}
		}
		body, err := Synthesize(v.Body, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewFnExpr(v.Loc, ctx, v.ArgNames, argTypes, result, body, v.Captures)
		out.Attr = call(h.FnExpr, out, ctx)
		return out, nil
	case *VarDef[In]:
		var declType Node[Out]
		var err error
		if v.DeclType != nil {
			declType, err = Synthesize(v.DeclType, ctx, h)
			if err != nil {
				return nil, err
			}
		}
		rhs, err := Synthesize(v.Rhs, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewVarDef(v.Loc, ctx, v.Name, declType, rhs)
		out.Attr = call(h.VarDef, out, ctx)
		return out, nil
	case *For[In]:
		iter, err := Synthesize(v.Iter, ctx, h)
		if err != nil {
			return nil, err
		}
		body, err := Synthesize(v.Body, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewFor(v.Loc, ctx, v.Var, iter, body)
		out.Attr = call(h.For, out, ctx)
		return out, nil
	case *While[In]:
		test, err := Synthesize(v.Test, ctx, h)
		if err != nil {
			return nil, err
		}
		body, err := Synthesize(v.Body, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewWhile(v.Loc, ctx, test, body)
		out.Attr = call(h.While, out, ctx)
		return out, nil
	case *Break[In]:
		out := NewBreak[Out](v.Loc, ctx)
		out.Attr = call(h.Break, out, ctx)
		return out, nil
	case *Continue[In]:
		out := NewContinue[Out](v.Loc, ctx)
		out.Attr = call(h.Continue, out, ctx)
		return out, nil
	case *Return[In]:
		var value Node[Out]
		var err error
		if v.Value != nil {
			value, err = Synthesize(v.Value, ctx, h)
			if err != nil {
				return nil, err
			}
		}
		out := NewReturn(v.Loc, ctx, value)
		out.Attr = call(h.Return, out, ctx)
		return out, nil
	case *Yield[In]:
		var value Node[Out]
		var err error
		if v.Value != nil {
			value, err = Synthesize(v.Value, ctx, h)
			if err != nil {
				return nil, err
			}
		}
		out := NewYield(v.Loc, ctx, value)
		out.Attr = call(h.Yield, out, ctx)
		return out, nil
	case *Struct[In]:
		types, err := synthAll(v.Types, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewStruct(v.Loc, ctx, v.Names, types)
		out.Attr = call(h.Struct, out, ctx)
		return out, nil
	case *DefType[In]:
		typeExpr, err := Synthesize(v.TypeExpr, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewDefType(v.Loc, ctx, v.Name, typeExpr)
		out.Attr = call(h.DefType, out, ctx)
		return out, nil
	case *LetType[In]:
		typeExpr, err := Synthesize(v.TypeExpr, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewLetType(v.Loc, ctx, v.Name, typeExpr)
		out.Attr = call(h.LetType, out, ctx)
		return out, nil
	case *Template[In]:
		paramTypes, err := synthAll(v.ParamTypes, ctx, h)
		if err != nil {
			return nil, err
		}
		body, err := Synthesize(v.Body, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewTemplate(v.Loc, ctx, v.ParamNames, paramTypes, body)
		out.Attr = call(h.Template, out, ctx)
		return out, nil
	case *TypeExpr[In]:
		child, err := Synthesize(v.Child, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewTypeExpr(v.Loc, ctx, child)
		out.Attr = call(h.TypeExpr, out, ctx)
		return out, nil
	case *Assign[In]:
		lhs, err := Synthesize(v.Lhs, ctx, h)
		if err != nil {
			return nil, err
		}
		rhs, err := Synthesize(v.Rhs, ctx, h)
		if err != nil {
			return nil, err
		}
		out := NewAssign(v.Loc, ctx, lhs, rhs)
		out.Attr = call(h.Assign, out, ctx)
		return out, nil
	default:
		return nil, fmt.Errorf("ast.Synthesize: unhandled node kind %s", n.Kind())
	}
}

func synthAll[In, Out any](nodes []Node[In], ctx Out, h SynthHandlers[In, Out]) ([]Node[Out], error) {
	out := make([]Node[Out], len(nodes))
	for i, n := range nodes {
		rebuilt, err := Synthesize(n, ctx, h)
		if err != nil {
			return nil, err
		}
		out[i] = rebuilt
	}
	return out, nil
}

// Inherit rebuilds n top-down: the handler for n's variant computes this
// node's Out attribute from the ORIGINAL node and the attribute inherited
// from its parent, BEFORE any child is visited; that computed attribute
// is then threaded down as every child's inherited context.
func Inherit[In, Out any](n Node[In], ctx Out, h InheritHandlers[In, Out]) (Node[Out], error) {
	switch v := n.(type) {
	case *IntLit[In]:
		attr := call(h.IntLit, v, ctx)
		return NewIntLit[Out](v.Loc, attr, v.Value), nil
	case *FloatLit[In]:
		attr := call(h.FloatLit, v, ctx)
		return NewFloatLit[Out](v.Loc, attr, v.Value), nil
	case *StringLit[In]:
		attr := call(h.StringLit, v, ctx)
		return NewStringLit[Out](v.Loc, attr, v.Bytes), nil
	case *True[In]:
		attr := call(h.True, v, ctx)
		return NewTrue[Out](v.Loc, attr), nil
	case *False[In]:
		attr := call(h.False, v, ctx)
		return NewFalse[Out](v.Loc, attr), nil
	case *Ident[In]:
		attr := call(h.Ident, v, ctx)
		return NewIdent[Out](v.Loc, attr, v.Name), nil
	case *PrimitiveType[In]:
		attr := call(h.PrimitiveType, v, ctx)
		return NewPrimitiveType[Out](v.Loc, attr, v.Name), nil
	case *Block[In]:
		attr := call(h.Block, v, ctx)
		stmts, err := inheritAll(v.Stmts, attr, h)
		if err != nil {
			return nil, err
		}
		return NewBlock(v.Loc, attr, stmts), nil
	case *Data[In]:
		attr := call(h.Data, v, ctx)
		elems, err := inheritAll(v.Elems, attr, h)
		if err != nil {
			return nil, err
		}
		return NewData(v.Loc, attr, elems), nil
	case *UnaryOp[In]:
		attr := call(h.UnaryOp, v, ctx)
		operand, err := Inherit(v.Operand, attr, h)
		if err != nil {
			return nil, err
		}
		return NewUnaryOp(v.Loc, attr, v.Op, operand), nil
	case *BinOp[In]:
		attr := call(h.BinOp, v, ctx)
		lhs, err := Inherit(v.Lhs, attr, h)
		if err != nil {
			return nil, err
		}
		rhs, err := Inherit(v.Rhs, attr, h)
		if err != nil {
			return nil, err
		}
		return NewBinOp(v.Loc, attr, v.Op, lhs, rhs), nil
	case *Invoc[In]:
		attr := call(h.Invoc, v, ctx)
		target, err := Inherit(v.Target, attr, h)
		if err != nil {
			return nil, err
		}
		argsNode, err := Inherit[In, Out](v.Args, attr, h)
		if err != nil {
			return nil, err
		}
		return NewInvoc(v.Loc, attr, target, argsNode.(*Data[Out])), nil
	case *If[In]:
		attr := call(h.If, v, ctx)
		tests, err := inheritAll(v.ElifTests, attr, h)
		if err != nil {
			return nil, err
		}
		bodies, err := inheritAll(v.ElifBodies, attr, h)
		if err != nil {
			return nil, err
		}
		var elseBranch Node[Out]
		if v.ElseBranch != nil {
			elseBranch, err = Inherit(v.ElseBranch, attr, h)
			if err != nil {
				return nil, err
			}
		}
		return NewIf(v.Loc, attr, tests, bodies, elseBranch), nil
	case *Elif[In]:
		return nil, &DanglingClauseError{Kind: KindElif, Loc: v.Loc.String()}
	case *Else[In]:
		return nil, &DanglingClauseError{Kind: KindElse, Loc: v.Loc.String()}
	case *FnExpr[In]:
		attr := call(h.FnExpr, v, ctx)
		argTypes, err := inheritAll(v.ArgTypes, attr, h)
		if err != nil {
			return nil, err
		}
		var result Node[Out]
		if v.Result != nil {
			result, err = Inherit(v.Result, attr, h)
			if err != nil {
				return nil, err
			}
		}
		body, err := Inherit(v.Body, attr, h)
		if err != nil {
			return nil, err
		}
		return NewFnExpr(v.Loc, attr, v.ArgNames, argTypes, result, body, v.Captures), nil
	case *VarDef[In]:
		attr := call(h.VarDef, v, ctx)
		var declType Node[Out]
		var err error
		if v.DeclType != nil {
			declType, err = Inherit(v.DeclType, attr, h)
			if err != nil {
				return nil, err
			}
		}
		rhs, err := Inherit(v.Rhs, attr, h)
		if err != nil {
			return nil, err
		}
		return NewVarDef(v.Loc, attr, v.Name, declType, rhs), nil
	case *For[In]:
		attr := call(h.For, v, ctx)
		iter, err := Inherit(v.Iter, attr, h)
		if err != nil {
			return nil, err
		}
		body, err := Inherit(v.Body, attr, h)
		if err != nil {
			return nil, err
		}
		return NewFor(v.Loc, attr, v.Var, iter, body), nil
	case *While[In]:
		attr := call(h.While, v, ctx)
		test, err := Inherit(v.Test, attr, h)
		if err != nil {
			return nil, err
		}
		body, err := Inherit(v.Body, attr, h)
		if err != nil {
			return nil, err
		}
		return NewWhile(v.Loc, attr, test, body), nil
	case *Break[In]:
		return NewBreak[Out](v.Loc, call(h.Break, v, ctx)), nil
	case *Continue[In]:
		return NewContinue[Out](v.Loc, call(h.Continue, v, ctx)), nil
	case *Return[In]:
		attr := call(h.Return, v, ctx)
		var value Node[Out]
		var err error
		if v.Value != nil {
			value, err = Inherit(v.Value, attr, h)
			if err != nil {
				return nil, err
			}
		}
		return NewReturn(v.Loc, attr, value), nil
	case *Yield[In]:
		attr := call(h.Yield, v, ctx)
		var value Node[Out]
		var err error
		if v.Value != nil {
			value, err = Inherit(v.Value, attr, h)
			if err != nil {
				return nil, err
			}
		}
		return NewYield(v.Loc, attr, value), nil
	case *Struct[In]:
		attr := call(h.Struct, v, ctx)
		types, err := inheritAll(v.Types, attr, h)
		if err != nil {
			return nil, err
		}
		return NewStruct(v.Loc, attr, v.Names, types), nil
	case *DefType[In]:
		attr := call(h.DefType, v, ctx)
		typeExpr, err := Inherit(v.TypeExpr, attr, h)
		if err != nil {
			return nil, err
		}
		return NewDefType(v.Loc, attr, v.Name, typeExpr), nil
	case *LetType[In]:
		attr := call(h.LetType, v, ctx)
		typeExpr, err := Inherit(v.TypeExpr, attr, h)
		if err != nil {
			return nil, err
		}
		return NewLetType(v.Loc, attr, v.Name, typeExpr), nil
	case *Template[In]:
		attr := call(h.Template, v, ctx)
		paramTypes, err := inheritAll(v.ParamTypes, attr, h)
		if err != nil {
			return nil, err
		}
		body, err := Inherit(v.Body, attr, h)
		if err != nil {
			return nil, err
		}
		return NewTemplate(v.Loc, attr, v.ParamNames, paramTypes, body), nil
	case *TypeExpr[In]:
		attr := call(h.TypeExpr, v, ctx)
		child, err := Inherit(v.Child, attr, h)
		if err != nil {
			return nil, err
		}
		return NewTypeExpr(v.Loc, attr, child), nil
	case *Assign[In]:
		attr := call(h.Assign, v, ctx)
		lhs, err := Inherit(v.Lhs, attr, h)
		if err != nil {
			return nil, err
		}
		rhs, err := Inherit(v.Rhs, attr, h)
		if err != nil {
			return nil, err
		}
		return NewAssign(v.Loc, attr, lhs, rhs), nil
	default:
		return nil, fmt.Errorf("ast.Inherit: unhandled node kind %s", n.Kind())
	}
}

func inheritAll[In, Out any](nodes []Node[In], ctx Out, h InheritHandlers[In, Out]) ([]Node[Out], error) {
	out := make([]Node[Out], len(nodes))
	for i, n := range nodes {
		rebuilt, err := Inherit(n, ctx, h)
		if err != nil {
			return nil, err
		}
		out[i] = rebuilt
	}
	return out, nil
}
