package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders n as an s-expression. The rendering is a synthesised
// walk whose attribute is the node's own text: each handler assembles
// its string from the already-rendered children, so Print doubles as a
// second consumer of the Synthesize combinator beyond type checking.
// The input attribute is erased from the output, not merely unused.
func Print[A any](n Node[A]) string {
	out, err := Synthesize(n, "", printHandlers[A]())
	if err != nil {
		// Only transient Elif/Else nodes can fail the walk; render the
		// failure instead of panicking so debug dumps stay usable.
		return fmt.Sprintf("<%v>", err)
	}
	return out.Attribute()
}

func printHandlers[A any]() SynthHandlers[A, string] {
	return SynthHandlers[A, string]{
		IntLit: func(n *IntLit[string], _ string) string {
			return fmt.Sprintf("%d", n.Value.Value)
		},
		FloatLit: func(n *FloatLit[string], _ string) string {
			return strconv.FormatFloat(n.Value.Value, 'g', -1, 64)
		},
		StringLit: func(n *StringLit[string], _ string) string {
			return fmt.Sprintf("%q", string(n.Bytes))
		},
		True:  func(*True[string], string) string { return "true" },
		False: func(*False[string], string) string { return "false" },
		Ident: func(n *Ident[string], _ string) string { return n.Name },
		PrimitiveType: func(n *PrimitiveType[string], _ string) string {
			return n.Name.String()
		},
		Block: func(n *Block[string], _ string) string {
			return sexp("block", attrs(n.Stmts)...)
		},
		Data: func(n *Data[string], _ string) string {
			return sexp("data", attrs(n.Elems)...)
		},
		UnaryOp: func(n *UnaryOp[string], _ string) string {
			return sexp(n.Op.String(), n.Operand.Attribute())
		},
		BinOp: func(n *BinOp[string], _ string) string {
			return sexp(n.Op.String(), n.Lhs.Attribute(), n.Rhs.Attribute())
		},
		Invoc: func(n *Invoc[string], _ string) string {
			return sexp("invoc", n.Target.Attribute(), n.Args.Attribute())
		},
		If: func(n *If[string], _ string) string {
			parts := make([]string, 0, len(n.ElifTests)+1)
			for i := range n.ElifTests {
				parts = append(parts, sexpRaw(n.ElifTests[i].Attribute(), n.ElifBodies[i].Attribute()))
			}
			if n.ElseBranch != nil {
				parts = append(parts, sexp("else", n.ElseBranch.Attribute()))
			}
			return sexp("if", parts...)
		},
		FnExpr: func(n *FnExpr[string], _ string) string {
			return sexp("fn", sexpRaw(n.ArgNames...), n.Body.Attribute())
		},
		VarDef: func(n *VarDef[string], _ string) string {
			return sexp("def", n.Name, n.Rhs.Attribute())
		},
		For: func(n *For[string], _ string) string {
			return sexp("for", n.Var, n.Iter.Attribute(), n.Body.Attribute())
		},
		While: func(n *While[string], _ string) string {
			return sexp("while", n.Test.Attribute(), n.Body.Attribute())
		},
		Break:    func(*Break[string], string) string { return "break" },
		Continue: func(*Continue[string], string) string { return "continue" },
		Return: func(n *Return[string], _ string) string {
			if n.Value == nil {
				return "(return)"
			}
			return sexp("return", n.Value.Attribute())
		},
		Yield: func(n *Yield[string], _ string) string {
			if n.Value == nil {
				return "(yield)"
			}
			return sexp("yield", n.Value.Attribute())
		},
		Struct: func(n *Struct[string], _ string) string {
			fields := make([]string, len(n.Names))
			for i, name := range n.Names {
				fields[i] = sexpRaw(name, n.Types[i].Attribute())
			}
			return sexp("struct", fields...)
		},
		DefType: func(n *DefType[string], _ string) string {
			return sexp("deftype", n.Name, n.TypeExpr.Attribute())
		},
		LetType: func(n *LetType[string], _ string) string {
			return sexp("lettype", n.Name, n.TypeExpr.Attribute())
		},
		Template: func(n *Template[string], _ string) string {
			return sexp("template", sexpRaw(n.ParamNames...), n.Body.Attribute())
		},
		TypeExpr: func(n *TypeExpr[string], _ string) string {
			return sexp("type", n.Child.Attribute())
		},
		Assign: func(n *Assign[string], _ string) string {
			return sexp("assign", n.Lhs.Attribute(), n.Rhs.Attribute())
		},
	}
}

func attrs(nodes []Node[string]) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Attribute()
	}
	return out
}

func sexp(head string, parts ...string) string {
	if len(parts) == 0 {
		return "(" + head + ")"
	}
	return "(" + head + " " + strings.Join(parts, " ") + ")"
}

func sexpRaw(parts ...string) string {
	return "(" + strings.Join(parts, " ") + ")"
}
