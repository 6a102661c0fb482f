// Package ast defines glint's abstract syntax tree: a recursive sum type
// Node[A] parameterised by an attribute type A, plus (in walk.go) a
// generic rebuild-the-tree combinator that fills the attribute slot by
// synthesising (bottom-up) or inheriting (top-down) it.
//
// The parser produces Node[Unit] (the "empty attribute"); the type
// checker consumes that and produces Node[T] for whatever type value T
// the caller's walk is instantiated with — in glint's case
// internal/types.Type. Node itself never imports internal/types, keeping
// the tree reusable for any attribute domain and the node shapes
// independent of any one downstream consumer.
package ast

import (
	"github.com/glintlang/glint/internal/invariant"
	"github.com/glintlang/glint/internal/token"
)

// Unit is the "empty attribute" the parser fills every node's Attr slot
// with.
type Unit struct{}

// Kind tags which Tree<A> variant a Node holds.
type Kind int

const (
	KindIntLit Kind = iota
	KindFloatLit
	KindStringLit
	KindTrue
	KindFalse
	KindIdent
	KindPrimitiveType
	KindBlock
	KindData
	KindUnaryOp
	KindBinOp
	KindInvoc
	KindIf
	KindElif // transient: never survives a finished parse
	KindElse // transient: never survives a finished parse
	KindFnExpr
	KindVarDef
	KindFor
	KindWhile
	KindBreak
	KindContinue
	KindReturn
	KindYield
	KindStruct
	KindDefType
	KindLetType
	KindTemplate
	KindTypeExpr
	KindAssign
)

func (k Kind) String() string {
	switch k {
	case KindIntLit:
		return "IntLit"
	case KindFloatLit:
		return "FloatLit"
	case KindStringLit:
		return "StringLit"
	case KindTrue:
		return "True"
	case KindFalse:
		return "False"
	case KindIdent:
		return "Ident"
	case KindPrimitiveType:
		return "PrimitiveType"
	case KindBlock:
		return "Block"
	case KindData:
		return "Data"
	case KindUnaryOp:
		return "UnaryOp"
	case KindBinOp:
		return "BinOp"
	case KindInvoc:
		return "Invoc"
	case KindIf:
		return "If"
	case KindElif:
		return "Elif"
	case KindElse:
		return "Else"
	case KindFnExpr:
		return "FnExpr"
	case KindVarDef:
		return "VarDef"
	case KindFor:
		return "For"
	case KindWhile:
		return "While"
	case KindBreak:
		return "Break"
	case KindContinue:
		return "Continue"
	case KindReturn:
		return "Return"
	case KindYield:
		return "Yield"
	case KindStruct:
		return "Struct"
	case KindDefType:
		return "DefType"
	case KindLetType:
		return "LetType"
	case KindTemplate:
		return "Template"
	case KindTypeExpr:
		return "TypeExpr"
	case KindAssign:
		return "Assign"
	default:
		return "Unknown"
	}
}

// Node is the shared handle every Tree<A> variant implements: a location,
// an attribute slot, and a Kind tag for dispatch. Children may be shared
// (structural sharing, no cycles); the walk combinator rebuilds rather
// than mutates, so aliasing an existing Node is always safe.
type Node[A any] interface {
	Kind() Kind
	Location() token.Location
	Attribute() A
}

type base[A any] struct {
	Loc  token.Location
	Attr A
}

func (b base[A]) Location() token.Location { return b.Loc }
func (b base[A]) Attribute() A             { return b.Attr }

// --- Literals ---

type IntLit[A any] struct {
	base[A]
	Value token.IntLiteral
}

func (*IntLit[A]) Kind() Kind { return KindIntLit }

type FloatLit[A any] struct {
	base[A]
	Value token.FloatLiteral
}

func (*FloatLit[A]) Kind() Kind { return KindFloatLit }

type StringLit[A any] struct {
	base[A]
	Bytes []byte
}

func (*StringLit[A]) Kind() Kind { return KindStringLit }

type True[A any] struct{ base[A] }

func (*True[A]) Kind() Kind { return KindTrue }

type False[A any] struct{ base[A] }

func (*False[A]) Kind() Kind { return KindFalse }

// --- Names ---

type Ident[A any] struct {
	base[A]
	Name string
}

func (*Ident[A]) Kind() Kind { return KindIdent }

// PrimitiveType is a bare type-name keyword used as an atom in type
// context (e.g. `int`, `ptr`, `array`) before any Invoc refines it with
// type-parameters.
type PrimitiveType[A any] struct {
	base[A]
	Name token.Kind
}

func (*PrimitiveType[A]) Kind() Kind { return KindPrimitiveType }

// --- Sequences ---

type Block[A any] struct {
	base[A]
	Stmts []Node[A]
}

func (*Block[A]) Kind() Kind { return KindBlock }

// Data is an ordered sequence of children in argument/tuple context,
// distinguished from Block purely by how the enclosing parens were
// opened.
type Data[A any] struct {
	base[A]
	Elems []Node[A]
}

func (*Data[A]) Kind() Kind { return KindData }

// --- Operators ---

type UnaryOp[A any] struct {
	base[A]
	Op      token.Kind
	Operand Node[A]
}

func (*UnaryOp[A]) Kind() Kind { return KindUnaryOp }

type BinOp[A any] struct {
	base[A]
	Op  token.Kind
	Lhs Node[A]
	Rhs Node[A]
}

func (*BinOp[A]) Kind() Kind { return KindBinOp }

type Invoc[A any] struct {
	base[A]
	Target Node[A]
	Args   *Data[A]
}

func (*Invoc[A]) Kind() Kind { return KindInvoc }

// --- Control flow ---

// If holds parallel vectors of elif-test/elif-body nodes (the first
// being the `if` clause itself) and an optional else-body.
type If[A any] struct {
	base[A]
	ElifTests  []Node[A]
	ElifBodies []Node[A]
	ElseBranch Node[A] // nil if no else
}

func (*If[A]) Kind() Kind { return KindIf }

// Elif and Else are transient parse-time productions the parser folds
// into an enclosing If; a Node of either kind surviving past parsing (or
// reaching the walk combinator) is a dangling-clause error.
type Elif[A any] struct {
	base[A]
	Test Node[A]
	Body Node[A]
}

func (*Elif[A]) Kind() Kind { return KindElif }

type Else[A any] struct {
	base[A]
	Body Node[A]
}

func (*Else[A]) Kind() Kind { return KindElse }

// Capture describes one entry of an FnExpr's `with` capture list. The
// semantics of by-value vs by-reference capture are an explicit open
// question; only the syntactic form is carried here.
type Capture struct {
	Name  string
	ByVar bool
}

type FnExpr[A any] struct {
	base[A]
	ArgNames []string
	ArgTypes []Node[A] // aligned with ArgNames; holes = Unit-typed placeholder node
	Result   Node[A]   // nil if unannotated
	Body     Node[A]
	Captures []Capture
}

func (*FnExpr[A]) Kind() Kind { return KindFnExpr }

type VarDef[A any] struct {
	base[A]
	Name     string
	DeclType Node[A] // nil if not declared
	Rhs      Node[A]
}

func (*VarDef[A]) Kind() Kind { return KindVarDef }

type For[A any] struct {
	base[A]
	Var  string
	Iter Node[A]
	Body Node[A]
}

func (*For[A]) Kind() Kind { return KindFor }

type While[A any] struct {
	base[A]
	Test Node[A]
	Body Node[A]
}

func (*While[A]) Kind() Kind { return KindWhile }

type Break[A any] struct{ base[A] }

func (*Break[A]) Kind() Kind { return KindBreak }

type Continue[A any] struct{ base[A] }

func (*Continue[A]) Kind() Kind { return KindContinue }

type Return[A any] struct {
	base[A]
	Value Node[A] // nil if bare `return`
}

func (*Return[A]) Kind() Kind { return KindReturn }

type Yield[A any] struct {
	base[A]
	Value Node[A] // nil if bare `yield`
}

func (*Yield[A]) Kind() Kind { return KindYield }

// --- Declarations ---

type Struct[A any] struct {
	base[A]
	Names []string
	Types []Node[A]
}

func (*Struct[A]) Kind() Kind { return KindStruct }

// DefType introduces a new nominal type; LetType is a pure alias.
type DefType[A any] struct {
	base[A]
	Name     string
	TypeExpr Node[A]
}

func (*DefType[A]) Kind() Kind { return KindDefType }

type LetType[A any] struct {
	base[A]
	Name     string
	TypeExpr Node[A]
}

func (*LetType[A]) Kind() Kind { return KindLetType }

type Template[A any] struct {
	base[A]
	ParamNames []string
	ParamTypes []Node[A]
	Body       Node[A]
}

func (*Template[A]) Kind() Kind { return KindTemplate }

// TypeExpr wraps its child to mark it as being evaluated in type context.
type TypeExpr[A any] struct {
	base[A]
	Child Node[A]
}

func (*TypeExpr[A]) Kind() Kind { return KindTypeExpr }

type Assign[A any] struct {
	base[A]
	Lhs Node[A]
	Rhs Node[A]
}

func (*Assign[A]) Kind() Kind { return KindAssign }

// New* constructors all take a Location and attribute so the parser can
// build nodes in one line without repeating the embedded-base dance.

func NewIntLit[A any](loc token.Location, attr A, v token.IntLiteral) *IntLit[A] {
	return &IntLit[A]{base: base[A]{Loc: loc, Attr: attr}, Value: v}
}

func NewFloatLit[A any](loc token.Location, attr A, v token.FloatLiteral) *FloatLit[A] {
	return &FloatLit[A]{base: base[A]{Loc: loc, Attr: attr}, Value: v}
}

func NewStringLit[A any](loc token.Location, attr A, b []byte) *StringLit[A] {
	return &StringLit[A]{base: base[A]{Loc: loc, Attr: attr}, Bytes: b}
}

func NewTrue[A any](loc token.Location, attr A) *True[A] {
	return &True[A]{base: base[A]{Loc: loc, Attr: attr}}
}

func NewFalse[A any](loc token.Location, attr A) *False[A] {
	return &False[A]{base: base[A]{Loc: loc, Attr: attr}}
}

func NewIdent[A any](loc token.Location, attr A, name string) *Ident[A] {
	return &Ident[A]{base: base[A]{Loc: loc, Attr: attr}, Name: name}
}

func NewPrimitiveType[A any](loc token.Location, attr A, name token.Kind) *PrimitiveType[A] {
	return &PrimitiveType[A]{base: base[A]{Loc: loc, Attr: attr}, Name: name}
}

func NewBlock[A any](loc token.Location, attr A, stmts []Node[A]) *Block[A] {
	return &Block[A]{base: base[A]{Loc: loc, Attr: attr}, Stmts: stmts}
}

func NewData[A any](loc token.Location, attr A, elems []Node[A]) *Data[A] {
	return &Data[A]{base: base[A]{Loc: loc, Attr: attr}, Elems: elems}
}

func NewUnaryOp[A any](loc token.Location, attr A, op token.Kind, operand Node[A]) *UnaryOp[A] {
	return &UnaryOp[A]{base: base[A]{Loc: loc, Attr: attr}, Op: op, Operand: operand}
}

func NewBinOp[A any](loc token.Location, attr A, op token.Kind, lhs, rhs Node[A]) *BinOp[A] {
	return &BinOp[A]{base: base[A]{Loc: loc, Attr: attr}, Op: op, Lhs: lhs, Rhs: rhs}
}

func NewInvoc[A any](loc token.Location, attr A, target Node[A], args *Data[A]) *Invoc[A] {
	return &Invoc[A]{base: base[A]{Loc: loc, Attr: attr}, Target: target, Args: args}
}

func NewIf[A any](loc token.Location, attr A, tests, bodies []Node[A], elseBranch Node[A]) *If[A] {
	invariant.Precondition(len(tests) == len(bodies) && len(tests) >= 1,
		"If requires parallel test/body vectors with at least one clause, got %d/%d", len(tests), len(bodies))
	return &If[A]{base: base[A]{Loc: loc, Attr: attr}, ElifTests: tests, ElifBodies: bodies, ElseBranch: elseBranch}
}

func NewElif[A any](loc token.Location, attr A, test, body Node[A]) *Elif[A] {
	return &Elif[A]{base: base[A]{Loc: loc, Attr: attr}, Test: test, Body: body}
}

func NewElse[A any](loc token.Location, attr A, body Node[A]) *Else[A] {
	return &Else[A]{base: base[A]{Loc: loc, Attr: attr}, Body: body}
}

func NewFnExpr[A any](loc token.Location, attr A, argNames []string, argTypes []Node[A], result, body Node[A], captures []Capture) *FnExpr[A] {
	invariant.Precondition(len(argNames) == len(argTypes),
		"FnExpr arg names and types must align, got %d names / %d types", len(argNames), len(argTypes))
	return &FnExpr[A]{base: base[A]{Loc: loc, Attr: attr}, ArgNames: argNames, ArgTypes: argTypes, Result: result, Body: body, Captures: captures}
}

func NewVarDef[A any](loc token.Location, attr A, name string, declType, rhs Node[A]) *VarDef[A] {
	return &VarDef[A]{base: base[A]{Loc: loc, Attr: attr}, Name: name, DeclType: declType, Rhs: rhs}
}

func NewFor[A any](loc token.Location, attr A, v string, iter, body Node[A]) *For[A] {
	return &For[A]{base: base[A]{Loc: loc, Attr: attr}, Var: v, Iter: iter, Body: body}
}

func NewWhile[A any](loc token.Location, attr A, test, body Node[A]) *While[A] {
	return &While[A]{base: base[A]{Loc: loc, Attr: attr}, Test: test, Body: body}
}

func NewBreak[A any](loc token.Location, attr A) *Break[A] {
	return &Break[A]{base: base[A]{Loc: loc, Attr: attr}}
}

func NewContinue[A any](loc token.Location, attr A) *Continue[A] {
	return &Continue[A]{base: base[A]{Loc: loc, Attr: attr}}
}

func NewReturn[A any](loc token.Location, attr A, value Node[A]) *Return[A] {
	return &Return[A]{base: base[A]{Loc: loc, Attr: attr}, Value: value}
}

func NewYield[A any](loc token.Location, attr A, value Node[A]) *Yield[A] {
	return &Yield[A]{base: base[A]{Loc: loc, Attr: attr}, Value: value}
}

func NewStruct[A any](loc token.Location, attr A, names []string, types []Node[A]) *Struct[A] {
	return &Struct[A]{base: base[A]{Loc: loc, Attr: attr}, Names: names, Types: types}
}

func NewDefType[A any](loc token.Location, attr A, name string, typeExpr Node[A]) *DefType[A] {
	return &DefType[A]{base: base[A]{Loc: loc, Attr: attr}, Name: name, TypeExpr: typeExpr}
}

func NewLetType[A any](loc token.Location, attr A, name string, typeExpr Node[A]) *LetType[A] {
	return &LetType[A]{base: base[A]{Loc: loc, Attr: attr}, Name: name, TypeExpr: typeExpr}
}

func NewTemplate[A any](loc token.Location, attr A, names []string, types []Node[A], body Node[A]) *Template[A] {
	return &Template[A]{base: base[A]{Loc: loc, Attr: attr}, ParamNames: names, ParamTypes: types, Body: body}
}

func NewTypeExpr[A any](loc token.Location, attr A, child Node[A]) *TypeExpr[A] {
	return &TypeExpr[A]{base: base[A]{Loc: loc, Attr: attr}, Child: child}
}

func NewAssign[A any](loc token.Location, attr A, lhs, rhs Node[A]) *Assign[A] {
	return &Assign[A]{base: base[A]{Loc: loc, Attr: attr}, Lhs: lhs, Rhs: rhs}
}
