// Package types implements glint's structural type system: a closed sum
// of type variants compared structurally, with an irreflexive ordering
// so a Type can key a persistent map, and a directional assignability
// predicate.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Variant tags which alternative of the type sum a Type holds.
type Variant int

const (
	Void Variant = iota
	Int
	Float
	Bool
	Char
	Ptr
	Array
	Dynarr
	Slice
	Strlit
	String
	Tuple
	Struct
	Function
	VariantSet
	Nominal
	Unknown
)

func (v Variant) String() string {
	switch v {
	case Void:
		return "void"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Ptr:
		return "ptr"
	case Array:
		return "array"
	case Dynarr:
		return "dynarr"
	case Slice:
		return "slice"
	case Strlit:
		return "strlit"
	case String:
		return "string"
	case Tuple:
		return "tuple"
	case Struct:
		return "struct"
	case Function:
		return "function"
	case VariantSet:
		return "variant"
	case Nominal:
		return "nominal"
	default:
		return "unknown"
	}
}

// Field is one (optional name, type) pair shared by tuple, struct and
// function parameter lists.
type Field struct {
	Name string // "" if unnamed (tuple elements, unnamed parameters)
	Type *Type
}

// Type is an immutable structural type value. Only the fields relevant
// to Variant are meaningful; construct one via the helper constructors
// below rather than a literal, so every Type stays well-formed.
type Type struct {
	Variant Variant

	// Int
	Signed bool
	Width  int // 8/16/32/64 for Int/Float; 0 = unspecified

	// Ptr, Array, Dynarr, Slice element type
	Elem *Type

	// Ptr, Dynarr: optional allocator function type; nil = default allocator
	Allocator *Type

	// Array shape (sequence of dimension sizes)
	Shape []int

	// Slice
	Begin, End, Stride int

	// Strlit
	Size int

	// Tuple, Struct, Function parameters
	Fields []Field

	// Function result
	Result *Type

	// VariantSet
	Alts []*Type

	// Nominal
	Name       string
	Underlying *Type
}

func VoidType() *Type    { return &Type{Variant: Void} }
func BoolType() *Type    { return &Type{Variant: Bool} }
func CharType() *Type    { return &Type{Variant: Char} }
func UnknownType() *Type { return &Type{Variant: Unknown} }

func IntType(signed bool, width int) *Type {
	return &Type{Variant: Int, Signed: signed, Width: width}
}

func FloatType(width int) *Type {
	return &Type{Variant: Float, Width: width}
}

func PtrType(elem *Type, allocator *Type) *Type {
	return &Type{Variant: Ptr, Elem: elem, Allocator: allocator}
}

func ArrayType(elem *Type, shape []int) *Type {
	return &Type{Variant: Array, Elem: elem, Shape: shape}
}

func DynarrType(elem *Type, allocator *Type) *Type {
	return &Type{Variant: Dynarr, Elem: elem, Allocator: allocator}
}

func SliceType(elem *Type, begin, end, stride int) *Type {
	return &Type{Variant: Slice, Elem: elem, Begin: begin, End: end, Stride: stride}
}

func StrlitType(size int) *Type {
	return &Type{Variant: Strlit, Size: size}
}

func StringType(allocator *Type) *Type {
	return &Type{Variant: String, Allocator: allocator}
}

func TupleType(fields []Field) *Type {
	return &Type{Variant: Tuple, Fields: fields}
}

func StructType(fields []Field) *Type {
	return &Type{Variant: Struct, Fields: fields}
}

func FunctionType(result *Type, params []Field) *Type {
	return &Type{Variant: Function, Result: result, Fields: params}
}

func VariantType(alts []*Type) *Type {
	return &Type{Variant: VariantSet, Alts: alts}
}

func NominalType(name string, underlying *Type) *Type {
	return &Type{Variant: Nominal, Name: name, Underlying: underlying}
}

// IsUnknown reports whether t is nil or the Unknown placeholder —
// treated the same by the checker so a missing attribute never panics.
func (t *Type) IsUnknown() bool {
	return t == nil || t.Variant == Unknown
}

// String renders t the way a diagnostic message or pretty-printed typed
// AST would display it.
func (t *Type) String() string {
	if t == nil {
		return "unknown"
	}
	switch t.Variant {
	case Void:
		return "void"
	case Int:
		sign := "i"
		if !t.Signed {
			sign = "u"
		}
		if t.Width == 0 {
			return sign + "?"
		}
		return fmt.Sprintf("%s%d", sign, t.Width)
	case Float:
		if t.Width == 0 {
			return "f?"
		}
		return fmt.Sprintf("f%d", t.Width)
	case Bool:
		return "bool"
	case Char:
		return "char"
	case Ptr:
		return fmt.Sprintf("ptr(%s)", t.Elem.String())
	case Array:
		dims := make([]string, len(t.Shape))
		for i, d := range t.Shape {
			dims[i] = fmt.Sprintf("%d", d)
		}
		return fmt.Sprintf("array(%s, [%s])", t.Elem.String(), strings.Join(dims, ","))
	case Dynarr:
		return fmt.Sprintf("dynarr(%s)", t.Elem.String())
	case Slice:
		return fmt.Sprintf("slice(%s, %d, %d, %d)", t.Elem.String(), t.Begin, t.End, t.Stride)
	case Strlit:
		return fmt.Sprintf("strlit(%d)", t.Size)
	case String:
		return "string"
	case Tuple:
		return fmt.Sprintf("tuple(%s)", fieldList(t.Fields))
	case Struct:
		return fmt.Sprintf("struct(%s)", fieldList(t.Fields))
	case Function:
		return fmt.Sprintf("fn(%s) -> %s", fieldList(t.Fields), t.Result.String())
	case VariantSet:
		alts := make([]string, len(t.Alts))
		for i, a := range t.Alts {
			alts[i] = a.String()
		}
		return fmt.Sprintf("variant(%s)", strings.Join(alts, "|"))
	case Nominal:
		return t.Name
	default:
		return "unknown"
	}
}

func fieldList(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		if f.Name == "" {
			parts[i] = f.Type.String()
		} else {
			parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type.String())
		}
	}
	return strings.Join(parts, ", ")
}

// Equal is structural equality (nominal equality by name for Nominal).
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Variant != b.Variant {
		return false
	}
	switch a.Variant {
	case Void, Bool, Char, Unknown:
		return true
	case Int:
		return a.Signed == b.Signed && a.Width == b.Width
	case Float:
		return a.Width == b.Width
	case Ptr:
		return Equal(a.Elem, b.Elem)
	case Array:
		if !Equal(a.Elem, b.Elem) || len(a.Shape) != len(b.Shape) {
			return false
		}
		for i := range a.Shape {
			if a.Shape[i] != b.Shape[i] {
				return false
			}
		}
		return true
	case Dynarr:
		return Equal(a.Elem, b.Elem)
	case Slice:
		return Equal(a.Elem, b.Elem) && a.Begin == b.Begin && a.End == b.End && a.Stride == b.Stride
	case Strlit:
		return a.Size == b.Size
	case String:
		return true
	case Tuple, Struct:
		return fieldsEqual(a.Fields, b.Fields)
	case Function:
		return Equal(a.Result, b.Result) && fieldsEqual(a.Fields, b.Fields)
	case VariantSet:
		if len(a.Alts) != len(b.Alts) {
			return false
		}
		sa, sb := sortedCopy(a.Alts), sortedCopy(b.Alts)
		for i := range sa {
			if !Equal(sa[i], sb[i]) {
				return false
			}
		}
		return true
	case Nominal:
		return a.Name == b.Name
	default:
		return false
	}
}

func fieldsEqual(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || !Equal(a[i].Type, b[i].Type) {
			return false
		}
	}
	return true
}

// Less is an irreflexive total order over Types, sufficient to key a
// persistent map. It orders first by Variant, then by each
// variant's own fields, recursively.
func Less(a, b *Type) bool {
	if a == nil || b == nil {
		return ptrLess(a, b)
	}
	if a.Variant != b.Variant {
		return a.Variant < b.Variant
	}
	switch a.Variant {
	case Void, Bool, Char, Unknown:
		return false
	case Int:
		if a.Signed != b.Signed {
			return !a.Signed && b.Signed
		}
		return a.Width < b.Width
	case Float:
		return a.Width < b.Width
	case Ptr, Dynarr:
		return Less(a.Elem, b.Elem)
	case Array:
		if less := Less(a.Elem, b.Elem); less || Less(b.Elem, a.Elem) {
			return less
		}
		return intsLess(a.Shape, b.Shape)
	case Slice:
		if less := Less(a.Elem, b.Elem); less || Less(b.Elem, a.Elem) {
			return less
		}
		if a.Begin != b.Begin {
			return a.Begin < b.Begin
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Stride < b.Stride
	case Strlit:
		return a.Size < b.Size
	case String:
		return false
	case Tuple, Struct:
		return fieldsLess(a.Fields, b.Fields)
	case Function:
		if less := Less(a.Result, b.Result); less || Less(b.Result, a.Result) {
			return less
		}
		return fieldsLess(a.Fields, b.Fields)
	case VariantSet:
		return typesLess(a.Alts, b.Alts)
	case Nominal:
		return a.Name < b.Name
	default:
		return false
	}
}

func ptrLess(a, b *Type) bool { return a == nil && b != nil }

func intsLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func fieldsLess(a, b []Field) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Name != b[i].Name {
			return a[i].Name < b[i].Name
		}
		if less := Less(a[i].Type, b[i].Type); less || Less(b[i].Type, a[i].Type) {
			return less
		}
	}
	return len(a) < len(b)
}

func typesLess(a, b []*Type) bool {
	sa := sortedCopy(a)
	sb := sortedCopy(b)
	for i := 0; i < len(sa) && i < len(sb); i++ {
		if less := Less(sa[i], sb[i]); less || Less(sb[i], sa[i]) {
			return less
		}
	}
	return len(sa) < len(sb)
}

func sortedCopy(ts []*Type) []*Type {
	out := make([]*Type, len(ts))
	copy(out, ts)
	sort.Slice(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// Assignable is the directional compatibility predicate T ↦ U: whether
// a value of type from is admissible where a value of type to is
// expected.
func Assignable(from, to *Type) bool {
	if from == nil || to == nil {
		return false
	}
	if Equal(from, to) {
		return true
	}
	// nominal unwraps only on the target side.
	if to.Variant == Nominal {
		return Assignable(from, to.Underlying)
	}
	switch {
	case from.Variant == Int && to.Variant == Int:
		return to.Width >= from.Width && from.Signed == to.Signed
	case from.Variant == Int && to.Variant == Float:
		return true
	case from.Variant == Strlit && to.Variant == String:
		return true
	case from.Variant == Strlit && to.Variant == Ptr && to.Elem != nil && to.Elem.Variant == Char:
		return true
	case from.Variant == Array && to.Variant == Ptr:
		return Assignable(from.Elem, to.Elem) || Equal(from.Elem, to.Elem)
	case (from.Variant == Tuple && to.Variant == Tuple) || (from.Variant == Struct && to.Variant == Struct):
		return fieldsAssignable(from.Fields, to.Fields)
	case from.Variant == Function && to.Variant == Function:
		if !Assignable(from.Result, to.Result) && !Equal(from.Result, to.Result) {
			return false
		}
		return fieldsAssignable(from.Fields, to.Fields)
	default:
		return false
	}
}

func fieldsAssignable(from, to []Field) bool {
	if len(from) != len(to) {
		return false
	}
	for i := range from {
		if !Assignable(from[i].Type, to[i].Type) && !Equal(from[i].Type, to[i].Type) {
			return false
		}
	}
	return true
}
