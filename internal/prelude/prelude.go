// Package prelude builds the seed Environment the type checker starts
// every file from: the primitive type-name bindings, the
// `print` function binding, and the default `fn` context.
package prelude

import (
	"github.com/glintlang/glint/internal/env"
	"github.com/glintlang/glint/internal/types"
)

// New returns a fresh prelude environment. Called once per Check so no
// caller can observe another caller's mutations (there are none — env is
// immutable — but a fresh value also means a fresh set of underlying
// maps to clone from).
func New() env.Environment {
	e := env.New(env.Fn)

	// Sized integer/float primitives.
	e = e.WithType("i8", types.IntType(true, 8))
	e = e.WithType("i16", types.IntType(true, 16))
	e = e.WithType("i32", types.IntType(true, 32))
	e = e.WithType("i64", types.IntType(true, 64))
	e = e.WithType("u8", types.IntType(false, 8))
	e = e.WithType("u16", types.IntType(false, 16))
	e = e.WithType("u32", types.IntType(false, 32))
	e = e.WithType("u64", types.IntType(false, 64))
	e = e.WithType("f32", types.FloatType(32))
	e = e.WithType("f64", types.FloatType(64))

	// Aliases: byte/short/int/long map to the fixed-width
	// family the way the original `byte = u8` etc. naming suggests.
	e = e.WithType("byte", types.IntType(false, 8))
	e = e.WithType("short", types.IntType(true, 16))
	e = e.WithType("int", types.IntType(true, 32))
	e = e.WithType("long", types.IntType(true, 64))
	e = e.WithType("ubyte", types.IntType(false, 8))
	e = e.WithType("ushort", types.IntType(false, 16))
	e = e.WithType("uint", types.IntType(false, 32))
	e = e.WithType("ulong", types.IntType(false, 64))

	// Marker types: bound as placeholders so an Identifier lookup in type
	// context resolves, even though most uses reach the checker via the
	// PrimitiveType AST node rather than a plain identifier.
	e = e.WithType("ptr", types.PtrType(types.UnknownType(), nil))
	e = e.WithType("array", types.ArrayType(types.UnknownType(), nil))
	e = e.WithType("dynarr", types.DynarrType(types.UnknownType(), nil))
	e = e.WithType("bool", types.BoolType())
	e = e.WithType("char", types.CharType())
	e = e.WithType("slice", types.SliceType(types.UnknownType(), 0, 0, 1))
	e = e.WithType("variant", types.VariantType(nil))
	e = e.WithType("fn", types.FunctionType(types.VoidType(), nil))
	e = e.WithType("tuple", types.TupleType(nil))
	e = e.WithType("strlit", types.StrlitType(0))
	e = e.WithType("UNKNOWN", types.UnknownType())
	e = e.WithType("void", types.VoidType())
	e = e.WithType("string", types.StringType(nil))

	// print : fn(string) -> void, the one prelude function binding;
	// a variadic, allocator-free "print anything" builtin is out
	// of scope for the structural type system, so print takes a single
	// string argument.
	e = e.WithFn("print", types.FunctionType(types.VoidType(), []types.Field{
		{Name: "", Type: types.StringType(nil)},
	}))

	return e
}
