package types

import "testing"

func TestEqualStructural(t *testing.T) {
	cases := []struct {
		name string
		a, b *Type
		want bool
	}{
		{"same int", IntType(true, 32), IntType(true, 32), true},
		{"different width", IntType(true, 32), IntType(true, 64), false},
		{"different sign", IntType(true, 32), IntType(false, 32), false},
		{"ptr of same elem", PtrType(CharType(), nil), PtrType(CharType(), nil), true},
		{"array same shape", ArrayType(IntType(true, 32), []int{3}), ArrayType(IntType(true, 32), []int{3}), true},
		{"array different shape", ArrayType(IntType(true, 32), []int{3}), ArrayType(IntType(true, 32), []int{4}), false},
		{"strlit same size", StrlitType(5), StrlitType(5), true},
		{"strlit different size", StrlitType(5), StrlitType(6), false},
		{
			"tuple elementwise",
			TupleType([]Field{{Type: BoolType()}, {Type: CharType()}}),
			TupleType([]Field{{Type: BoolType()}, {Type: CharType()}}),
			true,
		},
		{
			"struct field names matter",
			StructType([]Field{{Name: "a", Type: BoolType()}}),
			StructType([]Field{{Name: "b", Type: BoolType()}}),
			false,
		},
		{
			"nominal equality by name only",
			NominalType("Age", IntType(true, 32)),
			NominalType("Age", IntType(true, 64)),
			true,
		},
		{
			"distinct nominals with same underlying",
			NominalType("Age", IntType(true, 32)),
			NominalType("Year", IntType(true, 32)),
			false,
		},
		{"tuple is not struct", TupleType(nil), StructType(nil), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Equal(c.a, c.b); got != c.want {
				t.Fatalf("Equal(%s, %s) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

// Less must be irreflexive and asymmetric so a Type can key an ordered
// map; exercise it over one representative of each variant.
func TestLessIsStrictOrder(t *testing.T) {
	samples := []*Type{
		VoidType(),
		IntType(true, 8),
		IntType(true, 64),
		IntType(false, 32),
		FloatType(32),
		FloatType(64),
		BoolType(),
		CharType(),
		PtrType(CharType(), nil),
		ArrayType(IntType(true, 32), []int{2}),
		DynarrType(BoolType(), nil),
		SliceType(CharType(), 0, 4, 1),
		StrlitType(3),
		StringType(nil),
		TupleType([]Field{{Type: BoolType()}}),
		StructType([]Field{{Name: "x", Type: CharType()}}),
		FunctionType(VoidType(), []Field{{Name: "s", Type: StringType(nil)}}),
		VariantType([]*Type{BoolType(), CharType()}),
		NominalType("Age", IntType(true, 32)),
		UnknownType(),
	}
	for i, a := range samples {
		if Less(a, a) {
			t.Errorf("Less(%s, %s) must be false (irreflexive)", a, a)
		}
		for j, b := range samples {
			if i == j {
				continue
			}
			lt, gt := Less(a, b), Less(b, a)
			if lt && gt {
				t.Errorf("Less(%s, %s) and Less(%s, %s) both true (asymmetric violation)", a, b, b, a)
			}
			if !Equal(a, b) && !lt && !gt {
				t.Errorf("unequal types %s and %s are unordered", a, b)
			}
		}
	}
}

func TestAssignable(t *testing.T) {
	cases := []struct {
		name     string
		from, to *Type
		want     bool
	}{
		{"identical", BoolType(), BoolType(), true},
		{"int widens", IntType(true, 32), IntType(true, 64), true},
		{"int cannot narrow", IntType(true, 64), IntType(true, 32), false},
		{"sign must match", IntType(false, 32), IntType(true, 64), false},
		{"int to float", IntType(true, 64), FloatType(32), true},
		{"float to int rejected", FloatType(32), IntType(true, 64), false},
		{"strlit to string", StrlitType(7), StringType(nil), true},
		{"strlit to ptr char", StrlitType(7), PtrType(CharType(), nil), true},
		{"strlit to ptr bool rejected", StrlitType(7), PtrType(BoolType(), nil), false},
		{"array decays to ptr", ArrayType(CharType(), []int{4}), PtrType(CharType(), nil), true},
		{
			"tuple pointwise",
			TupleType([]Field{{Type: IntType(true, 32)}}),
			TupleType([]Field{{Type: IntType(true, 64)}}),
			true,
		},
		{
			"tuple arity mismatch",
			TupleType([]Field{{Type: IntType(true, 32)}}),
			TupleType(nil),
			false,
		},
		{
			"nominal unwraps on target side",
			IntType(true, 32),
			NominalType("Age", IntType(true, 64)),
			true,
		},
		{
			"nominal does not unwrap on source side",
			NominalType("Age", IntType(true, 32)),
			IntType(true, 64),
			false,
		},
		{"bool to char rejected", BoolType(), CharType(), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Assignable(c.from, c.to); got != c.want {
				t.Fatalf("Assignable(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
			}
		})
	}
}

func TestStringRendering(t *testing.T) {
	cases := []struct {
		typ  *Type
		want string
	}{
		{IntType(true, 32), "i32"},
		{IntType(false, 8), "u8"},
		{FloatType(64), "f64"},
		{PtrType(CharType(), nil), "ptr(char)"},
		{ArrayType(IntType(true, 32), []int{3}), "array(i32, [3])"},
		{StrlitType(5), "strlit(5)"},
		{FunctionType(VoidType(), []Field{{Type: StringType(nil)}}), "fn(string) -> void"},
		{NominalType("Age", IntType(true, 32)), "Age"},
		{nil, "unknown"},
	}
	for _, c := range cases {
		if got := c.typ.String(); got != c.want {
			t.Errorf("String: got %q, want %q", got, c.want)
		}
	}
}
