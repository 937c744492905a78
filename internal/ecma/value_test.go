package ecma

import (
	"math/bits"
	"testing"

	"ecmacore/internal/jrt"
	"ecmacore/internal/lit"
)

func TestIntegerRoundTrip(t *testing.T) {
	for _, i := range []int64{0, 1, -1, 42, -42, 1 << 31, -(1 << 40), IntegerMin, IntegerMax, IntegerMax - 1} {
		v := MakeInteger(i)
		if !v.IsIntegerNumber() || !v.IsDirect() || !v.IsNumber() {
			t.Fatalf("MakeInteger(%d) = %s is not an inline integer", i, v)
		}
		if got := v.Integer(); got != i {
			t.Fatalf("Integer(MakeInteger(%d)) = %d", i, got)
		}
		if v.Kind() != KindInteger || v.OwnsMemory() {
			t.Fatalf("MakeInteger(%d) kind %s owns=%v", i, v.Kind(), v.OwnsMemory())
		}
	}
}

func TestMakeIntegerOutOfRangeIsFatal(t *testing.T) {
	requireAssertions(t)
	expectFatal(t, jrt.ErrFailedInternalAssertion, func() { MakeInteger(IntegerMax + 1) })
	expectFatal(t, jrt.ErrFailedInternalAssertion, func() { MakeInteger(IntegerMin - 1) })
}

func TestBooleanEncoding(t *testing.T) {
	if bits.OnesCount64(uint64(True^False)) != 1 {
		t.Fatalf("true %#x and false %#x must differ in one bit", uint64(True), uint64(False))
	}
	if MakeBoolean(true) != True || MakeBoolean(false) != False {
		t.Fatal("MakeBoolean returned the wrong constant")
	}
	if InvertBoolean(MakeBoolean(true)) != MakeBoolean(false) || InvertBoolean(MakeBoolean(false)) != MakeBoolean(true) {
		t.Fatal("InvertBoolean is not a complement")
	}
	for _, v := range []Value{True, False} {
		if !v.IsBoolean() || !v.IsSimple() || !v.IsDirect() {
			t.Fatalf("%s predicates wrong", v)
		}
	}
	for _, v := range []Value{Undefined, Null, Empty, MakeInteger(2)} {
		if v.IsBoolean() {
			t.Fatalf("%s reported as boolean", v)
		}
	}
}

func TestInvertNonBooleanIsFatal(t *testing.T) {
	requireAssertions(t)
	expectFatal(t, jrt.ErrFailedInternalAssertion, func() { InvertBoolean(Null) })
}

func TestSimpleValueKinds(t *testing.T) {
	cases := []struct {
		v    Value
		kind Kind
	}{
		{Empty, KindEmpty},
		{Uninitialized, KindUninitialized},
		{Undefined, KindUndefined},
		{Null, KindNull},
		{True, KindBoolean},
		{False, KindBoolean},
		{ArrayHole, KindArrayHole},
		{NotFound, KindNotFound},
		{BigIntZero, KindBigIntZero},
	}
	for _, tc := range cases {
		if got := tc.v.Kind(); got != tc.kind {
			t.Fatalf("%s: kind %s, want %s", tc.v, got, tc.kind)
		}
		if tc.v.OwnsMemory() {
			t.Fatalf("%s owns memory", tc.v)
		}
	}
	if !Empty.IsEmpty() || !Undefined.IsUndefined() || !Null.IsNull() || !ArrayHole.IsArrayHole() {
		t.Fatal("simple predicates")
	}
	if NotFound.IsFound() || !Undefined.IsFound() {
		t.Fatal("IsFound")
	}
	if !Null.IsUndefinedOrNull() || !Undefined.IsUndefinedOrNull() || False.IsUndefinedOrNull() {
		t.Fatal("IsUndefinedOrNull")
	}
}

func TestDirectStrings(t *testing.T) {
	m := MakeMagicString(lit.MagicLength)
	u := MakeUintString(4294967295)
	for _, v := range []Value{m, u} {
		if !v.IsString() || !v.IsDirectString() || v.IsNonDirectString() || !v.IsPropName() {
			t.Fatalf("%s: direct string predicates wrong", v)
		}
		if v.OwnsMemory() || v.Kind() != KindDirectString {
			t.Fatalf("%s: kind %s", v, v.Kind())
		}
	}
	if m.directStringKind() != DirectStringMagic || m.directStringImm() != uint64(lit.MagicLength) {
		t.Fatalf("magic string layout: %s", m)
	}
	if u.directStringKind() != DirectStringUint || u.directStringImm() != 4294967295 {
		t.Fatalf("uint string layout: %s", u)
	}
}

func TestTypePredicatesFollowTypeField(t *testing.T) {
	c := newContext(t, Options{})
	str := c.NewString("not a builtin")
	sym := c.NewSymbol(Undefined)
	obj := c.NewObject(ObjectGeneral)
	f := c.MakeNumber(0.5)
	big, err := c.ParseBigInt("12345678901234567890n")
	if err != nil {
		t.Fatal(err)
	}
	errRef := c.RaiseTypeError("boom")

	cases := []struct {
		v    Value
		typ  Type
		kind Kind
	}{
		{str, TypeString, KindString},
		{sym, TypeSymbol, KindSymbol},
		{obj, TypeObject, KindObject},
		{f, TypeFloat, KindFloat},
		{big, TypeBigInt, KindBigInt},
		{errRef, TypeError, KindErrorReference},
	}
	for _, tc := range cases {
		if tc.v.Type() != tc.typ || tc.v.Kind() != tc.kind {
			t.Fatalf("%s: type %s kind %s, want %s %s", tc.v, tc.v.Type(), tc.v.Kind(), tc.typ, tc.kind)
		}
		if !tc.v.OwnsMemory() {
			t.Fatalf("%s should own memory", tc.v)
		}
	}
	if !str.IsString() || !str.IsNonDirectString() || str.IsDirectString() {
		t.Fatal("heap string predicates")
	}
	if !sym.IsSymbol() || !sym.IsPropName() || sym.IsString() {
		t.Fatal("symbol predicates")
	}
	if !obj.IsObject() || obj.IsString() || obj.IsErrorReference() {
		t.Fatal("object predicates")
	}
	if !f.IsFloatNumber() || !f.IsNumber() || f.IsIntegerNumber() || f.IsDirect() {
		t.Fatal("float predicates")
	}
	if !big.IsBigInt() || big.IsNumber() {
		t.Fatal("bigint predicates")
	}
	if !errRef.IsErrorReference() || errRef.IsObject() || errRef.IsString() {
		t.Fatal("error reference predicates")
	}
	if !AreIntegerNumbers(MakeInteger(1), MakeInteger(-7)) || AreIntegerNumbers(MakeInteger(1), f) || AreIntegerNumbers(True, MakeInteger(1)) {
		t.Fatal("AreIntegerNumbers")
	}

	c.Free(str)
	c.Free(sym)
	c.Free(obj)
	c.Free(f)
	c.Free(big)
	c.ReleaseError(errRef)
	closeClean(t, c)
}

func TestCheckSpecDefined(t *testing.T) {
	CheckSpecDefined(Undefined)
	CheckSpecDefined(MakeInteger(3))
	requireAssertions(t)
	expectFatal(t, jrt.ErrFailedInternalAssertion, func() { CheckSpecDefined(Empty) })
	expectFatal(t, jrt.ErrFailedInternalAssertion, func() { CheckSpecDefined(NotFound) })
}
