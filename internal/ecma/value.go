// Package ecma implements the engine's value representation: a tagged
// 64-bit word that carries either an inline payload (simple constants,
// integers, built-in strings) or a reference to a heap entity, together with
// the copy/free/assign protocol that keeps reference counts exact.
//
// A Context owns one heap; every operation that may touch heap memory is a
// Context method. Values must never cross contexts.
package ecma

import (
	"fmt"
	"strconv"
)

// Value is a tagged value word.
type Value uint64

// Type is the three-bit type field of a Value.
type Type uint8

const (
	TypeDirect       Type = 0 // owns nothing
	TypeString       Type = 1
	TypeFloat        Type = 2
	TypeObject       Type = 3
	TypeSymbol       Type = 4
	TypeDirectString Type = 5 // TypeString | 4, owns nothing
	TypeBigInt       Type = 6
	TypeError        Type = 7
)

const (
	ValueTypeMask = 0x7
	ValueShift    = 3

	DirectTypeMask    = 0xF
	DirectTypeInteger = 0x0
	DirectTypeSimple  = 0x8
	DirectShift       = 4

	DirectStringShift = 5
	directStringKinds = 0x3 << ValueShift
)

// Simple values.
const (
	Empty         = Value(0<<DirectShift | DirectTypeSimple)
	Uninitialized = Value(1<<DirectShift | DirectTypeSimple)
	False         = Value(2<<DirectShift | DirectTypeSimple)
	True          = Value(3<<DirectShift | DirectTypeSimple)
	Undefined     = Value(4<<DirectShift | DirectTypeSimple)
	Null          = Value(5<<DirectShift | DirectTypeSimple)
	ArrayHole     = Value(6<<DirectShift | DirectTypeSimple)
	NotFound      = Value(7<<DirectShift | DirectTypeSimple)
)

// booleanBit is the only bit in which True and False differ.
const booleanBit = Value(1) << DirectShift

// Inline integer range: a signed 60-bit payload above the DIRECT sub-tag.
const (
	IntegerMin = -(int64(1) << (64 - DirectShift - 1))
	IntegerMax = int64(1)<<(64-DirectShift-1) - 1
)

// DirectStringKind selects how a DIRECT_STRING payload is interpreted.
type DirectStringKind uint8

const (
	DirectStringMagic   DirectStringKind = 1 // built-in string id
	DirectStringUint    DirectStringKind = 2 // canonical uint32 numeral
	DirectStringSpecial DirectStringKind = 3 // reserved
)

// BigIntZero is the non-owning encoding of the zero BigInt.
const BigIntZero = Value(TypeBigInt)

// String names the type field.
func (t Type) String() string {
	switch t {
	case TypeDirect:
		return "direct"
	case TypeString:
		return "string"
	case TypeFloat:
		return "float"
	case TypeObject:
		return "object"
	case TypeSymbol:
		return "symbol"
	case TypeDirectString:
		return "direct_string"
	case TypeBigInt:
		return "bigint"
	case TypeError:
		return "error"
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// Type returns the type field.
func (v Value) Type() Type { return Type(v & ValueTypeMask) }

func (v Value) IsDirect() bool    { return v.Type() == TypeDirect }
func (v Value) IsSimple() bool    { return v&DirectTypeMask == DirectTypeSimple }
func (v Value) IsEmpty() bool     { return v == Empty }
func (v Value) IsUndefined() bool { return v == Undefined }
func (v Value) IsNull() bool      { return v == Null }
func (v Value) IsBoolean() bool   { return v|booleanBit == True }
func (v Value) IsTrue() bool      { return v == True }
func (v Value) IsFalse() bool     { return v == False }
func (v Value) IsFound() bool     { return v != NotFound }
func (v Value) IsArrayHole() bool { return v == ArrayHole }

// IsUndefinedOrNull reports whether v is undefined or null.
func (v Value) IsUndefinedOrNull() bool { return v == Undefined || v == Null }

func (v Value) IsIntegerNumber() bool { return v&DirectTypeMask == DirectTypeInteger }
func (v Value) IsFloatNumber() bool   { return v.Type() == TypeFloat }
func (v Value) IsNumber() bool        { return v.IsIntegerNumber() || v.IsFloatNumber() }

// IsString matches both heap and direct strings, which share the low two
// type bits.
func (v Value) IsString() bool { return v&0x3 == Value(TypeString) }

func (v Value) IsDirectString() bool    { return v.Type() == TypeDirectString }
func (v Value) IsNonDirectString() bool { return v.Type() == TypeString }
func (v Value) IsSymbol() bool          { return v.Type() == TypeSymbol }
func (v Value) IsPropName() bool        { return v.IsString() || v.IsSymbol() }
func (v Value) IsBigInt() bool          { return v.Type() == TypeBigInt }
func (v Value) IsObject() bool          { return v.Type() == TypeObject }
func (v Value) IsErrorReference() bool  { return v.Type() == TypeError }

func (v Value) isZeroBigInt() bool      { return v == BigIntZero }
func (v Value) payload() uint64         { return uint64(v) &^ ValueTypeMask }
func (v Value) directStringImm() uint64 { return uint64(v) >> DirectStringShift }

func (v Value) directStringKind() DirectStringKind {
	return DirectStringKind((v & directStringKinds) >> ValueShift)
}

// AreIntegerNumbers reports whether both values are inline integers.
func AreIntegerNumbers(a, b Value) bool {
	return (a|b)&DirectTypeMask == DirectTypeInteger
}

// MakeBoolean returns True or False.
func MakeBoolean(b bool) Value {
	if b {
		return True
	}
	return False
}

// InvertBoolean flips a boolean value without branching on it.
func InvertBoolean(v Value) Value {
	assertf(v.IsBoolean(), "InvertBoolean on %s", v)
	return v ^ booleanBit
}

// String formats the raw word for diagnostics.
func (v Value) String() string {
	switch {
	case v.IsSimple():
		return simpleName(v)
	case v.IsIntegerNumber():
		return "int(" + strconv.FormatInt(v.Integer(), 10) + ")"
	case v.IsDirectString():
		return fmt.Sprintf("dstr(%d:%d)", v.directStringKind(), v.directStringImm())
	case v.isZeroBigInt():
		return "bigint(0)"
	}
	return fmt.Sprintf("%s@%#x", v.Type(), v.payload())
}

func simpleName(v Value) string {
	switch v {
	case Empty:
		return "empty"
	case Uninitialized:
		return "uninitialized"
	case False:
		return "false"
	case True:
		return "true"
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case ArrayHole:
		return "array_hole"
	case NotFound:
		return "not_found"
	}
	return fmt.Sprintf("simple(%#x)", uint64(v))
}
