package ecma

import (
	"strconv"
	"unicode/utf16"

	"fortio.org/safecast"

	"ecmacore/internal/lit"
)

// String is a heap string entity.
type String struct {
	header
	chars  string
	length uint32 // UTF-16 code units
}

func (s *String) kind() Kind { return KindString }

func (s *String) preview(*Context) string {
	return strconv.Quote(truncate(s.chars, previewRunes))
}

// Chars returns the string contents.
func (s *String) Chars() string { return s.chars }

// Length returns the length in UTF-16 code units.
func (s *String) Length() uint32 { return s.length }

// MakeMagicString encodes a built-in string inline.
func MakeMagicString(id lit.MagicStringID) Value {
	assertf(id.Valid(), "invalid magic string id %d", id)
	return makeDirectString(DirectStringMagic, uint64(id))
}

// MakeUintString encodes the canonical numeral of u inline.
func MakeUintString(u uint32) Value {
	return makeDirectString(DirectStringUint, uint64(u))
}

func makeDirectString(kind DirectStringKind, imm uint64) Value {
	return Value(imm<<DirectStringShift | uint64(kind)<<ValueShift | uint64(TypeDirectString))
}

// NewString returns a string value for s. Built-in strings and canonical
// uint32 numerals are encoded inline; anything else is allocated.
func (c *Context) NewString(s string) Value {
	if id, ok := lit.LookupMagic(s); ok {
		return MakeMagicString(id)
	}
	if u, ok := lit.ParseUintNumeral(s); ok {
		return MakeUintString(u)
	}
	size, err := safecast.Conv[uint32](headerSize + len(s))
	if err != nil {
		fatalf("string of %d bytes is too long", len(s))
	}
	str := &String{chars: s, length: utf16Length(s)}
	return c.encode(c.allocEntity(size, str), TypeString)
}

func utf16Length(s string) uint32 {
	var n uint32
	for _, r := range s {
		if utf16.RuneLen(r) == 2 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// StringOf returns the heap entity behind a non-direct string value.
func (c *Context) StringOf(v Value) *String {
	return entityOf[*String](c, v, TypeString)
}

// StringChars returns the characters of a direct or heap string.
func (c *Context) StringChars(v Value) string {
	if v.IsDirectString() {
		switch v.directStringKind() {
		case DirectStringMagic:
			return lit.MagicStringID(v.directStringImm()).String()
		case DirectStringUint:
			return lit.FormatUintNumeral(uint32(v.directStringImm()))
		}
		fatalf("unsupported direct string %s", v)
	}
	return c.StringOf(v).chars
}

// StringLength returns the UTF-16 length of a direct or heap string.
func (c *Context) StringLength(v Value) uint32 {
	if v.IsDirectString() {
		return utf16Length(c.StringChars(v))
	}
	return c.StringOf(v).length
}

const previewRunes = 24

func truncate(s string, max int) string {
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "…"
		}
		n++
	}
	return s
}
