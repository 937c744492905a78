package ecma

import (
	"math"

	"ecmacore/internal/jrt"
)

// Copy returns a value the caller owns in addition to v. Float cells are
// duplicated; entities gain a reference; direct values are returned as is.
// Error references cannot be copied (see AcquireError).
func (c *Context) Copy(v Value) Value {
	switch v.holding() {
	case holdsNothing:
		return v
	case holdsCell:
		return c.boxFloat(*c.floatWord(v))
	case holdsShared:
		c.refShared(v)
		return v
	case holdsObject:
		c.RefObject(v)
		return v
	}
	fatalf("copy of error reference %s", v)
	return v
}

// Free releases a value obtained from a constructor or Copy.
// Error references are released with ReleaseError.
func (c *Context) Free(v Value) {
	switch v.holding() {
	case holdsNothing:
	case holdsCell:
		c.freeFloat(v)
	case holdsShared:
		c.derefShared(v)
	case holdsObject:
		c.DerefObject(v)
	default:
		fatalf("free of error reference %s", v)
	}
}

func (c *Context) refShared(v Value) {
	switch v.Type() {
	case TypeString:
		c.RefString(v)
	case TypeSymbol:
		c.RefSymbol(v)
	case TypeBigInt:
		c.RefBigInt(v)
	default:
		jrt.Unreachable("ecma: ref of " + v.Type().String())
	}
}

func (c *Context) derefShared(v Value) {
	switch v.Type() {
	case TypeString:
		c.DerefString(v)
	case TypeSymbol:
		c.DerefSymbol(v)
	case TypeBigInt:
		c.DerefBigInt(v)
	default:
		jrt.Unreachable("ecma: deref of " + v.Type().String())
	}
}

// FastCopy is Copy with the direct case decided before dispatch.
func (c *Context) FastCopy(v Value) Value {
	if v.IsDirect() {
		return v
	}
	return c.Copy(v)
}

// FastFree is Free with the direct case decided before dispatch.
func (c *Context) FastFree(v Value) {
	if !v.IsDirect() {
		c.Free(v)
	}
}

// CopyIfNotObject copies v unless it is an object, which is returned
// without a new reference.
func (c *Context) CopyIfNotObject(v Value) Value {
	if v.IsObject() {
		return v
	}
	return c.Copy(v)
}

// FreeIfNotObject frees v unless it is an object.
func (c *Context) FreeIfNotObject(v Value) {
	if !v.IsObject() {
		c.Free(v)
	}
}

// FreeObject releases an object value.
func (c *Context) FreeObject(v Value) {
	assertf(v.IsObject(), "FreeObject on %s", v)
	c.DerefObject(v)
}

// FreeNumber releases a number value.
func (c *Context) FreeNumber(v Value) {
	assertf(v.IsNumber(), "FreeNumber on %s", v)
	if v.IsFloatNumber() {
		c.freeFloat(v)
	}
}

// RefIfObject adds a reference when v is an object and returns v.
func (c *Context) RefIfObject(v Value) Value {
	if v.IsObject() {
		c.RefObject(v)
	}
	return v
}

// DerefIfObject drops a reference when v is an object.
func (c *Context) DerefIfObject(v Value) {
	if v.IsObject() {
		c.DerefObject(v)
	}
}

// Slot is a property-style storage location. It owns every occupant except
// objects: an object stored in a slot is an edge of its container, kept
// alive by the collector's tracing rather than by a reference.
//
// The zero Slot holds the inline integer 0.
type Slot struct {
	v Value
}

// Value returns the borrowed occupant.
func (s *Slot) Value() Value { return s.v }

// Assign stores a copy of v into slot, releasing the previous occupant.
// Object occupants and object values take no reference either way.
func (c *Context) Assign(slot *Slot, v Value) {
	old := slot.v
	if old == v {
		return
	}
	if (old|v)&ValueTypeMask == Value(TypeDirect) {
		slot.v = v
		return
	}
	if old.IsFloatNumber() && v.IsFloatNumber() {
		*c.floatWord(old) = *c.floatWord(v)
		c.counters.FloatReuse++
		return
	}
	c.FreeIfNotObject(old)
	slot.v = c.CopyIfNotObject(v)
}

// AssignNumber stores the number n into slot, reusing a float cell already
// held there.
func (c *Context) AssignNumber(slot *Slot, n float64) {
	if slot.v.IsFloatNumber() {
		slot.v = c.UpdateFloat(slot.v, n)
		return
	}
	c.FreeIfNotObject(slot.v)
	slot.v = c.MakeNumber(n)
}

// Clear releases the occupant of slot and leaves it empty.
func (c *Context) Clear(slot *Slot) {
	c.FreeIfNotObject(slot.v)
	slot.v = Empty
}

// Replace stores a copy of v into *dst with full ownership, objects
// included. The old occupant is released before the new one is acquired,
// so v must not be borrowed from the old occupant (such as the description
// of a symbol held only by *dst).
func (c *Context) Replace(dst *Value, v Value) {
	old := *dst
	if old == v {
		return
	}
	c.Free(old)
	*dst = c.Copy(v)
}

// Equal reports whether two numbers compare equal, or two values are
// identical otherwise. Strings are compared by contents.
func (c *Context) Equal(a, b Value) bool {
	switch {
	case a == b:
		return !(a.IsFloatNumber() && math.IsNaN(c.GetFloat(a)))
	case a.IsNumber() && b.IsNumber():
		return c.GetNumber(a) == c.GetNumber(b)
	case a.IsString() && b.IsString():
		return c.StringChars(a) == c.StringChars(b)
	case a.IsBigInt() && b.IsBigInt():
		return c.BigIntOf(a).Cmp(c.BigIntOf(b)) == 0
	}
	return false
}
