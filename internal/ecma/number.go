package ecma

import (
	"math"

	"ecmacore/internal/jmem"
	"ecmacore/internal/trace"
)

const floatCellSize = 8

// Bounds of the inline range as float64. IntegerMax is not exactly
// representable, so the upper bound is exclusive.
const (
	integerMinFloat = float64(IntegerMin)
	integerEndFloat = -float64(IntegerMin)
)

// CanonicalInteger reports whether n is stored inline: an exact integer in
// the inline range that is not negative zero.
func CanonicalInteger(n float64) (int64, bool) {
	if !(n >= integerMinFloat && n < integerEndFloat) {
		return 0, false
	}
	i := int64(n)
	if float64(i) != n {
		return 0, false
	}
	if i == 0 && math.Signbit(n) {
		return 0, false
	}
	return i, true
}

// MakeInteger encodes an inline integer. i must be within
// [IntegerMin, IntegerMax].
func MakeInteger(i int64) Value {
	assertf(i >= IntegerMin && i <= IntegerMax, "integer %d outside the inline range", i)
	return Value(uint64(i)<<DirectShift | DirectTypeInteger)
}

// Integer decodes an inline integer.
func (v Value) Integer() int64 {
	assertf(v.IsIntegerNumber(), "Integer on %s", v)
	return int64(v) >> DirectShift
}

// MakeNumber encodes n, inline when CanonicalInteger allows it and boxed in
// a float cell otherwise.
func (c *Context) MakeNumber(n float64) Value {
	if i, ok := CanonicalInteger(n); ok {
		return MakeInteger(i)
	}
	return c.boxFloat(math.Float64bits(n))
}

// MakeNaN returns a boxed quiet NaN.
func (c *Context) MakeNaN() Value {
	return c.boxFloat(math.Float64bits(math.NaN()))
}

// MakeInt32 encodes an int32; always inline.
func (c *Context) MakeInt32(i int32) Value {
	return MakeInteger(int64(i))
}

// MakeUint32 encodes a uint32; always inline.
func (c *Context) MakeUint32(u uint32) Value {
	return MakeInteger(int64(u))
}

// MakeLength encodes an array length or index.
func (c *Context) MakeLength(n uint32) Value {
	return MakeInteger(int64(n))
}

func (c *Context) boxFloat(bits uint64) Value {
	p := c.heap.PoolAlloc(floatCellSize)
	*c.heap.Word(p) = bits
	c.counters.FloatAlloc++
	if c.tracing(trace.ScopeValue) {
		c.point(trace.ScopeValue, "box", p.String())
	}
	return c.encode(p, TypeFloat)
}

func (c *Context) freeFloat(v Value) {
	c.heap.PoolFree(c.decode(v), floatCellSize)
	c.counters.FloatFree++
}

// FloatCell returns the address of a float value's cell.
func (c *Context) FloatCell(v Value) jmem.Pointer {
	assertf(v.IsFloatNumber(), "FloatCell on %s", v)
	return c.decode(v)
}

func (c *Context) floatWord(v Value) *uint64 {
	return c.heap.Word(c.FloatCell(v))
}

// GetFloat reads the payload of a float value.
func (c *Context) GetFloat(v Value) float64 {
	return math.Float64frombits(*c.floatWord(v))
}

// GetNumber reads an inline integer or float value.
func (c *Context) GetNumber(v Value) float64 {
	if v.IsIntegerNumber() {
		return float64(v.Integer())
	}
	return c.GetFloat(v)
}

// UpdateFloat stores n into the float value v. The cell is reused when n
// still needs boxing; otherwise it is freed and an inline integer returned.
// v must not be used after the call.
func (c *Context) UpdateFloat(v Value, n float64) Value {
	assertf(v.IsFloatNumber(), "UpdateFloat on %s", v)
	if i, ok := CanonicalInteger(n); ok {
		c.freeFloat(v)
		return MakeInteger(i)
	}
	*c.floatWord(v) = math.Float64bits(n)
	c.counters.FloatReuse++
	return v
}
