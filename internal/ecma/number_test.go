package ecma

import (
	"math"
	"testing"
)

func TestCanonicalInteger(t *testing.T) {
	cases := []struct {
		n      float64
		inline bool
	}{
		{0, true},
		{math.Copysign(0, -1), false},
		{1, true},
		{-1, true},
		{1.5, false},
		{float64(IntegerMin), true},
		{float64(IntegerMin) * 2, false},
		{-float64(IntegerMin), false}, // 2^59, one past IntegerMax
		{float64(int64(1) << 58), true},
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
		{1e300, false},
		{0.1, false},
	}
	for _, tc := range cases {
		i, ok := CanonicalInteger(tc.n)
		if ok != tc.inline {
			t.Fatalf("CanonicalInteger(%v) inline=%v, want %v", tc.n, ok, tc.inline)
		}
		if ok && float64(i) != tc.n {
			t.Fatalf("CanonicalInteger(%v) = %d", tc.n, i)
		}
	}
}

func TestMakeNumberPreservesBits(t *testing.T) {
	for _, name := range codecNames {
		t.Run(name, func(t *testing.T) {
			c := newContext(t, Options{Codec: name})
			inputs := []float64{
				0, math.Copysign(0, -1), 7, -7, 0.1, 1e300, -1e-300,
				math.Inf(1), math.Inf(-1), math.NaN(),
				math.Float64frombits(0x7ff8_0000_0000_0123), // NaN with payload
				math.Float64frombits(0xfff0_0000_0000_0001), // signalling NaN, sign set
				float64(IntegerMin), -float64(IntegerMin),
			}
			for _, n := range inputs {
				v := c.MakeNumber(n)
				_, inline := CanonicalInteger(n)
				if v.IsIntegerNumber() != inline {
					t.Fatalf("MakeNumber(%v): inline=%v, want %v", n, v.IsIntegerNumber(), inline)
				}
				if got := c.GetNumber(v); math.Float64bits(got) != math.Float64bits(n) {
					t.Fatalf("MakeNumber(%v) round trip: %#x != %#x", n, math.Float64bits(got), math.Float64bits(n))
				}
				c.Free(v)
			}
			closeClean(t, c)
		})
	}
}

func TestMakeNaNAndHelpers(t *testing.T) {
	c := newContext(t, Options{})
	nan := c.MakeNaN()
	if !nan.IsFloatNumber() || !math.IsNaN(c.GetFloat(nan)) {
		t.Fatalf("MakeNaN = %s", nan)
	}
	if v := c.MakeInt32(math.MinInt32); v.Integer() != math.MinInt32 {
		t.Fatalf("MakeInt32 = %s", v)
	}
	if v := c.MakeUint32(math.MaxUint32); v.Integer() != math.MaxUint32 {
		t.Fatalf("MakeUint32 = %s", v)
	}
	if v := c.MakeLength(12); !v.IsIntegerNumber() || v.Integer() != 12 {
		t.Fatalf("MakeLength = %s", v)
	}
	c.FreeNumber(nan)
	closeClean(t, c)
}

func TestUpdateFloatToInteger(t *testing.T) {
	c := newContext(t, Options{})
	v := c.MakeNumber(1e300)
	if !v.IsFloatNumber() {
		t.Fatalf("1e300 should be boxed, got %s", v)
	}
	before := c.Heap().Stats()
	got := c.UpdateFloat(v, 5)
	if got != MakeInteger(5) {
		t.Fatalf("UpdateFloat(1e300 -> 5) = %s, want %s", got, MakeInteger(5))
	}
	after := c.Heap().Stats()
	if after.LiveBlocks != before.LiveBlocks-1 || after.FreeCount != before.FreeCount+1 {
		t.Fatalf("float cell not released: before %+v after %+v", before, after)
	}
	if cnt := c.Counters(); cnt.FloatAlloc != cnt.FloatFree {
		t.Fatalf("float cells unbalanced: %+v", cnt)
	}
	closeClean(t, c)
}

func TestUpdateFloatInPlace(t *testing.T) {
	c := newContext(t, Options{})
	v := c.MakeNumber(0.5)
	cell := c.FloatCell(v)
	allocs := c.Heap().Stats().AllocCount
	got := c.UpdateFloat(v, 2.25)
	if got != v || c.FloatCell(got) != cell {
		t.Fatalf("UpdateFloat moved the cell: %s -> %s", v, got)
	}
	if c.GetFloat(got) != 2.25 {
		t.Fatalf("payload = %v", c.GetFloat(got))
	}
	if c.Heap().Stats().AllocCount != allocs {
		t.Fatal("in-place update allocated")
	}
	got = c.UpdateFloat(got, math.Copysign(0, -1))
	if !got.IsFloatNumber() || !math.Signbit(c.GetFloat(got)) {
		t.Fatalf("negative zero must stay boxed, got %s", got)
	}
	c.Free(got)
	closeClean(t, c)
}
