package fuzztests

import (
	"testing"

	"ecmacore/internal/bignum"
	"ecmacore/internal/ecma"
)

func FuzzParseBigInt(f *testing.F) {
	addBigIntSeeds(f)
	f.Fuzz(func(t *testing.T, s string) {
		s = clamp(s)
		c := newContext(t)
		defer closeClean(t, c)

		v, err := c.ParseBigInt(s)
		if err != nil {
			return
		}
		n := c.BigIntOf(v)
		if n.IsZero() != (v.Kind() == ecma.KindBigIntZero) {
			t.Fatalf("%q: zero %v encoded as %s", s, n.IsZero(), v)
		}
		back, err := bignum.ParseLiteral(n.String() + "n")
		if err != nil {
			t.Fatalf("%q: reparse of %s failed: %v", s, n, err)
		}
		if back.Cmp(n) != 0 {
			t.Fatalf("%q: reparse %s != %s", s, back, n)
		}
		if hex, err := bignum.ParseLiteral("0x" + n.Text(16) + "n"); err != nil || hex.Cmp(n) != 0 {
			t.Fatalf("%q: hex form %s does not reparse: %v", s, n.Text(16), err)
		}
		c.Free(v)
	})
}
