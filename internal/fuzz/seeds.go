package fuzztests

import (
	"math"
	"testing"

	"ecmacore/internal/lit"
)

const maxSeedBytes = 4 << 10

func addNumberSeeds(f *testing.F) {
	for _, n := range []float64{
		0, math.Copysign(0, -1), 1, -1, 0.5, 1e300, -1e-300,
		math.NaN(), math.Inf(1), math.Inf(-1),
		math.MaxInt32, math.MaxUint32, 1 << 59, -(1 << 59), 1<<59 - 1,
		math.SmallestNonzeroFloat64, math.MaxFloat64,
	} {
		f.Add(math.Float64bits(n))
	}
	// NaN with a payload.
	f.Add(uint64(0x7ff8_0000_dead_beef))
}

func addStringSeeds(f *testing.F) {
	for id := lit.MagicStringID(0); id.Valid(); id++ {
		f.Add(id.String())
	}
	for _, s := range []string{"0", "42", "007", "4294967295", "4294967296", "-1", "ünï", "😀", "\xff\xfe", "a\x00b"} {
		f.Add(s)
	}
}

func addBigIntSeeds(f *testing.F) {
	for _, s := range []string{"0n", "1n", "123456789012345678901234567890n", "0xffn", "0o777n", "0b1011n", "00n", "n", "0x", "-1n", "1_000n"} {
		f.Add(s)
	}
}

func clamp(s string) string {
	if len(s) > maxSeedBytes {
		return s[:maxSeedBytes]
	}
	return s
}
