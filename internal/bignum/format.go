package bignum

import (
	"strconv"
	"strings"
)

const digitChars = "0123456789abcdefghijklmnopqrstuvwxyz"

// String formats x in decimal.
func (x BigInt) String() string {
	return x.Text(10)
}

// Text formats x in the given base (2..36).
func (x BigInt) Text(base int) string {
	if base < 2 || base > 36 {
		panic("bignum: invalid base " + strconv.Itoa(base))
	}
	if x.IsZero() {
		return "0"
	}
	// Peel off the largest power of base that fits a digit, then emit
	// fixed-width chunks.
	chunk, width := uint32(base), 1
	for uint64(chunk)*uint64(base) <= 1<<32-1 {
		chunk *= uint32(base)
		width++
	}
	var parts []uint32
	for cur := x.mag; len(cur) > 0; {
		var r uint32
		cur, r = divSmall(cur, chunk)
		parts = append(parts, r)
	}
	var sb strings.Builder
	if x.neg {
		sb.WriteByte('-')
	}
	sb.WriteString(strconv.FormatUint(uint64(parts[len(parts)-1]), base))
	buf := make([]byte, width)
	for i := len(parts) - 2; i >= 0; i-- {
		v := parts[i]
		for j := width - 1; j >= 0; j-- {
			buf[j] = digitChars[v%uint32(base)]
			v /= uint32(base)
		}
		sb.Write(buf)
	}
	return sb.String()
}
