package bignum

import (
	"errors"
	"math/bits"
)

// MaxDigits bounds the magnitude of a BigInt, in 32-bit digits.
const MaxDigits = 1 << 16

var (
	// ErrTooLarge indicates the digit limit was exceeded.
	ErrTooLarge = errors.New("bigint: maximum size exceeded")
	// ErrDivByZero indicates division by a zero BigInt.
	ErrDivByZero = errors.New("bigint: division by zero")
)

// nat is a little-endian base-2^32 magnitude. The canonical zero is empty and
// a normalized nat never ends in a zero digit.
type nat []uint32

func (z nat) norm() nat {
	i := len(z)
	for i > 0 && z[i-1] == 0 {
		i--
	}
	if i == 0 {
		return nil
	}
	return z[:i]
}

func natFromUint64(v uint64) nat {
	switch {
	case v == 0:
		return nil
	case v>>32 == 0:
		return nat{uint32(v)}
	default:
		return nat{uint32(v), uint32(v >> 32)}
	}
}

func (z nat) uint64() (uint64, bool) {
	switch len(z) {
	case 0:
		return 0, true
	case 1:
		return uint64(z[0]), true
	case 2:
		return uint64(z[0]) | uint64(z[1])<<32, true
	}
	return 0, false
}

func (z nat) bitLen() int {
	if len(z) == 0 {
		return 0
	}
	return (len(z)-1)*32 + bits.Len32(z[len(z)-1])
}

func (z nat) cmp(y nat) int {
	if len(z) != len(y) {
		if len(z) < len(y) {
			return -1
		}
		return 1
	}
	for i := len(z) - 1; i >= 0; i-- {
		switch {
		case z[i] < y[i]:
			return -1
		case z[i] > y[i]:
			return 1
		}
	}
	return 0
}

func checkSize(z nat) (nat, error) {
	z = z.norm()
	if len(z) > MaxDigits {
		return nil, ErrTooLarge
	}
	return z, nil
}

func addNat(x, y nat) (nat, error) {
	if len(x) < len(y) {
		x, y = y, x
	}
	out := make(nat, len(x)+1)
	var carry uint32
	for i := range x {
		var yi uint32
		if i < len(y) {
			yi = y[i]
		}
		out[i], carry = bits.Add32(x[i], yi, carry)
	}
	out[len(x)] = carry
	return checkSize(out)
}

// subNat returns x - y; x must not be smaller than y.
func subNat(x, y nat) nat {
	out := make(nat, len(x))
	var borrow uint32
	for i := range x {
		var yi uint32
		if i < len(y) {
			yi = y[i]
		}
		out[i], borrow = bits.Sub32(x[i], yi, borrow)
	}
	return out.norm()
}

func mulNat(x, y nat) (nat, error) {
	if len(x) == 0 || len(y) == 0 {
		return nil, nil
	}
	if len(x)+len(y) > MaxDigits+1 {
		return nil, ErrTooLarge
	}
	out := make(nat, len(x)+len(y))
	for i, xi := range x {
		var carry uint32
		for j, yj := range y {
			hi, lo := bits.Mul32(xi, yj)
			var c uint32
			lo, c = bits.Add32(lo, out[i+j], 0)
			hi += c
			lo, c = bits.Add32(lo, carry, 0)
			hi += c
			out[i+j] = lo
			carry = hi
		}
		out[i+len(y)] = carry
	}
	return checkSize(out)
}

// mulAddSmall returns z*m + a.
func mulAddSmall(z nat, m, a uint32) (nat, error) {
	out := make(nat, len(z)+1)
	carry := a
	for i, zi := range z {
		hi, lo := bits.Mul32(zi, m)
		var c uint32
		out[i], c = bits.Add32(lo, carry, 0)
		carry = hi + c
	}
	out[len(z)] = carry
	return checkSize(out)
}

// divSmall returns z / d and z % d.
func divSmall(z nat, d uint32) (nat, uint32) {
	out := make(nat, len(z))
	var r uint32
	for i := len(z) - 1; i >= 0; i-- {
		out[i], r = bits.Div32(r, z[i], d)
	}
	return out.norm(), r
}

func (z nat) bit(i int) uint32 {
	w := i / 32
	if w >= len(z) {
		return 0
	}
	return (z[w] >> (i % 32)) & 1
}

// divNat is schoolbook binary long division.
func divNat(x, y nat) (q, r nat) {
	if x.cmp(y) < 0 {
		return nil, x
	}
	if len(y) == 1 {
		qq, rr := divSmall(x, y[0])
		return qq, natFromUint64(uint64(rr))
	}
	q = make(nat, len(x))
	for i := x.bitLen() - 1; i >= 0; i-- {
		r, _ = mulAddSmall(r, 2, x.bit(i))
		if r.cmp(y) >= 0 {
			r = subNat(r, y)
			q[i/32] |= 1 << (i % 32)
		}
	}
	return q.norm(), r.norm()
}
