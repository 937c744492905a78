// Package bignum implements the arbitrary-precision integers carried by
// BigInt values.
package bignum

import "math"

// BigInt is an immutable signed integer. The zero value is 0.
type BigInt struct {
	neg bool
	mag nat
}

// FromInt64 returns v as a BigInt.
func FromInt64(v int64) BigInt {
	if v < 0 {
		return BigInt{neg: true, mag: natFromUint64(uint64(-(v + 1)) + 1)}
	}
	return BigInt{mag: natFromUint64(uint64(v))}
}

// FromUint64 returns v as a BigInt.
func FromUint64(v uint64) BigInt {
	return BigInt{mag: natFromUint64(v)}
}

func makeInt(neg bool, mag nat) BigInt {
	mag = mag.norm()
	if len(mag) == 0 {
		return BigInt{}
	}
	return BigInt{neg: neg, mag: mag}
}

// IsZero reports whether x is 0.
func (x BigInt) IsZero() bool { return len(x.mag) == 0 }

// Sign returns -1, 0 or 1.
func (x BigInt) Sign() int {
	switch {
	case len(x.mag) == 0:
		return 0
	case x.neg:
		return -1
	}
	return 1
}

// Digits returns the number of 32-bit digits in the magnitude.
func (x BigInt) Digits() int { return len(x.mag) }

// Cmp compares x and y.
func (x BigInt) Cmp(y BigInt) int {
	if x.neg != y.neg {
		if x.neg {
			return -1
		}
		return 1
	}
	c := x.mag.cmp(y.mag)
	if x.neg {
		return -c
	}
	return c
}

// Neg returns -x.
func (x BigInt) Neg() BigInt {
	return makeInt(!x.neg, x.mag)
}

// Int64 returns x if it fits in an int64.
func (x BigInt) Int64() (int64, bool) {
	m, ok := x.mag.uint64()
	if !ok {
		return 0, false
	}
	if !x.neg {
		if m > math.MaxInt64 {
			return 0, false
		}
		return int64(m), true
	}
	if m > 1<<63 {
		return 0, false
	}
	return -int64(m-1) - 1, true
}

// Float64 returns x converted to a float64.
func (x BigInt) Float64() float64 {
	var f float64
	for i := len(x.mag) - 1; i >= 0; i-- {
		f = f*(1<<32) + float64(x.mag[i])
	}
	if x.neg {
		return -f
	}
	return f
}

// Add returns x + y.
func Add(x, y BigInt) (BigInt, error) {
	if x.neg == y.neg {
		m, err := addNat(x.mag, y.mag)
		if err != nil {
			return BigInt{}, err
		}
		return makeInt(x.neg, m), nil
	}
	if x.mag.cmp(y.mag) >= 0 {
		return makeInt(x.neg, subNat(x.mag, y.mag)), nil
	}
	return makeInt(y.neg, subNat(y.mag, x.mag)), nil
}

// Sub returns x - y.
func Sub(x, y BigInt) (BigInt, error) {
	return Add(x, y.Neg())
}

// Mul returns x * y.
func Mul(x, y BigInt) (BigInt, error) {
	m, err := mulNat(x.mag, y.mag)
	if err != nil {
		return BigInt{}, err
	}
	return makeInt(x.neg != y.neg, m), nil
}

// QuoRem returns the quotient truncated toward zero and the remainder, which
// takes the sign of x.
func QuoRem(x, y BigInt) (q, r BigInt, err error) {
	if y.IsZero() {
		return BigInt{}, BigInt{}, ErrDivByZero
	}
	qm, rm := divNat(x.mag, y.mag)
	return makeInt(x.neg != y.neg, qm), makeInt(x.neg, rm), nil
}
