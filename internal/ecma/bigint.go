package ecma

import (
	"fmt"

	"fortio.org/safecast"

	"ecmacore/internal/bignum"
)

// BigInt is a bigint entity.
type BigInt struct {
	header
	num bignum.BigInt
}

func (b *BigInt) kind() Kind { return KindBigInt }

func (b *BigInt) preview(*Context) string {
	return truncate(b.num.String(), previewRunes) + "n"
}

// NewBigInt returns a bigint value; zero maps to the non-owning BigIntZero.
func (c *Context) NewBigInt(n bignum.BigInt) Value {
	if n.IsZero() {
		return BigIntZero
	}
	size, err := safecast.Conv[uint32](headerSize + 4*n.Digits())
	if err != nil {
		fatalf("bigint of %d digits is too large", n.Digits())
	}
	return c.encode(c.allocEntity(size, &BigInt{num: n}), TypeBigInt)
}

// ParseBigInt parses a bigint literal such as "123n" or "0xffn".
func (c *Context) ParseBigInt(literal string) (Value, error) {
	n, err := bignum.ParseLiteral(literal)
	if err != nil {
		return Undefined, fmt.Errorf("parse bigint: %w", err)
	}
	return c.NewBigInt(n), nil
}

// BigIntOf returns the number behind a bigint value.
func (c *Context) BigIntOf(v Value) bignum.BigInt {
	if v.isZeroBigInt() {
		return bignum.BigInt{}
	}
	return entityOf[*BigInt](c, v, TypeBigInt).num
}
