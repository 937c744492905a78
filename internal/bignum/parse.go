package bignum

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax indicates malformed BigInt text.
var ErrSyntax = errors.New("bigint: invalid syntax")

// Parse converts decimal text with an optional sign to a BigInt.
func Parse(s string) (BigInt, error) {
	neg := false
	body := s
	if body != "" && (body[0] == '-' || body[0] == '+') {
		neg = body[0] == '-'
		body = body[1:]
	}
	mag, err := parseDigits(body, 10)
	if err != nil {
		return BigInt{}, fmt.Errorf("%w: %q", err, s)
	}
	return makeInt(neg, mag), nil
}

// ParseLiteral converts a BigInt literal such as "123n", "0x1Fn", "0o17n" or
// "0b101n" to a BigInt. Literals carry no sign and no numeric separators are
// accepted in the radix prefix.
func ParseLiteral(s string) (BigInt, error) {
	body, ok := strings.CutSuffix(s, "n")
	if !ok {
		return BigInt{}, fmt.Errorf("%w: %q lacks the n suffix", ErrSyntax, s)
	}
	base := uint32(10)
	if len(body) > 2 && body[0] == '0' {
		switch body[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			body = body[2:]
		}
	}
	if base == 10 && len(body) > 1 && body[0] == '0' {
		return BigInt{}, fmt.Errorf("%w: %q has a leading zero", ErrSyntax, s)
	}
	mag, err := parseDigits(body, base)
	if err != nil {
		return BigInt{}, fmt.Errorf("%w: %q", err, s)
	}
	return makeInt(false, mag), nil
}

func parseDigits(s string, base uint32) (nat, error) {
	if s == "" || s[0] == '_' || s[len(s)-1] == '_' {
		return nil, ErrSyntax
	}
	var z nat
	prevSep := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' {
			if prevSep {
				return nil, ErrSyntax
			}
			prevSep = true
			continue
		}
		prevSep = false
		d, ok := digit(c)
		if !ok || d >= base {
			return nil, ErrSyntax
		}
		var err error
		if z, err = mulAddSmall(z, base, d); err != nil {
			return nil, err
		}
	}
	return z, nil
}

func digit(c byte) (uint32, bool) {
	switch {
	case c >= '0' && c <= '9':
		return uint32(c - '0'), true
	case c >= 'a' && c <= 'z':
		return uint32(c-'a') + 10, true
	case c >= 'A' && c <= 'Z':
		return uint32(c-'A') + 10, true
	}
	return 0, false
}
