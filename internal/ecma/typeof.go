package ecma

import "ecmacore/internal/lit"

// TypeOf returns the result of the typeof operator as a built-in string id.
func (c *Context) TypeOf(v Value) lit.MagicStringID {
	switch v.Kind() {
	case KindUndefined:
		return lit.MagicUndefined
	case KindNull:
		return lit.MagicObject
	case KindBoolean:
		return lit.MagicBoolean
	case KindInteger, KindFloat:
		return lit.MagicNumber
	case KindString, KindDirectString:
		return lit.MagicString
	case KindSymbol:
		return lit.MagicSymbol
	case KindBigInt, KindBigIntZero:
		return lit.MagicBigInt
	case KindObject:
		if c.IsCallable(v) {
			return lit.MagicFunction
		}
		return lit.MagicObject
	}
	fatalf("typeof on %s", v)
	return lit.MagicUndefined
}

// TypeOfValue returns the typeof result as a string value.
func (c *Context) TypeOfValue(v Value) Value {
	return MakeMagicString(c.TypeOf(v))
}
