// Package lit holds the engine's built-in ("magic") string table and the
// numeral helpers used when strings are stored inline in a value word.
package lit

import "strconv"

// MagicStringID indexes the built-in string table.
type MagicStringID uint32

const (
	MagicEmpty MagicStringID = iota
	MagicUndefined
	MagicNull
	MagicTrue
	MagicFalse
	MagicBoolean
	MagicNumber
	MagicString
	MagicObject
	MagicFunction
	MagicSymbol
	MagicBigInt
	MagicLength
	MagicPrototype
	MagicConstructor
	MagicName
	MagicMessage
	MagicDescription
	MagicError
	MagicTypeError
	MagicRangeError
	MagicArray
	MagicProxy
	MagicIsArray
	MagicToString
	MagicValueOf
	MagicNaN
	MagicInfinity
	MagicNegativeInfinity

	magicCount
)

var magicStrings = [magicCount]string{
	MagicEmpty:            "",
	MagicUndefined:        "undefined",
	MagicNull:             "null",
	MagicTrue:             "true",
	MagicFalse:            "false",
	MagicBoolean:          "boolean",
	MagicNumber:           "number",
	MagicString:           "string",
	MagicObject:           "object",
	MagicFunction:         "function",
	MagicSymbol:           "symbol",
	MagicBigInt:           "bigint",
	MagicLength:           "length",
	MagicPrototype:        "prototype",
	MagicConstructor:      "constructor",
	MagicName:             "name",
	MagicMessage:          "message",
	MagicDescription:      "description",
	MagicError:            "Error",
	MagicTypeError:        "TypeError",
	MagicRangeError:       "RangeError",
	MagicArray:            "Array",
	MagicProxy:            "Proxy",
	MagicIsArray:          "isArray",
	MagicToString:         "toString",
	MagicValueOf:          "valueOf",
	MagicNaN:              "NaN",
	MagicInfinity:         "Infinity",
	MagicNegativeInfinity: "-Infinity",
}

var magicIndex = func() map[string]MagicStringID {
	m := make(map[string]MagicStringID, magicCount)
	for i, s := range magicStrings {
		m[s] = MagicStringID(i)
	}
	return m
}()

// MagicCount returns the number of built-in strings.
func MagicCount() int { return int(magicCount) }

// Valid reports whether id names a built-in string.
func (id MagicStringID) Valid() bool { return id < magicCount }

// String returns the characters of the built-in string.
func (id MagicStringID) String() string {
	if !id.Valid() {
		return "MagicStringID(" + strconv.FormatUint(uint64(id), 10) + ")"
	}
	return magicStrings[id]
}

// LookupMagic returns the built-in string id for s.
func LookupMagic(s string) (MagicStringID, bool) {
	id, ok := magicIndex[s]
	return id, ok
}
