package ecma

// Kind classifies a Value for callers that switch over all cases.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindUninitialized
	KindUndefined
	KindNull
	KindBoolean
	KindArrayHole
	KindNotFound
	KindInteger
	KindFloat
	KindString
	KindDirectString
	KindSymbol
	KindBigInt
	KindBigIntZero
	KindObject
	KindErrorReference
)

var kindNames = [...]string{
	KindEmpty:          "empty",
	KindUninitialized:  "uninitialized",
	KindUndefined:      "undefined",
	KindNull:           "null",
	KindBoolean:        "boolean",
	KindArrayHole:      "array_hole",
	KindNotFound:       "not_found",
	KindInteger:        "integer",
	KindFloat:          "float",
	KindString:         "string",
	KindDirectString:   "direct_string",
	KindSymbol:         "symbol",
	KindBigInt:         "bigint",
	KindBigIntZero:     "bigint_zero",
	KindObject:         "object",
	KindErrorReference: "error_reference",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind?"
}

// Kind decodes the type field and DIRECT sub-tag.
func (v Value) Kind() Kind {
	switch v.Type() {
	case TypeDirect:
		if v.IsIntegerNumber() {
			return KindInteger
		}
		switch v {
		case Empty:
			return KindEmpty
		case Uninitialized:
			return KindUninitialized
		case Undefined:
			return KindUndefined
		case Null:
			return KindNull
		case True, False:
			return KindBoolean
		case ArrayHole:
			return KindArrayHole
		case NotFound:
			return KindNotFound
		}
		fatalf("undefined simple value %#x", uint64(v))
	case TypeString:
		return KindString
	case TypeDirectString:
		return KindDirectString
	case TypeFloat:
		return KindFloat
	case TypeSymbol:
		return KindSymbol
	case TypeBigInt:
		if v.isZeroBigInt() {
			return KindBigIntZero
		}
		return KindBigInt
	case TypeObject:
		return KindObject
	}
	return KindErrorReference
}

// holding describes what a value keeps alive.
type holding uint8

const (
	holdsNothing holding = iota // direct values and the zero bigint
	holdsCell                   // exclusively owned float cell
	holdsShared                 // ref-counted string, symbol or bigint
	holdsObject                 // object reference
	holdsError                  // error reference, consumed rather than copied
)

// holding is the single place where the non-owning encodings are decided.
func (v Value) holding() holding {
	switch v.Type() {
	case TypeDirect, TypeDirectString:
		return holdsNothing
	case TypeFloat:
		return holdsCell
	case TypeString, TypeSymbol:
		return holdsShared
	case TypeBigInt:
		if v.isZeroBigInt() {
			return holdsNothing
		}
		return holdsShared
	case TypeObject:
		return holdsObject
	}
	return holdsError
}

// OwnsMemory reports whether v keeps a heap entity or cell alive.
func (v Value) OwnsMemory() bool {
	return v.holding() != holdsNothing
}

// CheckSpecDefined asserts that v is a script-visible value: not one of the
// engine-internal simple values.
func CheckSpecDefined(v Value) {
	switch v.Kind() {
	case KindEmpty, KindUninitialized, KindArrayHole, KindNotFound, KindErrorReference:
		assertf(false, "value %s is not script visible", v)
	}
}
