// Package cptr converts heap pointers to and from the payload bits of a
// tagged value word.
//
// Two strategies exist. Compressed stores the arena offset divided by the
// allocation granule, which keeps the payload within 32 bits. Direct stores
// the native address itself, relying on its alignment to leave the tag bits
// free. Default picks one at compile time via the ecma_direct_pointers build
// tag; both are always available for tests and tools.
package cptr

import (
	"ecmacore/internal/jmem"
	"ecmacore/internal/jrt"
)

// TagBits is the number of low payload bits reserved for the value type field.
const TagBits = 3

const tagMask = 1<<TagBits - 1

// Codec packs heap pointers into value payload bits.
type Codec interface {
	// Encode returns payload bits for a non-null pointer; the low TagBits are zero.
	Encode(p jmem.Pointer) uint64
	// Decode recovers the pointer from a value word, ignoring the tag bits.
	Decode(bits uint64) jmem.Pointer
	// Name identifies the strategy.
	Name() string
}

func checkPointer(p jmem.Pointer) {
	if p == 0 {
		jrt.Fatal(jrt.ErrFailedInternalAssertion, "cptr: encoding a null pointer")
	}
	if p&tagMask != 0 {
		jrt.Fatalf(jrt.ErrFailedInternalAssertion, "cptr: pointer %s is not %d-byte aligned", p, 1<<TagBits)
	}
}

// Compressed stores arena-relative compressed pointers.
type Compressed struct {
	Heap *jmem.Heap
}

// Encode implements Codec.
func (c Compressed) Encode(p jmem.Pointer) uint64 {
	checkPointer(p)
	return uint64(c.Heap.Compress(p)) << TagBits
}

// Decode implements Codec.
func (c Compressed) Decode(bits uint64) jmem.Pointer {
	cp := bits >> TagBits
	if cp == 0 || cp > uint64(^jmem.CPointer(0)) {
		jrt.Fatalf(jrt.ErrFailedInternalAssertion, "cptr: invalid compressed payload %#x", bits)
	}
	return c.Heap.Decompress(jmem.CPointer(cp))
}

// Name implements Codec.
func (Compressed) Name() string { return "compressed" }

// Direct stores native addresses unchanged.
type Direct struct{}

// Encode implements Codec.
func (Direct) Encode(p jmem.Pointer) uint64 {
	checkPointer(p)
	return uint64(p)
}

// Decode implements Codec.
func (Direct) Decode(bits uint64) jmem.Pointer {
	p := jmem.Pointer(bits &^ tagMask)
	if p == 0 {
		jrt.Fatal(jrt.ErrFailedInternalAssertion, "cptr: decoding a null pointer")
	}
	return p
}

// Name implements Codec.
func (Direct) Name() string { return "direct" }

// ByName returns the codec strategy named name for h.
func ByName(name string, h *jmem.Heap) (Codec, bool) {
	switch name {
	case "compressed":
		return Compressed{Heap: h}, true
	case "direct":
		return Direct{}, true
	case "", "default":
		return Default(h), true
	}
	return nil, false
}
