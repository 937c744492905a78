//go:build !ecma_direct_pointers

package cptr

import "ecmacore/internal/jmem"

// DirectPointers reports whether Default stores native addresses.
const DirectPointers = false

// Default returns the build-selected codec for h.
func Default(h *jmem.Heap) Codec {
	return Compressed{Heap: h}
}
