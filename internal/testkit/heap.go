// Package testkit checks structural invariants of an engine heap.
package testkit

import (
	"fmt"

	"ecmacore/internal/jmem"
)

// CheckHeapInvariants walks h and verifies:
// 1) blocks are aligned, inside the arena and strictly ordered without overlap
// 2) every block's compressed pointer round-trips
// 3) the live block count and byte total agree with the heap counters
// 4) the largest free region fits in the unallocated remainder
func CheckHeapInvariants(h *jmem.Heap) error {
	if h == nil {
		return fmt.Errorf("nil heap")
	}
	st := h.Stats()
	var (
		count, bytes uint64
		end          jmem.Pointer
		err          error
	)
	h.Walk(func(b jmem.Block) {
		if err != nil {
			return
		}
		switch {
		case !h.Contains(b.Ptr):
			err = fmt.Errorf("block %s is outside the heap", b.Ptr)
		case b.Ptr < end:
			err = fmt.Errorf("block %s overlaps the previous block ending at %s", b.Ptr, end)
		case h.Compress(b.Ptr) != b.CPtr || h.Decompress(b.CPtr) != b.Ptr:
			err = fmt.Errorf("block %s does not round-trip through cptr %d", b.Ptr, b.CPtr)
		case b.Size == 0 || b.Size%jmem.Alignment != 0:
			err = fmt.Errorf("block %s has size %d", b.Ptr, b.Size)
		}
		count++
		bytes += uint64(b.Size)
		end = b.Ptr + jmem.Pointer(b.Size)
	})
	if err != nil {
		return err
	}
	if count != st.LiveBlocks {
		return fmt.Errorf("walk found %d blocks, counters say %d", count, st.LiveBlocks)
	}
	if bytes != st.AllocatedBytes {
		return fmt.Errorf("walk found %d bytes, counters say %d", bytes, st.AllocatedBytes)
	}
	if st.AllocatedBytes > st.Capacity || st.PeakBytes < st.AllocatedBytes {
		return fmt.Errorf("allocated %d bytes with peak %d and capacity %d", st.AllocatedBytes, st.PeakBytes, st.Capacity)
	}
	if largest := h.LargestFree(); largest > st.Capacity-st.AllocatedBytes {
		return fmt.Errorf("largest free region %d exceeds unallocated %d", largest, st.Capacity-st.AllocatedBytes)
	}
	return nil
}
