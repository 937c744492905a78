package jmem

// Stats is a snapshot of heap counters.
type Stats struct {
	Capacity       uint64 // usable bytes
	AllocatedBytes uint64 // bytes held by live blocks
	PeakBytes      uint64
	LiveBlocks     uint64
	AllocCount     uint64
	FreeCount      uint64
	PoolHits       uint64
	PoolMisses     uint64
	PooledChunks   uint64 // chunks parked in pools
	ReclaimRuns    uint64
}

// Stats returns the current counters.
func (h *Heap) Stats() Stats {
	return h.stats
}

// FreeRegions returns the number of disjoint free regions.
func (h *Heap) FreeRegions() int {
	return len(h.free)
}

// LargestFree returns the size in bytes of the largest free region.
func (h *Heap) LargestFree() uint64 {
	var best uint32
	for _, r := range h.free {
		if r.units > best {
			best = r.units
		}
	}
	return uint64(best) * Alignment
}
