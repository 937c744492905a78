package jmem

import (
	"strconv"

	"ecmacore/internal/jrt"
	"ecmacore/internal/trace"
)

const poolCount = 2

// Chunk sizes served by the pools.
const (
	SmallChunk = Alignment     // boxed float, small records
	LargeChunk = 2 * Alignment // two-word records
)

// pool is a LIFO chain of parked chunks. The next link lives in the parked
// chunk's own first word; head 0 means empty.
type pool struct {
	head  uint32
	count uint32
}

func poolIndex(size uint32) int {
	switch {
	case size == 0:
		jrt.Fatal(jrt.ErrFailedInternalAssertion, "jmem: zero-sized pool allocation")
	case size <= SmallChunk:
		return 0
	case size <= LargeChunk:
		return 1
	default:
		jrt.Fatalf(jrt.ErrFailedInternalAssertion, "jmem: pool chunk of %d bytes is not supported", size)
	}
	return -1
}

func poolUnits(idx int) uint32 {
	return uint32(idx) + 1
}

// PoolAlloc returns a chunk of at least size bytes (at most LargeChunk),
// reusing a parked chunk when one is available.
func (h *Heap) PoolAlloc(size uint32) Pointer {
	idx := poolIndex(size)
	pl := &h.pools[idx]
	if pl.head == 0 {
		h.stats.PoolMisses++
		return h.Alloc(poolUnits(idx) * Alignment)
	}
	u := pl.head
	pl.head = uint32(h.words[u])
	pl.count--
	h.markBlock(u, poolUnits(idx))
	h.stats.PoolHits++
	h.stats.AllocCount++
	h.stats.PooledChunks--
	h.tracePool("alloc", u, idx)
	return h.pointer(u)
}

// PoolFree parks a chunk obtained from PoolAlloc with the same size.
func (h *Heap) PoolFree(p Pointer, size uint32) {
	idx := poolIndex(size)
	n := poolUnits(idx)
	u := h.unit(p)
	h.checkLive(u, n, "pool free")
	h.unmarkBlock(u)
	h.stats.FreeCount++
	pl := &h.pools[idx]
	h.state[u] = unitPooled
	h.words[u] = uint64(pl.head)
	pl.head = u
	pl.count++
	h.stats.PooledChunks++
	h.tracePool("free", u, idx)
}

func (h *Heap) tracePool(name string, u uint32, idx int) {
	if !trace.Enabled(h.tracer, trace.ScopeHeap) {
		return
	}
	trace.Point(h.tracer, trace.ScopeHeap, h.engine, name, "pool", map[string]string{
		"addr":  h.pointer(u).String(),
		"units": strconv.FormatUint(uint64(poolUnits(idx)), 10),
	})
}

// CollectEmptyPools returns every parked chunk to the free block list.
func (h *Heap) CollectEmptyPools() {
	for idx := range h.pools {
		pl := &h.pools[idx]
		n := poolUnits(idx)
		for pl.head != 0 {
			u := pl.head
			jrt.Assert(h.state[u] == unitPooled, "jmem: corrupted pool chain")
			pl.head = uint32(h.words[u])
			h.words[u] = 0
			h.release(u, n)
			h.stats.PooledChunks--
		}
		pl.count = 0
	}
}
