// Package jmem implements the engine heap: a word-addressed arena handing out
// aligned native pointers, with compressed-pointer conversion and fixed-size
// chunk pools for the hot small allocations (boxed numbers, small records).
//
// A Heap belongs to exactly one engine context and is not safe for concurrent
// use. Allocation never returns a null pointer: exhaustion runs the registered
// reclaimers once and then terminates with jrt.ErrOutOfMemory.
package jmem

import (
	"fmt"
	"sort"
	"strconv"

	"fortio.org/safecast"

	"ecmacore/internal/jrt"
	"ecmacore/internal/trace"
)

// Pointer is a native address inside the engine heap. Zero is null.
type Pointer uint64

// CPointer is a compressed pointer: the heap offset divided by Alignment.
// Zero is null; offset 0 of the arena is never handed out.
type CPointer uint32

const (
	// AlignmentLog is log2 of the allocation granule.
	AlignmentLog = 3
	// Alignment is the allocation granule in bytes; every Pointer is a multiple of it.
	Alignment = 1 << AlignmentLog

	// CPointerNull is the null compressed pointer.
	CPointerNull CPointer = 0

	// DefaultBase places the arena above 4 GiB so native pointers do not fit
	// in 32 bits.
	DefaultBase Pointer = 0x7f3a_0000_0000
	// DefaultSize is the default arena size in bytes.
	DefaultSize = 512 * 1024

	minSize = 4 * Alignment
)

// String formats the pointer as hex.
func (p Pointer) String() string {
	return "0x" + strconv.FormatUint(uint64(p), 16)
}

// Options configures a Heap.
type Options struct {
	Base   Pointer // first address of the arena, must be aligned
	Size   int     // arena size in bytes
	Tracer trace.Tracer
	Engine string // engine id stamped on trace events
}

// Reclaimer frees unused memory when an allocation cannot be satisfied.
type Reclaimer func()

type unitState uint8

const (
	unitFree   unitState = iota // part of a free region
	unitBlock                   // first unit of a live block
	unitBody                    // continuation unit of a block
	unitPooled                  // first unit of a chunk parked in a pool
)

type region struct {
	start uint32
	units uint32
}

// Heap is the engine arena.
type Heap struct {
	base  Pointer
	units uint32

	words   []uint64
	state   []unitState
	spans   []uint32 // block length in units, valid at block start
	records []any    // record attached to a block, valid at block start

	free  []region // sorted by start, coalesced
	pools [poolCount]pool

	reclaimers []Reclaimer
	reclaiming bool

	stats  Stats
	tracer trace.Tracer
	engine string
}

// NewHeap creates an arena described by opts.
func NewHeap(opts Options) (*Heap, error) {
	if opts.Base == 0 {
		opts.Base = DefaultBase
	}
	if opts.Size == 0 {
		opts.Size = DefaultSize
	}
	if opts.Base%Alignment != 0 {
		return nil, fmt.Errorf("heap base %s is not %d-byte aligned", opts.Base, Alignment)
	}
	if opts.Size < minSize {
		return nil, fmt.Errorf("heap size %d is below the minimum of %d bytes", opts.Size, minSize)
	}
	units, err := safecast.Conv[uint32](opts.Size / Alignment)
	if err != nil {
		return nil, fmt.Errorf("heap size %d: %w", opts.Size, err)
	}
	if uint64(opts.Base)+uint64(units)*Alignment < uint64(opts.Base) {
		return nil, fmt.Errorf("heap [%s, +%d) overflows the address space", opts.Base, opts.Size)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	h := &Heap{
		base:    opts.Base,
		units:   units,
		words:   make([]uint64, units),
		state:   make([]unitState, units),
		spans:   make([]uint32, units),
		records: make([]any, units),
		tracer:  tracer,
		engine:  opts.Engine,
	}
	// Unit 0 stays reserved so that CPointer 0 can mean null.
	h.free = []region{{start: 1, units: units - 1}}
	h.stats.Capacity = uint64(units-1) * Alignment
	return h, nil
}

// Base returns the first address of the arena.
func (h *Heap) Base() Pointer { return h.base }

// Size returns the arena size in bytes.
func (h *Heap) Size() uint64 { return uint64(h.units) * Alignment }

// AddReclaimer registers fn to run when an allocation fails.
func (h *Heap) AddReclaimer(fn Reclaimer) {
	h.reclaimers = append(h.reclaimers, fn)
}

func unitsFor(size uint32) uint32 {
	return (size + Alignment - 1) >> AlignmentLog
}

// Alloc returns a block of at least size bytes. The block's words are zeroed.
func (h *Heap) Alloc(size uint32) Pointer {
	jrt.Assert(size > 0, "jmem: zero-sized allocation")
	n := unitsFor(size)
	if start, ok := h.take(n); ok {
		h.stats.AllocCount++
		return h.pointer(start)
	}
	h.reclaim()
	if start, ok := h.take(n); ok {
		h.stats.AllocCount++
		return h.pointer(start)
	}
	trace.Point(h.tracer, trace.ScopeHeap, h.engine, "oom", "", map[string]string{
		"size":      strconv.FormatUint(uint64(size), 10),
		"allocated": strconv.FormatUint(h.stats.AllocatedBytes, 10),
	})
	jrt.Fatalf(jrt.ErrOutOfMemory, "cannot allocate %d bytes (%d of %d in use)", size, h.stats.AllocatedBytes, h.stats.Capacity)
	return 0
}

// take carves n units out of the first free region large enough.
func (h *Heap) take(n uint32) (uint32, bool) {
	for i := range h.free {
		r := &h.free[i]
		if r.units < n {
			continue
		}
		start := r.start
		if r.units == n {
			h.free = append(h.free[:i], h.free[i+1:]...)
		} else {
			r.start += n
			r.units -= n
		}
		h.markBlock(start, n)
		if trace.Enabled(h.tracer, trace.ScopeHeap) {
			trace.Point(h.tracer, trace.ScopeHeap, h.engine, "alloc", "", map[string]string{
				"addr":  h.pointer(start).String(),
				"units": strconv.FormatUint(uint64(n), 10),
			})
		}
		return start, true
	}
	return 0, false
}

func (h *Heap) markBlock(start, n uint32) {
	h.state[start] = unitBlock
	h.spans[start] = n
	h.words[start] = 0
	for u := start + 1; u < start+n; u++ {
		h.state[u] = unitBody
		h.words[u] = 0
	}
	bytes := uint64(n) * Alignment
	h.stats.AllocatedBytes += bytes
	h.stats.LiveBlocks++
	if h.stats.AllocatedBytes > h.stats.PeakBytes {
		h.stats.PeakBytes = h.stats.AllocatedBytes
	}
}

// Free releases a block previously returned by Alloc with the same size.
func (h *Heap) Free(p Pointer, size uint32) {
	start := h.unit(p)
	n := unitsFor(size)
	h.checkLive(start, n, "free")
	h.unmarkBlock(start)
	h.stats.FreeCount++
	h.release(start, n)
	if trace.Enabled(h.tracer, trace.ScopeHeap) {
		trace.Point(h.tracer, trace.ScopeHeap, h.engine, "free", "", map[string]string{
			"addr":  p.String(),
			"units": strconv.FormatUint(uint64(n), 10),
		})
	}
}

func (h *Heap) checkLive(start, n uint32, op string) {
	switch h.state[start] {
	case unitBlock:
	case unitPooled:
		jrt.Fatalf(jrt.ErrFailedInternalAssertion, "jmem: %s of pooled chunk %s (double free)", op, h.pointer(start))
	case unitFree:
		jrt.Fatalf(jrt.ErrFailedInternalAssertion, "jmem: %s of free memory %s (double free)", op, h.pointer(start))
	default:
		jrt.Fatalf(jrt.ErrFailedInternalAssertion, "jmem: %s of interior pointer %s", op, h.pointer(start))
	}
	if h.spans[start] != n {
		jrt.Fatalf(jrt.ErrFailedInternalAssertion, "jmem: %s of %s with %d units, block has %d", op, h.pointer(start), n, h.spans[start])
	}
}

func (h *Heap) unmarkBlock(start uint32) {
	n := h.spans[start]
	h.records[start] = nil
	h.stats.AllocatedBytes -= uint64(n) * Alignment
	h.stats.LiveBlocks--
}

// release returns units to the free list, coalescing with neighbours.
func (h *Heap) release(start, n uint32) {
	for u := start; u < start+n; u++ {
		h.state[u] = unitFree
	}
	h.spans[start] = 0
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].start > start })
	h.free = append(h.free, region{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = region{start: start, units: n}
	if i+1 < len(h.free) && h.free[i].start+h.free[i].units == h.free[i+1].start {
		h.free[i].units += h.free[i+1].units
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].start+h.free[i-1].units == h.free[i].start {
		h.free[i-1].units += h.free[i].units
		h.free = append(h.free[:i], h.free[i+1:]...)
	}
}

func (h *Heap) reclaim() {
	if h.reclaiming {
		return
	}
	h.reclaiming = true
	defer func() { h.reclaiming = false }()
	h.stats.ReclaimRuns++
	trace.Point(h.tracer, trace.ScopeHeap, h.engine, "reclaim", "", nil)
	h.CollectEmptyPools()
	for _, fn := range h.reclaimers {
		fn()
	}
	h.CollectEmptyPools()
}

func (h *Heap) pointer(u uint32) Pointer {
	return h.base + Pointer(u)<<AlignmentLog
}

// unit converts a non-null aligned in-arena pointer to its unit index.
func (h *Heap) unit(p Pointer) uint32 {
	jrt.Assert(p != 0, "jmem: null pointer")
	if p%Alignment != 0 {
		jrt.Fatalf(jrt.ErrFailedInternalAssertion, "jmem: misaligned pointer %s", p)
	}
	if p < h.base || uint64(p-h.base)>>AlignmentLog >= uint64(h.units) {
		jrt.Fatalf(jrt.ErrFailedInternalAssertion, "jmem: pointer %s outside heap [%s, +%d)", p, h.base, h.Size())
	}
	u := uint32((p - h.base) >> AlignmentLog)
	jrt.Assert(u != 0, "jmem: pointer to reserved unit")
	return u
}

// Contains reports whether p addresses the first unit of a live block.
func (h *Heap) Contains(p Pointer) bool {
	if p == 0 || p%Alignment != 0 || p < h.base {
		return false
	}
	off := uint64(p-h.base) >> AlignmentLog
	if off == 0 || off >= uint64(h.units) {
		return false
	}
	return h.state[off] == unitBlock
}

// Compress converts a live block pointer to its compressed form.
func (h *Heap) Compress(p Pointer) CPointer {
	return CPointer(h.unit(p))
}

// Decompress converts a non-null compressed pointer back to a native pointer.
func (h *Heap) Decompress(cp CPointer) Pointer {
	jrt.Assert(cp != CPointerNull, "jmem: null compressed pointer")
	jrt.Assert(uint32(cp) < h.units, "jmem: compressed pointer outside heap")
	return h.pointer(uint32(cp))
}

// Word returns the first word of a live block.
func (h *Heap) Word(p Pointer) *uint64 {
	u := h.unit(p)
	jrt.Assert(h.state[u] == unitBlock, "jmem: word access to a dead block")
	return &h.words[u]
}

// Attach associates rec with the live block at p.
func (h *Heap) Attach(p Pointer, rec any) {
	u := h.unit(p)
	jrt.Assert(h.state[u] == unitBlock, "jmem: attach to a dead block")
	h.records[u] = rec
}

// Record returns the record attached to the live block at p.
func (h *Heap) Record(p Pointer) any {
	u := h.unit(p)
	jrt.Assert(h.state[u] == unitBlock, "jmem: record access to a dead block")
	return h.records[u]
}

// Block describes a live block.
type Block struct {
	Ptr    Pointer
	CPtr   CPointer
	Size   uint32
	Record any
}

// Walk calls fn for every live block in address order.
func (h *Heap) Walk(fn func(b Block)) {
	for u := uint32(1); u < h.units; {
		switch h.state[u] {
		case unitBlock:
			n := h.spans[u]
			fn(Block{Ptr: h.pointer(u), CPtr: CPointer(u), Size: n * Alignment, Record: h.records[u]})
			u += n
		case unitPooled:
			u += h.spans[u]
		default:
			u++
		}
	}
}
