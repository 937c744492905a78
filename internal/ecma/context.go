package ecma

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"ecmacore/internal/cptr"
	"ecmacore/internal/jmem"
	"ecmacore/internal/trace"
)

// DefaultRefLimit is the highest reference count an entity may reach.
const DefaultRefLimit = 0xFFFF

// Options configures a Context.
type Options struct {
	HeapBase jmem.Pointer
	HeapSize int
	RefLimit uint32 // 0 selects DefaultRefLimit
	Codec    string // "compressed", "direct" or "" for the build default
	Tracer   trace.Tracer
}

// Counters tracks value-level traffic for tests and reports.
type Counters struct {
	RefIncr      uint64
	RefDecr      uint64
	FloatAlloc   uint64
	FloatFree    uint64
	FloatReuse   uint64
	EntityAlloc  uint64
	EntityFree   uint64
	GCRuns       uint64
	ObjectsSwept uint64
}

// Context is one engine instance: a heap, a pointer codec and the counters
// for everything allocated in it. It is not safe for concurrent use.
type Context struct {
	id       uuid.UUID
	engine   string
	heap     *jmem.Heap
	codec    cptr.Codec
	tracer   trace.Tracer
	refLimit uint32
	counters Counters
	span     *trace.Span
	closed   bool
}

// NewContext creates an engine context with its own heap.
func NewContext(opts Options) (*Context, error) {
	id := uuid.New()
	engine := id.String()[:8]
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	heap, err := jmem.NewHeap(jmem.Options{
		Base:   opts.HeapBase,
		Size:   opts.HeapSize,
		Tracer: tracer,
		Engine: engine,
	})
	if err != nil {
		return nil, fmt.Errorf("engine %s: %w", engine, err)
	}
	codec, ok := cptr.ByName(opts.Codec, heap)
	if !ok {
		return nil, fmt.Errorf("engine %s: unknown pointer codec %q", engine, opts.Codec)
	}
	limit := opts.RefLimit
	if limit == 0 {
		limit = DefaultRefLimit
	}
	c := &Context{
		id:       id,
		engine:   engine,
		heap:     heap,
		codec:    codec,
		tracer:   tracer,
		refLimit: limit,
	}
	heap.AddReclaimer(func() { c.RunGC() })
	c.span = trace.Begin(tracer, trace.ScopeEngine, engine, "context", 0).
		WithExtra("codec", codec.Name()).
		WithExtra("heap", strconv.FormatUint(heap.Size(), 10))
	return c, nil
}

// ID returns the unique id of this context.
func (c *Context) ID() uuid.UUID { return c.id }

// Engine returns the short engine label used in trace events.
func (c *Context) Engine() string { return c.engine }

// Heap exposes the underlying arena.
func (c *Context) Heap() *jmem.Heap { return c.heap }

// Codec returns the pointer codec in use.
func (c *Context) Codec() cptr.Codec { return c.codec }

// RefLimit returns the configured reference count ceiling.
func (c *Context) RefLimit() uint32 { return c.refLimit }

// Counters returns a copy of the traffic counters.
func (c *Context) Counters() Counters { return c.counters }

func (c *Context) tracing(scope trace.Scope) bool {
	return trace.Enabled(c.tracer, scope)
}

func (c *Context) point(scope trace.Scope, name, detail string) {
	trace.Point(c.tracer, scope, c.engine, name, detail, nil)
}

// Close collects garbage, releases pooled chunks and verifies that nothing
// is left on the heap. Calling Close twice is a no-op.
func (c *Context) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.RunGC()
	c.heap.CollectEmptyPools()
	err := c.checkLeaks()
	st := c.heap.Stats()
	c.span.WithExtra("peak", strconv.FormatUint(st.PeakBytes, 10)).
		WithExtra("allocs", strconv.FormatUint(st.AllocCount, 10))
	if err != nil {
		c.span.End("leak")
		return err
	}
	c.span.End("")
	return nil
}
