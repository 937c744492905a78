package ecma

import (
	"ecmacore/internal/jmem"
)

// RefCount is the shared-ownership counter embedded in every heap entity.
type RefCount struct {
	refs uint32
}

// Refs returns the current count.
func (r *RefCount) Refs() uint32 { return r.refs }

// header is the common prefix of heap entities: the counter plus the block
// that backs the entity in the arena.
type header struct {
	RefCount
	ptr  jmem.Pointer
	size uint32
}

func (h *header) hdr() *header { return h }

// Ptr returns the arena address of the entity.
func (h *header) Ptr() jmem.Pointer { return h.ptr }

type entity interface {
	hdr() *header
	kind() Kind
	preview(c *Context) string
}

const headerSize = 8

func (c *Context) allocEntity(size uint32, e entity) jmem.Pointer {
	var p jmem.Pointer
	if size <= jmem.LargeChunk {
		p = c.heap.PoolAlloc(size)
	} else {
		p = c.heap.Alloc(size)
	}
	h := e.hdr()
	h.ptr = p
	h.size = size
	h.refs = 1
	c.heap.Attach(p, e)
	c.counters.EntityAlloc++
	return p
}

func (c *Context) freeEntity(e entity) {
	h := e.hdr()
	if h.size <= jmem.LargeChunk {
		c.heap.PoolFree(h.ptr, h.size)
	} else {
		c.heap.Free(h.ptr, h.size)
	}
	h.ptr = 0
	c.counters.EntityFree++
}

func (c *Context) encode(p jmem.Pointer, t Type) Value {
	return Value(c.codec.Encode(p) | uint64(t))
}

func (c *Context) decode(v Value) jmem.Pointer {
	return c.codec.Decode(uint64(v))
}

// entityOf resolves the heap entity behind a value of type t.
func entityOf[T entity](c *Context, v Value, t Type) T {
	if v.Type() != t {
		fatalf("expected %s value, got %s", t, v)
	}
	e, ok := c.heap.Record(c.decode(v)).(T)
	if !ok {
		fatalf("value %s does not reference a %s entity", v, t)
	}
	return e
}

// MakeExtendedPrimitiveValue encodes a pointer to a live string, symbol,
// bigint or error entity with the given type field.
func (c *Context) MakeExtendedPrimitiveValue(p jmem.Pointer, t Type) Value {
	switch t {
	case TypeString, TypeSymbol, TypeBigInt, TypeError:
	default:
		fatalf("type %s is not an extended primitive", t)
	}
	e, ok := c.heap.Record(p).(entity)
	if !ok || kindType(e.kind()) != t {
		fatalf("pointer %s does not hold a %s entity", p, t)
	}
	return c.encode(p, t)
}

func kindType(k Kind) Type {
	switch k {
	case KindString:
		return TypeString
	case KindSymbol:
		return TypeSymbol
	case KindBigInt:
		return TypeBigInt
	case KindObject:
		return TypeObject
	case KindErrorReference:
		return TypeError
	case KindFloat:
		return TypeFloat
	}
	return TypeDirect
}
