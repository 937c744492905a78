package ecma

import (
	"strconv"

	"ecmacore/internal/jrt"
	"ecmacore/internal/trace"
)

func (c *Context) acquire(e entity) {
	h := e.hdr()
	if h.refs >= c.refLimit {
		jrt.Fatalf(jrt.ErrRefCountLimit, "%s at %s: reference count limit %d reached", e.kind(), h.ptr, c.refLimit)
	}
	h.refs++
	c.counters.RefIncr++
	if c.tracing(trace.ScopeValue) {
		c.point(trace.ScopeValue, "ref", e.kind().String()+"@"+h.ptr.String()+" rc="+strconv.FormatUint(uint64(h.refs), 10))
	}
}

// release drops one reference and reports whether it was the last one.
func (c *Context) release(e entity) bool {
	h := e.hdr()
	if h.refs == 0 {
		fatalf("%s at %s released with no references (double free)", e.kind(), h.ptr)
	}
	h.refs--
	c.counters.RefDecr++
	if c.tracing(trace.ScopeValue) {
		c.point(trace.ScopeValue, "deref", e.kind().String()+"@"+h.ptr.String()+" rc="+strconv.FormatUint(uint64(h.refs), 10))
	}
	return h.refs == 0
}

// RefString adds a reference to a heap string.
func (c *Context) RefString(v Value) {
	c.acquire(entityOf[*String](c, v, TypeString))
}

// DerefString drops a reference to a heap string, freeing it on the last one.
func (c *Context) DerefString(v Value) {
	s := entityOf[*String](c, v, TypeString)
	if c.release(s) {
		c.freeEntity(s)
	}
}

// RefSymbol adds a reference to a symbol.
func (c *Context) RefSymbol(v Value) {
	c.acquire(entityOf[*Symbol](c, v, TypeSymbol))
}

// DerefSymbol drops a reference to a symbol. The last reference also
// releases the description.
func (c *Context) DerefSymbol(v Value) {
	s := entityOf[*Symbol](c, v, TypeSymbol)
	if c.release(s) {
		desc := s.description
		c.freeEntity(s)
		c.Free(desc)
	}
}

// RefBigInt adds a reference to a bigint. The zero bigint is not counted.
func (c *Context) RefBigInt(v Value) {
	if v.isZeroBigInt() {
		return
	}
	c.acquire(entityOf[*BigInt](c, v, TypeBigInt))
}

// DerefBigInt drops a reference to a bigint. The zero bigint is not counted.
func (c *Context) DerefBigInt(v Value) {
	if v.isZeroBigInt() {
		return
	}
	b := entityOf[*BigInt](c, v, TypeBigInt)
	if c.release(b) {
		c.freeEntity(b)
	}
}

// RefErrorRef adds a reference to an error reference.
func (c *Context) RefErrorRef(v Value) {
	c.acquire(entityOf[*ErrorRef](c, v, TypeError))
}

// DerefErrorRef drops a reference to an error reference. The last reference
// releases the thrown value.
func (c *Context) DerefErrorRef(v Value) {
	e := entityOf[*ErrorRef](c, v, TypeError)
	if c.release(e) {
		thrown := e.thrown
		c.freeEntity(e)
		c.Free(thrown)
	}
}

// RefObject adds an external reference to an object.
func (c *Context) RefObject(v Value) {
	c.acquire(entityOf[*Object](c, v, TypeObject))
}

// DerefObject drops an external reference to an object. An object without
// references stays allocated until the collector finds it unreachable.
func (c *Context) DerefObject(v Value) {
	c.release(entityOf[*Object](c, v, TypeObject))
}

// RefCountOf returns the reference count of the entity behind v, or 0 for
// values that own nothing or only a float cell.
func (c *Context) RefCountOf(v Value) uint32 {
	switch v.holding() {
	case holdsShared, holdsObject, holdsError:
		e, ok := c.heap.Record(c.decode(v)).(entity)
		if !ok {
			fatalf("value %s does not reference an entity", v)
		}
		return e.hdr().refs
	}
	return 0
}
