package ecma

import (
	"strconv"

	"ecmacore/internal/jmem"
	"ecmacore/internal/trace"
)

// RunGC frees every object that is neither externally referenced nor
// reachable through the internal slots of one that is. It returns the
// number of objects freed.
func (c *Context) RunGC() int {
	var objects []*Object
	c.heap.Walk(func(b jmem.Block) {
		if o, ok := b.Record.(*Object); ok {
			o.marked = false
			objects = append(objects, o)
		}
	})
	var stack []*Object
	for _, o := range objects {
		if o.refs > 0 && !o.marked {
			o.marked = true
			stack = append(stack, o)
		}
	}
	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.forEachEdge(o, func(v Value) {
			child := c.ObjectOf(v)
			if !child.marked {
				child.marked = true
				stack = append(stack, child)
			}
		})
	}
	swept := 0
	for _, o := range objects {
		if o.marked {
			continue
		}
		for i := range o.slots {
			c.FreeIfNotObject(o.slots[i].v)
			o.slots[i].v = Empty
		}
		c.freeEntity(o)
		swept++
	}
	c.counters.GCRuns++
	c.counters.ObjectsSwept += uint64(swept)
	if c.tracing(trace.ScopeHeap) {
		c.point(trace.ScopeHeap, "gc", "swept="+strconv.Itoa(swept)+" live="+strconv.Itoa(len(objects)-swept))
	}
	return swept
}

func (c *Context) forEachEdge(o *Object, fn func(Value)) {
	if o.outer.IsObject() {
		fn(o.outer)
	}
	for _, s := range o.slots {
		if s.v.IsObject() {
			fn(s.v)
		}
	}
}
