package ecma

import (
	"fmt"
	"sort"
	"strings"

	"ecmacore/internal/jmem"
)

// LeakError reports heap blocks still alive when a context is closed.
type LeakError struct {
	Engine string
	Blocks int
	Bytes  uint64
	ByKind map[string]int
	Sample []string
}

func (e *LeakError) Error() string {
	msg := fmt.Sprintf("engine %s: heap leak detected: %d blocks (%d bytes) still alive", e.Engine, e.Blocks, e.Bytes)
	kinds := make([]string, 0, len(e.ByKind))
	for k, n := range e.ByKind {
		kinds = append(kinds, fmt.Sprintf("%s=%d", k, n))
	}
	sort.Strings(kinds)
	if len(kinds) > 0 {
		msg += " (" + strings.Join(kinds, ", ") + ")"
	}
	if len(e.Sample) > 0 {
		msg += ": " + strings.Join(e.Sample, ", ")
	}
	return msg
}

func (c *Context) checkLeaks() error {
	const maxSample = 8
	var leak *LeakError
	c.heap.Walk(func(b jmem.Block) {
		if leak == nil {
			leak = &LeakError{Engine: c.engine, ByKind: make(map[string]int)}
		}
		rec := c.record(b)
		leak.Blocks++
		leak.Bytes += uint64(b.Size)
		leak.ByKind[rec.Kind]++
		if len(leak.Sample) < maxSample {
			leak.Sample = append(leak.Sample, fmt.Sprintf("%s@%s(rc=%d,%s)", rec.Kind, b.Ptr, rec.Refs, rec.Preview))
		}
	})
	if leak == nil {
		return nil
	}
	return leak
}
