package ecma

import (
	"math"
	"sort"
	"strconv"

	"ecmacore/internal/jmem"
)

// Record describes one live heap block.
type Record struct {
	Kind    string
	Addr    uint64
	CPtr    uint32
	Size    uint32
	Refs    uint32
	Preview string
}

// Snapshot is a point-in-time view of a context's heap.
type Snapshot struct {
	ID       string
	Engine   string
	Codec    string
	Heap     jmem.Stats
	Counters Counters
	Records  []Record
}

// Snapshot lists every live heap block, ordered by kind then address.
func (c *Context) Snapshot() Snapshot {
	s := Snapshot{
		ID:       c.id.String(),
		Engine:   c.engine,
		Codec:    c.codec.Name(),
		Heap:     c.heap.Stats(),
		Counters: c.counters,
	}
	c.heap.Walk(func(b jmem.Block) {
		s.Records = append(s.Records, c.record(b))
	})
	sort.SliceStable(s.Records, func(i, j int) bool {
		return s.Records[i].Kind < s.Records[j].Kind
	})
	return s
}

func (c *Context) record(b jmem.Block) Record {
	rec := Record{
		Addr: uint64(b.Ptr),
		CPtr: uint32(b.CPtr),
		Size: b.Size,
	}
	e, ok := b.Record.(entity)
	if !ok {
		// Float cells carry no record.
		rec.Kind = KindFloat.String()
		rec.Preview = strconv.FormatFloat(math.Float64frombits(*c.heap.Word(b.Ptr)), 'g', -1, 64)
		return rec
	}
	rec.Kind = e.kind().String()
	if o, isObj := e.(*Object); isObj && o.lexEnv {
		rec.Kind = "lexenv"
	}
	rec.Refs = e.hdr().refs
	rec.Size = e.hdr().size
	rec.Preview = e.preview(c)
	return rec
}
