// Package snapshot serializes engine heap snapshots.
package snapshot

import (
	"ecmacore/internal/ecma"
)

// SchemaVersion is bumped whenever Document changes shape.
const SchemaVersion = 1

// Document is the serialized form of an ecma.Snapshot.
type Document struct {
	Schema   int      `msgpack:"schema" cbor:"1,keyasint" yaml:"schema"`
	ID       string   `msgpack:"id" cbor:"2,keyasint" yaml:"id"`
	Engine   string   `msgpack:"engine" cbor:"3,keyasint" yaml:"engine"`
	Codec    string   `msgpack:"codec" cbor:"4,keyasint" yaml:"codec"`
	Heap     Heap     `msgpack:"heap" cbor:"5,keyasint" yaml:"heap"`
	Counters Counters `msgpack:"counters" cbor:"6,keyasint" yaml:"counters"`
	Records  []Record `msgpack:"records" cbor:"7,keyasint" yaml:"records"`
}

// Heap mirrors jmem.Stats field for field.
type Heap struct {
	Capacity       uint64 `msgpack:"capacity" cbor:"1,keyasint" yaml:"capacity"`
	AllocatedBytes uint64 `msgpack:"allocated" cbor:"2,keyasint" yaml:"allocated"`
	PeakBytes      uint64 `msgpack:"peak" cbor:"3,keyasint" yaml:"peak"`
	LiveBlocks     uint64 `msgpack:"live_blocks" cbor:"4,keyasint" yaml:"live_blocks"`
	AllocCount     uint64 `msgpack:"allocs" cbor:"5,keyasint" yaml:"allocs"`
	FreeCount      uint64 `msgpack:"frees" cbor:"6,keyasint" yaml:"frees"`
	PoolHits       uint64 `msgpack:"pool_hits" cbor:"7,keyasint" yaml:"pool_hits"`
	PoolMisses     uint64 `msgpack:"pool_misses" cbor:"8,keyasint" yaml:"pool_misses"`
	PooledChunks   uint64 `msgpack:"pooled_chunks" cbor:"9,keyasint" yaml:"pooled_chunks"`
	ReclaimRuns    uint64 `msgpack:"reclaim_runs" cbor:"10,keyasint" yaml:"reclaim_runs"`
}

// Counters mirrors ecma.Counters.
type Counters struct {
	RefIncr      uint64 `msgpack:"ref_incr" cbor:"1,keyasint" yaml:"ref_incr"`
	RefDecr      uint64 `msgpack:"ref_decr" cbor:"2,keyasint" yaml:"ref_decr"`
	FloatAlloc   uint64 `msgpack:"float_alloc" cbor:"3,keyasint" yaml:"float_alloc"`
	FloatFree    uint64 `msgpack:"float_free" cbor:"4,keyasint" yaml:"float_free"`
	FloatReuse   uint64 `msgpack:"float_reuse" cbor:"5,keyasint" yaml:"float_reuse"`
	EntityAlloc  uint64 `msgpack:"entity_alloc" cbor:"6,keyasint" yaml:"entity_alloc"`
	EntityFree   uint64 `msgpack:"entity_free" cbor:"7,keyasint" yaml:"entity_free"`
	GCRuns       uint64 `msgpack:"gc_runs" cbor:"8,keyasint" yaml:"gc_runs"`
	ObjectsSwept uint64 `msgpack:"objects_swept" cbor:"9,keyasint" yaml:"objects_swept"`
}

// Record is one live heap block.
type Record struct {
	Kind    string `msgpack:"kind" cbor:"1,keyasint" yaml:"kind"`
	Addr    uint64 `msgpack:"addr" cbor:"2,keyasint" yaml:"addr"`
	CPtr    uint32 `msgpack:"cptr" cbor:"3,keyasint" yaml:"cptr"`
	Size    uint32 `msgpack:"size" cbor:"4,keyasint" yaml:"size"`
	Refs    uint32 `msgpack:"refs,omitempty" cbor:"5,keyasint,omitempty" yaml:"refs,omitempty"`
	Preview string `msgpack:"preview,omitempty" cbor:"6,keyasint,omitempty" yaml:"preview,omitempty"`
}

// FromSnapshot converts an in-memory snapshot.
func FromSnapshot(s ecma.Snapshot) Document {
	doc := Document{
		Schema:   SchemaVersion,
		ID:       s.ID,
		Engine:   s.Engine,
		Codec:    s.Codec,
		Heap:     Heap(s.Heap),
		Counters: Counters(s.Counters),
		Records:  make([]Record, 0, len(s.Records)),
	}
	for _, r := range s.Records {
		doc.Records = append(doc.Records, Record(r))
	}
	return doc
}

// Live sums record sizes per kind.
func (d Document) Live() map[string]uint64 {
	out := make(map[string]uint64)
	for _, r := range d.Records {
		out[r.Kind] += uint64(r.Size)
	}
	return out
}
