package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1 // span start
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd // span end
	// KindPoint represents an instant event.
	KindPoint // instant event
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent higher-level/coarser events.
type Scope uint8

const (
	// ScopeEngine represents engine context lifecycle (highest level).
	ScopeEngine Scope = iota + 1
	// ScopeHeap represents arena blocks, pools and reclaim.
	ScopeHeap
	// ScopeValue represents per-value reference count traffic (most detailed).
	ScopeValue
)

// String returns the string representation of Scope.
func (s Scope) String() string {
	switch s {
	case ScopeEngine:
		return "engine"
	case ScopeHeap:
		return "heap"
	case ScopeValue:
		return "value"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time         // wall-clock timestamp
	Seq      uint64            // global sequence number (monotonic)
	Kind     Kind              // event kind
	Scope    Scope             // granularity level
	SpanID   uint64            // unique span identifier
	ParentID uint64            // parent span (0 if root)
	GID      uint64            // goroutine ID (for concurrent engines)
	Engine   string            // engine context id, empty outside a context
	Name     string            // e.g., "alloc", "free", "ref"
	Detail   string            // optional detail message
	Extra    map[string]string // extensible key-value pairs
}
