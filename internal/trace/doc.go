// Package trace provides the tracing and logging subsystem of the engine core.
//
// Engine contexts, the heap arena and the value lifecycle report what they do
// through a Tracer. Tracing is off by default and costs a single Enabled()
// check per call site when disabled.
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only crash dumps (ring buffer)
//   - LevelPhase: Engine context lifecycle
//   - LevelDetail: Heap block allocation, reclaim, leaks
//   - LevelDebug: Everything including per-value ref/deref events
//
// # Scopes
//
//   - ScopeEngine: context creation, teardown, garbage collection runs
//   - ScopeHeap: arena block and pool traffic
//   - ScopeValue: reference count mutations and float boxing
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeEngine, engineID, "context", parentID)
//	defer span.End("")
package trace
