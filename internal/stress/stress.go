// Package stress drives deterministic value workloads against several
// engines at once and checks that every engine tears down without leaks.
package stress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"ecmacore/internal/ecma"
	"ecmacore/internal/jmem"
	"ecmacore/internal/jrt"
	"ecmacore/internal/observ"
	"ecmacore/internal/trace"
)

// Options configures a run.
type Options struct {
	Engines   int
	Steps     int
	Registers int
	Slots     int
	Seed      uint64

	// Context is the template for every engine context. A nil tracer is
	// taken from the context passed to Run.
	Context ecma.Options
	// Snapshot captures each engine's heap before teardown.
	Snapshot bool
	// CheckHeap verifies heap invariants after every collection.
	CheckHeap bool
}

// Status is the state carried by a progress event.
type Status uint8

const (
	StatusQueued Status = iota
	StatusRunning
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Event reports progress of one engine.
type Event struct {
	Engine int
	Status Status
	Step   int
	Steps  int
	Err    error
}

// Result summarizes one engine.
type Result struct {
	Engine   int
	ID       string
	Steps    int
	Ops      map[string]uint64
	Counters ecma.Counters
	Heap     jmem.Stats
	Elapsed  time.Duration
	Snapshot *ecma.Snapshot
}

// Report is the outcome of Run.
type Report struct {
	Results []Result
	Timing  observ.Report
}

// EngineError wraps a failure of a single engine.
type EngineError struct {
	Engine int
	Fatal  *jrt.FatalError
	Err    error
}

func (e *EngineError) Error() string {
	if e.Fatal != nil {
		return fmt.Sprintf("engine %d: %v", e.Engine, e.Fatal)
	}
	return fmt.Sprintf("engine %d: %v", e.Engine, e.Err)
}

func (e *EngineError) Unwrap() error {
	if e.Fatal != nil {
		return e.Fatal
	}
	return e.Err
}

// ErrInvariant marks a value that failed a consistency check.
var ErrInvariant = errors.New("invariant violated")

const progressEvery = 256

// Run executes the workload on opts.Engines engines in parallel. Each engine
// gets its own heap and a generator seeded from opts.Seed and its index, so
// a run is reproducible. Events, if non-nil, receives progress and is closed
// when Run returns.
func Run(ctx context.Context, opts Options, events chan<- Event) (Report, error) {
	if events != nil {
		defer close(events)
	}
	if opts.Engines < 1 || opts.Registers < 1 || opts.Slots < 1 || opts.Steps < 0 {
		return Report{}, fmt.Errorf("stress: invalid options %+v", opts)
	}
	if opts.Context.Tracer == nil {
		opts.Context.Tracer = trace.FromContext(ctx)
	}
	timer := observ.NewTimer()
	report := Report{Results: make([]Result, opts.Engines)}

	emit := func(ev Event) {
		if events == nil {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}
	for i := 0; i < opts.Engines; i++ {
		emit(Event{Engine: i, Status: StatusQueued, Steps: opts.Steps})
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < opts.Engines; i++ {
		g.Go(func() error {
			phase := timer.Begin(fmt.Sprintf("engine %d", i))
			res, err := runEngine(gctx, i, opts, emit)
			note := fmt.Sprintf("%d steps", res.Steps)
			if err != nil {
				note = "failed"
				emit(Event{Engine: i, Status: StatusError, Step: res.Steps, Steps: opts.Steps, Err: err})
			} else {
				emit(Event{Engine: i, Status: StatusDone, Step: res.Steps, Steps: opts.Steps})
			}
			timer.End(phase, note)
			report.Results[i] = res
			return err
		})
	}
	err := g.Wait()
	report.Timing = timer.Report()
	return report, err
}

func runEngine(ctx context.Context, idx int, opts Options, emit func(Event)) (res Result, err error) {
	res.Engine = idx
	c, err := ecma.NewContext(opts.Context)
	if err != nil {
		return res, &EngineError{Engine: idx, Err: err}
	}
	res.ID = c.ID().String()
	start := time.Now()
	w := newWorker(c, opts, idx)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		fe, ok := jrt.AsFatal(r)
		if !ok {
			panic(r)
		}
		// The heap is inconsistent after a fatal error; it is abandoned.
		res.Steps = w.step
		err = &EngineError{Engine: idx, Fatal: fe}
	}()

	for w.step < opts.Steps {
		if w.step%progressEvery == 0 {
			if cerr := ctx.Err(); cerr != nil {
				w.close()
				_ = c.Close()
				res.Steps = w.step
				return res, &EngineError{Engine: idx, Err: cerr}
			}
			emit(Event{Engine: idx, Status: StatusRunning, Step: w.step, Steps: opts.Steps})
		}
		if err := w.next(); err != nil {
			w.close()
			_ = c.Close()
			res.Steps = w.step
			return res, &EngineError{Engine: idx, Err: err}
		}
	}
	res.Steps = w.step
	if opts.Snapshot {
		snap := c.Snapshot()
		res.Snapshot = &snap
	}
	w.close()
	if err := c.Close(); err != nil {
		return res, &EngineError{Engine: idx, Err: err}
	}
	res.Ops = w.opCounts()
	res.Counters = c.Counters()
	res.Heap = c.Heap().Stats()
	res.Elapsed = time.Since(start)
	return res, nil
}
