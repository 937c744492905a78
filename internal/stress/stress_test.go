package stress

import (
	"context"
	"errors"
	"testing"

	"ecmacore/internal/ecma"
	"ecmacore/internal/jrt"
	"ecmacore/internal/trace"
)

func smallOptions() Options {
	return Options{
		Engines:   3,
		Steps:     4000,
		Registers: 16,
		Slots:     16,
		Seed:      7,
		Context:   ecma.Options{HeapSize: 256 * 1024},
		CheckHeap: true,
	}
}

func TestRunIsLeakFree(t *testing.T) {
	report, err := Run(context.Background(), smallOptions(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Results) != 3 {
		t.Fatalf("results = %d", len(report.Results))
	}
	for _, r := range report.Results {
		if r.Steps != 4000 {
			t.Errorf("engine %d ran %d steps", r.Engine, r.Steps)
		}
		if r.Heap.AllocatedBytes != 0 || r.Heap.LiveBlocks != 0 {
			t.Errorf("engine %d left %+v", r.Engine, r.Heap)
		}
		if r.Counters.FloatAlloc != r.Counters.FloatFree {
			t.Errorf("engine %d float alloc %d != free %d", r.Engine, r.Counters.FloatAlloc, r.Counters.FloatFree)
		}
		if r.Ops["store"] == 0 || r.Ops["copy"] == 0 {
			t.Errorf("engine %d op mix %v", r.Engine, r.Ops)
		}
	}
	if len(report.Timing.Phases) != 3 {
		t.Fatalf("timing phases = %d", len(report.Timing.Phases))
	}
}

func TestRunIsDeterministic(t *testing.T) {
	opts := smallOptions()
	opts.Engines = 1
	a, err := Run(context.Background(), opts, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := Run(context.Background(), opts, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.Results[0].Counters != b.Results[0].Counters {
		t.Fatalf("counters differ:\n%+v\n%+v", a.Results[0].Counters, b.Results[0].Counters)
	}
	if a.Results[0].Heap.PeakBytes != b.Results[0].Heap.PeakBytes {
		t.Fatalf("peak differs: %d vs %d", a.Results[0].Heap.PeakBytes, b.Results[0].Heap.PeakBytes)
	}
}

func TestRunEmitsProgress(t *testing.T) {
	opts := smallOptions()
	opts.Engines = 2
	events := make(chan Event, 16)
	done := make(chan struct{})
	var queued, finished int
	go func() {
		defer close(done)
		for ev := range events {
			switch ev.Status {
			case StatusQueued:
				queued++
			case StatusDone:
				finished++
			}
		}
	}()
	if _, err := Run(context.Background(), opts, events); err != nil {
		t.Fatalf("Run: %v", err)
	}
	<-done
	if queued != 2 || finished != 2 {
		t.Fatalf("queued=%d finished=%d", queued, finished)
	}
}

func TestRunSnapshot(t *testing.T) {
	opts := smallOptions()
	opts.Engines = 1
	opts.Snapshot = true
	report, err := Run(context.Background(), opts, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	snap := report.Results[0].Snapshot
	if snap == nil || len(snap.Records) == 0 {
		t.Fatal("expected a populated snapshot")
	}
	if snap.Engine == "" {
		t.Fatal("snapshot lacks engine")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, smallOptions(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunReportsFatal(t *testing.T) {
	opts := smallOptions()
	opts.Engines = 1
	opts.Context.HeapSize = 256
	_, err := Run(context.Background(), opts, nil)
	var ee *EngineError
	if !errors.As(err, &ee) || ee.Fatal == nil {
		t.Fatalf("err = %v, want engine fatal", err)
	}
	if ee.Fatal.Code != jrt.ErrOutOfMemory {
		t.Fatalf("fatal code = %v", ee.Fatal.Code)
	}
}

func TestRunRejectsOptions(t *testing.T) {
	if _, err := Run(context.Background(), Options{}, nil); err == nil {
		t.Fatal("expected error for zero options")
	}
}

func TestRunTakesTracerFromContext(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelPhase)
	opts := smallOptions()
	opts.Engines = 2
	opts.Steps = 100
	report, err := Run(trace.WithTracer(context.Background(), ring), opts, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	engines := map[string]bool{}
	for _, ev := range ring.Snapshot() {
		if ev.Scope == trace.ScopeEngine {
			engines[ev.Engine] = true
		}
	}
	for _, r := range report.Results {
		if !engines[r.ID[:8]] {
			t.Errorf("no engine events for %s", r.ID)
		}
	}
}
