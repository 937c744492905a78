package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("setup")
	time.Sleep(time.Millisecond)
	tm.End(idx, "2 engines")

	r := tm.Report()
	if len(r.Phases) != 1 || r.Phases[0].Name != "setup" || r.Phases[0].Note != "2 engines" {
		t.Fatalf("report = %+v", r)
	}
	if r.Phases[0].DurationMS <= 0 || r.WallMS < r.Phases[0].DurationMS {
		t.Fatalf("durations = %+v", r)
	}
	if s := tm.Summary(); !strings.Contains(s, "setup") || !strings.Contains(s, "wall") {
		t.Fatalf("summary = %q", s)
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "ignored")
	if r := tm.Report(); len(r.Phases) != 0 || r.WallMS != 0 {
		t.Fatalf("report = %+v", r)
	}
}

func TestTimerConcurrentPhases(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.End(tm.Begin("engine"), "")
		}()
	}
	wg.Wait()
	if got := len(tm.Report().Phases); got != 8 {
		t.Fatalf("phases = %d, want 8", got)
	}
}
