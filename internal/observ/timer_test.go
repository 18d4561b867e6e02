package observ_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"strswitch/internal/observ"
)

func TestTimerPhases(t *testing.T) {
	tm := observ.NewTimer()
	idx := tm.Begin("load")
	tm.End(idx, "3 files")
	tm.End(42, "ignored")

	r := tm.Report()
	if len(r.Phases) != 1 || r.Phases[0].Name != "load" || r.Phases[0].Note != "3 files" {
		t.Fatalf("report = %+v", r)
	}
	if s := tm.Summary(); !strings.Contains(s, "// 3 files") || !strings.Contains(s, "total") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestTimerAddIsConcurrent(t *testing.T) {
	tm := observ.NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Add("select", time.Millisecond)
		}()
	}
	wg.Wait()
	r := tm.Report()
	if len(r.Phases) != 1 {
		t.Fatalf("phases = %d", len(r.Phases))
	}
	if r.Phases[0].Count != 16 || r.Phases[0].DurationMS != 16 {
		t.Fatalf("select phase = %+v", r.Phases[0])
	}
	if !strings.Contains(tm.Summary(), "x16") {
		t.Fatalf("summary:\n%s", tm.Summary())
	}
}

func TestEmptyReport(t *testing.T) {
	if r := observ.NewTimer().Report(); r.TotalMS != 0 || len(r.Phases) != 0 {
		t.Fatalf("report = %+v", r)
	}
}
