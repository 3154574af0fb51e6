package stats

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSnapshotPercentiles(t *testing.T) {
	s := New(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		s.Record(time.Duration(ms)*time.Millisecond, nil)
	}

	snap := s.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
	if snap.Failed != 0 {
		t.Fatalf("expected failed=0, got %d", snap.Failed)
	}
	if snap.Window != "1h0m0s" {
		t.Fatalf("expected window=1h0m0s, got %q", snap.Window)
	}
}

func TestRecordCountsFailures(t *testing.T) {
	s := New(time.Hour)
	s.Record(10*time.Millisecond, nil)
	s.Record(20*time.Millisecond, errors.New("bad pdf"))
	s.Record(30*time.Millisecond, errors.New("bad pdf"))

	snap := s.Snapshot()
	if snap.Count != 3 || snap.Failed != 2 {
		t.Fatalf("expected count=3 failed=2, got count=%d failed=%d", snap.Count, snap.Failed)
	}
}

func TestPrunesExpiredSamples(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New(time.Minute)
	s.now = func() time.Time { return now }

	s.Record(100*time.Millisecond, nil)
	now = now.Add(2 * time.Minute)

	if snap := s.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	s.Record(200*time.Millisecond, nil)
	snap := s.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestRecordClampsNegativeDuration(t *testing.T) {
	s := New(time.Hour)
	s.Record(-5*time.Millisecond, nil)
	if snap := s.Snapshot(); snap.MinMs != 0 {
		t.Fatalf("expected min=0, got %d", snap.MinMs)
	}
}

func TestNewDefaultsWindow(t *testing.T) {
	if s := New(0); s.maxAge != time.Hour {
		t.Fatalf("expected default window of 1h, got %s", s.maxAge)
	}
}

func TestEmptySnapshot(t *testing.T) {
	snap := New(time.Hour).Snapshot()
	if snap.Count != 0 || snap.P99Ms != 0 {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}

func TestConcurrentRecord(t *testing.T) {
	s := New(time.Hour)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Record(time.Millisecond, nil)
			}
		}()
	}
	wg.Wait()
	if snap := s.Snapshot(); snap.Count != 1000 {
		t.Fatalf("expected count=1000, got %d", snap.Count)
	}
}
