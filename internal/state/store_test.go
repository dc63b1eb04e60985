package state

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStore_RecordSuccess(t *testing.T) {
	var s Store
	s.Begin("abc", "weather", "London")

	before := time.Now()
	s.Record(nil)

	snap := s.Snapshot()
	if snap.Session != "abc" || snap.Provider != "weather" || snap.Query != "London" {
		t.Fatalf("snapshot identity = %#v, want abc/weather/London", snap)
	}
	if !snap.Running {
		t.Fatalf("Running = false, want true after Begin")
	}
	if snap.Cycles != 1 {
		t.Fatalf("Cycles = %d, want 1", snap.Cycles)
	}
	if snap.LastSuccess.Before(before) || snap.LastUpdated.Before(before) {
		t.Fatalf("timestamps not updated: %#v", snap)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}
}

func TestStore_RecordErrorKeepsLastSuccess(t *testing.T) {
	var s Store
	s.Record(nil)
	prev := s.Snapshot()

	origErr := errors.New("boom")
	s.Record(origErr)
	s.Record(origErr)

	snap := s.Snapshot()
	if !snap.LastSuccess.Equal(prev.LastSuccess) {
		t.Fatalf("LastSuccess changed on error: got %v want %v", snap.LastSuccess, prev.LastSuccess)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError = %v, want wrapped %v", snap.LastError, origErr)
	}
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("ConsecutiveFailures = %d offline=%v, want 2 true", snap.ConsecutiveFailures, snap.IsOffline())
	}
	if snap.Cycles != 3 {
		t.Fatalf("Cycles = %d, want 3", snap.Cycles)
	}

	s.Record(nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() || snap.LastError != nil {
		t.Fatalf("success did not reset failures: %#v", snap)
	}
}

func TestStore_BeginResets(t *testing.T) {
	var s Store
	s.Record(errors.New("x"))
	s.SetRunning(true)
	s.Begin("new", "stock", "IBM")

	snap := s.Snapshot()
	if snap.Cycles != 0 || snap.LastError != nil || snap.ConsecutiveFailures != 0 {
		t.Fatalf("Begin did not reset snapshot: %#v", snap)
	}
	s.SetRunning(false)
	if s.Snapshot().Running {
		t.Fatalf("Running = true after SetRunning(false)")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	var s Store
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Record(nil)
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()
	if got := s.Snapshot().Cycles; got != 8 {
		t.Fatalf("Cycles = %d, want 8", got)
	}
}
