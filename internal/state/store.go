package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot represents the latest poll outcome available to the UI.
type Snapshot struct {
	Session             string
	Provider            string
	Query               string
	Running             bool
	Cycles              int
	LastUpdated         time.Time
	LastSuccess         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed cycles
}

// IsOffline returns true when the endpoint has failed for multiple cycles.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Begin resets the store for a new watch session.
func (s *Store) Begin(session, provider, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = Snapshot{
		Session:  session,
		Provider: provider,
		Query:    query,
		Running:  true,
	}
}

// SetRunning marks the session as started or stopped.
func (s *Store) SetRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Running = running
}

// Record stores the outcome of one poll cycle. When err is non-nil the last
// success time is kept but the error is recorded for visibility.
func (s *Store) Record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.snapshot.Cycles++
	s.snapshot.LastUpdated = now
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.LastError = nil
	s.snapshot.LastSuccess = now
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
