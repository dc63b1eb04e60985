// Package state shares the outcome of poll cycles with the interactive form.
//
// # Overview
//
// The scheduled poll loop runs on its own goroutine while the form redraws on
// a tick. Store sits between them:
//
//	Producer (poll.Scheduler):     Consumer (ui):
//	┌────────────────┐            ┌──────────────────┐
//	│ fetch + format │            │                  │
//	│      ↓         │            │                  │
//	│ store.Record() │───────────→│ store.Snapshot() │
//	│      ↓         │  (mutex)   │      ↓           │
//	│  reschedule    │            │  render status   │
//	└────────────────┘            └──────────────────┘
//
// # Core Types
//
// Store:
//   - Begin resets counters for a new watch session
//   - Record counts a cycle and tracks consecutive failures
//   - Snapshot returns a copy guarded by sync.RWMutex
//
// Snapshot:
//   - Session, provider and query being watched
//   - Cycle count, last update, last success and last error
//   - IsOffline reports two or more consecutive failures
//
// A failed cycle never clears LastSuccess, so the form can show how stale the
// last good reading is.
package state
