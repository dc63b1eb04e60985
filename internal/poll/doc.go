// Package poll drives the fetch, format, sleep cycle for one provider
// endpoint.
//
// # Overview
//
// A Cycle is one fetch of the provider URL followed by one call to the
// provider's formatter. Two loops are built on it:
//
//   - Loop: the blocking form used by the command line. Run returns when its
//     context is cancelled (SIGINT/SIGTERM in the CLI).
//   - Scheduler: the scheduled-callback form used by the interactive form.
//     Each cycle runs on a time.AfterFunc callback, so the UI goroutine never
//     blocks on the network.
//
// Both share Options, so the same provider, fetcher, console logger,
// observer and metrics can drive either one.
//
// # State Machine
//
// Every loop exposes its position through State(). The value is stored
// atomically and may be read from any goroutine:
//
//	Idle ──> Fetching ──> Formatting ──> Sleeping ──┐
//	            ^                                   │
//	            └───────────────────────────────────┘
//	any state ──> Stopped   (cancel, Stop, or a panic in Loop)
//
// A fetch failure skips Formatting and goes straight to Sleeping. Stopped is
// terminal; a Scheduler cannot be started again after Stop.
//
// # Cycle Outcomes
//
// Each completed cycle produces exactly one outcome, reported to the
// Observer (normally a *state.Store) and counted in metrics:
//
//   - ok: payload fetched and formatted; console logs
//     "API data fetched successfully"
//   - fetch_error: every attempt failed; console logs
//     "Error fetching API data: <err>"
//   - rejected: the formatter refused the payload (provider notice or
//     missing key); console logs "API data rejected: <err>"
//
// A cycle interrupted by context cancellation records nothing and logs
// nothing.
//
// # Loop
//
// Run logs "Starting API Watchdog", then alternates cycles with
// "Sleeping for N seconds..." waits on a single reused timer. Failures never
// stop the loop; the next cycle runs after the usual interval.
//
// Cancellation logs "API Watchdog stopped by user" and returns nil. A panic
// raised by a provider or fetcher is recovered at the top of Run, logged as
// "API Watchdog stopped due to error: ...", and returned as an error so the
// command exits non-zero.
//
// # Scheduler
//
// Start schedules the first cycle immediately. Each callback:
//
//  1. Returns at once when the scheduler has been stopped
//  2. Runs one cycle with panics recovered and logged as
//     "Error in API monitoring: ..."
//  3. Re-arms a timer for the interval unless Stop was called meanwhile
//
// Stop is cooperative. It cancels the pending timer and sets the stop flag
// but never interrupts a cycle in flight. Wait blocks until the scheduler is
// stopped and the in-flight callback, if any, has returned; callers close the
// data log only after Wait. Cancelling the Start context behaves like Stop.
//
// # Concurrency
//
// There is never more than one fetch in flight per instance. Loop runs on
// the caller's goroutine. Scheduler serializes callbacks because the next
// timer is armed only after the current cycle finishes.
//
// # Usage Example
//
//	loop, err := poll.NewLoop(poll.Options{
//	    Provider: p,
//	    Fetcher:  client,
//	    Console:  console,
//	    Observer: store,
//	    Metrics:  m,
//	})
//	if err != nil {
//	    return err
//	}
//	return loop.Run(ctx)
package poll
