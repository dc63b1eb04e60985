package app

import (
	"go.uber.org/zap"

	"github.com/five82/apiwatchdog/internal/fetch"
	"github.com/five82/apiwatchdog/internal/metrics"
	"github.com/five82/apiwatchdog/internal/poll"
	"github.com/five82/apiwatchdog/internal/provider"
	"github.com/five82/apiwatchdog/internal/state"
)

// session is everything one watched endpoint needs.
type session struct {
	id       string
	ep       provider.Endpoint
	logFile  string
	provider provider.Provider
	fetcher  fetch.Fetcher
	console  *zap.SugaredLogger
	store    *state.Store
	metrics  *metrics.Metrics
	closeLog func() error
}

func (s *session) pollOptions() poll.Options {
	return poll.Options{
		Provider: s.provider,
		Fetcher:  s.fetcher,
		Console:  s.console,
		Observer: s.store,
		Metrics:  s.metrics,
	}
}

// firstErr keeps err and falls back to the close error.
func firstErr(err, closeErr error) error {
	if err != nil {
		return err
	}
	return closeErr
}

func (s *session) close() error {
	if s.closeLog == nil {
		return nil
	}
	err := s.closeLog()
	s.closeLog = nil
	return err
}

// FormSession is a watch running on the scheduled-callback loop, as started
// from the form.
type FormSession struct {
	*session
	sched *poll.Scheduler
}

// ID is the session's unique identifier.
func (s *FormSession) ID() string { return s.id }

func (s *FormSession) Snapshot() state.Snapshot { return s.store.Snapshot() }

func (s *FormSession) State() poll.State { return s.sched.State() }

func (s *FormSession) LogFile() string { return s.logFile }

// Stop asks the scheduler to stop; the cycle in flight finishes.
func (s *FormSession) Stop() {
	s.sched.Stop()
	s.store.SetRunning(false)
}

// Wait blocks until the scheduler has fully stopped.
func (s *FormSession) Wait() { s.sched.Wait() }

// Close releases the log file. Call after Wait.
func (s *FormSession) Close() error { return s.close() }
