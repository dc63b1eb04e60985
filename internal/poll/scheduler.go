package poll

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Scheduler runs cycles on timer callbacks for the interactive form. Stop
// is cooperative: a cycle already in flight finishes, nothing is scheduled
// after it.
type Scheduler struct {
	*Cycle

	mu      sync.Mutex
	ctx     context.Context
	timer   *time.Timer
	started bool
	stopped bool
	busy    bool
	done    chan struct{}
}

// NewScheduler builds a callback scheduler from opts.
func NewScheduler(opts Options) (*Scheduler, error) {
	c, err := NewCycle(opts)
	if err != nil {
		return nil, err
	}
	return &Scheduler{Cycle: c, done: make(chan struct{})}, nil
}

// Start schedules the first cycle immediately. Cancelling ctx has the same
// effect as Stop once the current cycle returns.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}
	if s.stopped {
		return errors.New("scheduler already stopped")
	}
	s.started = true
	s.ctx = ctx
	s.console.Info("Starting API Watchdog")
	s.timer = time.AfterFunc(0, s.tick)
	context.AfterFunc(ctx, s.Stop)
	return nil
}

// Stop prevents further cycles. It does not wait for an in-flight cycle.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	if !s.busy {
		s.finish()
	}
}

// Wait blocks until the scheduler has stopped and no cycle is running.
func (s *Scheduler) Wait() {
	<-s.done
}

// Running reports whether cycles are still being scheduled.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.stopped
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.ctx.Err() != nil {
		s.stopped = true
		s.finish()
		s.mu.Unlock()
		return
	}
	s.busy = true
	ctx := s.ctx
	s.mu.Unlock()

	s.runGuarded(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	if s.stopped || ctx.Err() != nil {
		s.stopped = true
		s.finish()
		return
	}
	s.setState(Sleeping)
	s.console.Infof("Sleeping for %s...", describe(s.interval))
	s.timer = time.AfterFunc(s.interval, s.tick)
}

func (s *Scheduler) runGuarded(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.console.Errorf("Error in API monitoring: %v", r)
		}
	}()
	_ = s.Cycle.Run(ctx)
}

// finish must be called with mu held, exactly once.
func (s *Scheduler) finish() {
	s.setState(Stopped)
	s.console.Info("API Watchdog stopped by user")
	close(s.done)
}
