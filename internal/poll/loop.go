package poll

import (
	"context"
	"fmt"
	"time"
)

// Loop is the blocking poll loop used from the command line.
type Loop struct {
	*Cycle
}

// NewLoop builds a blocking loop from opts.
func NewLoop(opts Options) (*Loop, error) {
	c, err := NewCycle(opts)
	if err != nil {
		return nil, err
	}
	return &Loop{Cycle: c}, nil
}

// Run cycles until ctx is cancelled, sleeping the interval between cycles.
// Cancellation is a clean stop and returns nil. A panic inside a cycle stops
// the loop and is returned as an error.
func (l *Loop) Run(ctx context.Context) (err error) {
	l.console.Info("Starting API Watchdog")

	defer func() {
		if r := recover(); r != nil {
			l.console.Errorf("API Watchdog stopped due to error: %v", r)
			l.setState(Stopped)
			err = fmt.Errorf("poll loop: %v", r)
		}
	}()

	timer := time.NewTimer(l.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return l.stopByUser()
		}

		_ = l.Cycle.Run(ctx)
		if ctx.Err() != nil {
			return l.stopByUser()
		}

		l.setState(Sleeping)
		l.console.Infof("Sleeping for %s...", describe(l.interval))
		timer.Reset(l.interval)
		select {
		case <-ctx.Done():
			return l.stopByUser()
		case <-timer.C:
		}
	}
}

func (l *Loop) stopByUser() error {
	l.setState(Stopped)
	l.console.Info("API Watchdog stopped by user")
	return nil
}

func describe(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%d seconds", int64(d/time.Second))
	}
	return d.String()
}
