package poll

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/five82/apiwatchdog/internal/fetch"
	"github.com/five82/apiwatchdog/internal/metrics"
	"github.com/five82/apiwatchdog/internal/provider"
)

// State is the position of a poll loop in its fetch, format, sleep cycle.
type State int32

const (
	Idle State = iota
	Fetching
	Formatting
	Sleeping
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Formatting:
		return "formatting"
	case Sleeping:
		return "sleeping"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Observer receives the outcome of every completed cycle. *state.Store
// satisfies it.
type Observer interface {
	Record(err error)
}

// Options configure a Cycle and the loops built on it.
type Options struct {
	Provider provider.Provider
	Fetcher  fetch.Fetcher
	// Console receives progress and failure records.
	Console  *zap.SugaredLogger
	Observer Observer
	Metrics  *metrics.Metrics
	// Interval overrides the endpoint's polling interval.
	Interval time.Duration
}

// Cycle performs one fetch followed by one format.
type Cycle struct {
	provider provider.Provider
	fetcher  fetch.Fetcher
	console  *zap.SugaredLogger
	observer Observer
	metrics  *metrics.Metrics
	interval time.Duration
	state    atomic.Int32
}

// NewCycle validates opts and builds a Cycle.
func NewCycle(opts Options) (*Cycle, error) {
	if opts.Provider == nil {
		return nil, errors.New("poll requires a provider")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("poll requires a fetcher")
	}
	c := &Cycle{
		provider: opts.Provider,
		fetcher:  opts.Fetcher,
		console:  opts.Console,
		observer: opts.Observer,
		metrics:  opts.Metrics,
		interval: opts.Interval,
	}
	if c.console == nil {
		c.console = zap.NewNop().Sugar()
	}
	if c.interval <= 0 {
		c.interval = time.Duration(opts.Provider.Endpoint().Interval) * time.Second
	}
	if c.interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %v", c.interval)
	}
	return c, nil
}

// State reports the current position in the cycle.
func (c *Cycle) State() State { return State(c.state.Load()) }

// Interval is the wait between cycles.
func (c *Cycle) Interval() time.Duration { return c.interval }

func (c *Cycle) setState(s State) { c.state.Store(int32(s)) }

// Run fetches the provider URL and formats the payload. Failures are logged
// and returned; a cancelled context returns ctx.Err() without logging.
func (c *Cycle) Run(ctx context.Context) error {
	label := c.provider.Kind().String()

	c.setState(Fetching)
	c.console.Info("Fetching API data...")
	payload, err := c.fetcher.Fetch(ctx, c.provider.URL())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.console.Errorf("Error fetching API data: %v", err)
		c.record(label, metrics.OutcomeFetchError, err)
		return fmt.Errorf("fetch: %w", err)
	}

	c.setState(Formatting)
	if err := c.provider.Format(payload); err != nil {
		c.console.Warnf("API data rejected: %v", err)
		c.record(label, metrics.OutcomeRejected, err)
		return fmt.Errorf("format: %w", err)
	}

	c.console.Info("API data fetched successfully")
	c.record(label, metrics.OutcomeOK, nil)
	return nil
}

func (c *Cycle) record(label, outcome string, err error) {
	c.metrics.Cycle(label, outcome, time.Now())
	if c.observer != nil {
		c.observer.Record(err)
	}
}
