package poll

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/apiwatchdog/internal/fetch"
	"github.com/five82/apiwatchdog/internal/metrics"
	"github.com/five82/apiwatchdog/internal/provider"
	"github.com/five82/apiwatchdog/internal/state"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (fetch.Payload, error) {
	args := m.Called(ctx, url)
	payload, _ := args.Get(0).(fetch.Payload)
	return payload, args.Error(1)
}

type fakeProvider struct {
	format  func(fetch.Payload) error
	formats atomic.Int32
}

func (p *fakeProvider) Kind() provider.Kind { return provider.KindWeather }

func (p *fakeProvider) Endpoint() provider.Endpoint {
	return provider.Endpoint{Kind: provider.KindWeather, Query: "London", Interval: 5}
}

func (p *fakeProvider) URL() string { return "http://example.test/weather" }

func (p *fakeProvider) Format(payload fetch.Payload) error {
	p.formats.Add(1)
	if p.format != nil {
		return p.format(payload)
	}
	return nil
}

func observedConsole() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewCycle_RequiresProviderAndFetcher(t *testing.T) {
	_, err := NewCycle(Options{Fetcher: &mockFetcher{}})
	assert.Error(t, err)
	_, err = NewCycle(Options{Provider: &fakeProvider{}})
	assert.Error(t, err)
}

func TestNewCycle_IntervalFromEndpoint(t *testing.T) {
	c, err := NewCycle(Options{Provider: &fakeProvider{}, Fetcher: &mockFetcher{}})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.Interval())
	assert.Equal(t, Idle, c.State())
}

func TestCycle_RunSuccess(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, "http://example.test/weather").Return(fetch.Payload{"ok": true}, nil).Once()
	p := &fakeProvider{}
	console, logs := observedConsole()
	store := &state.Store{}
	m := metrics.New(nil)

	c, err := NewCycle(Options{Provider: p, Fetcher: f, Console: console, Observer: store, Metrics: m})
	require.NoError(t, err)

	require.NoError(t, c.Run(context.Background()))
	f.AssertExpectations(t)
	assert.Equal(t, int32(1), p.formats.Load())
	assert.Equal(t, Formatting, c.State())
	assert.Equal(t, 1, logs.FilterMessage("Fetching API data...").Len())
	assert.Equal(t, 1, logs.FilterMessage("API data fetched successfully").Len())
	assert.Equal(t, 1, store.Snapshot().Cycles)
	assert.NoError(t, store.Snapshot().LastError)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues("weather", metrics.OutcomeOK)))
}

func TestCycle_FetchErrorSkipsFormat(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	p := &fakeProvider{}
	console, logs := observedConsole()
	store := &state.Store{}
	m := metrics.New(nil)

	c, err := NewCycle(Options{Provider: p, Fetcher: f, Console: console, Observer: store, Metrics: m})
	require.NoError(t, err)

	err = c.Run(context.Background())
	require.Error(t, err)
	assert.Zero(t, p.formats.Load())
	entries := logs.FilterMessageSnippet("Error fetching API data").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, 1, store.Snapshot().ConsecutiveFailures)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues("weather", metrics.OutcomeFetchError)))
}

func TestCycle_FormatRejection(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Return(fetch.Payload{}, nil)
	p := &fakeProvider{format: func(fetch.Payload) error { return provider.ErrInvalidPayload }}
	console, logs := observedConsole()
	m := metrics.New(nil)

	c, err := NewCycle(Options{Provider: p, Fetcher: f, Console: console, Metrics: m})
	require.NoError(t, err)

	err = c.Run(context.Background())
	assert.ErrorIs(t, err, provider.ErrInvalidPayload)
	assert.Equal(t, 1, logs.FilterMessageSnippet("API data rejected").Len())
	assert.Zero(t, logs.FilterMessage("API data fetched successfully").Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues("weather", metrics.OutcomeRejected)))
}

func TestCycle_CancelledFetchIsNotRecorded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Return(nil, context.Canceled)
	console, logs := observedConsole()
	store := &state.Store{}

	c, err := NewCycle(Options{Provider: &fakeProvider{}, Fetcher: f, Console: console, Observer: store})
	require.NoError(t, err)

	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
	assert.Zero(t, logs.FilterMessageSnippet("Error fetching").Len())
	assert.Zero(t, store.Snapshot().Cycles)
}

func TestLoop_ContinuesAfterFetchFailure(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("exhausted")).Once()
	f.On("Fetch", mock.Anything, mock.Anything).Return(fetch.Payload{"ok": true}, nil)
	p := &fakeProvider{}
	console, logs := observedConsole()

	l, err := NewLoop(Options{Provider: p, Fetcher: f, Console: console, Interval: time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	waitFor(t, func() bool { return p.formats.Load() >= 2 })
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, 1, logs.FilterMessage("Starting API Watchdog").Len())
	assert.Equal(t, 1, logs.FilterMessageSnippet("Error fetching API data").Len())
	assert.GreaterOrEqual(t, logs.FilterMessageSnippet("Sleeping for").Len(), 2)
	assert.Equal(t, Stopped, l.State())
}

func TestLoop_CancelStopsOnceWithoutError(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Return(fetch.Payload{}, nil)
	console, logs := observedConsole()

	l, err := NewLoop(Options{Provider: &fakeProvider{}, Fetcher: f, Console: console, Interval: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	waitFor(t, func() bool { return l.State() == Sleeping })
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	assert.Equal(t, Stopped, l.State())
	assert.Equal(t, 1, logs.FilterMessage("API Watchdog stopped by user").Len())
	assert.Equal(t, 1, logs.FilterMessage("Sleeping for 3600 seconds...").Len())
}

func TestLoop_InterruptSignal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("interrupt cannot be sent to self on windows")
	}
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Return(fetch.Payload{}, nil)
	console, logs := observedConsole()

	l, err := NewLoop(Options{Provider: &fakeProvider{}, Fetcher: f, Console: console, Interval: time.Hour})
	require.NoError(t, err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	waitFor(t, func() bool { return l.State() == Sleeping })
	self, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, self.Signal(os.Interrupt))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after interrupt")
	}
	assert.Equal(t, 1, logs.FilterMessage("API Watchdog stopped by user").Len())
}

func TestLoop_PanicStopsWithError(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Return(fetch.Payload{}, nil)
	p := &fakeProvider{format: func(fetch.Payload) error { panic("formatter exploded") }}
	console, logs := observedConsole()

	l, err := NewLoop(Options{Provider: p, Fetcher: f, Console: console, Interval: time.Millisecond})
	require.NoError(t, err)

	err = l.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "formatter exploded")
	assert.Equal(t, Stopped, l.State())
	assert.Equal(t, 1, logs.FilterMessageSnippet("API Watchdog stopped due to error: formatter exploded").Len())
	assert.Zero(t, logs.FilterMessage("API Watchdog stopped by user").Len())
}

func TestScheduler_RunsUntilStopped(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Return(fetch.Payload{}, nil)
	p := &fakeProvider{}
	console, logs := observedConsole()

	s, err := NewScheduler(Options{Provider: p, Fetcher: f, Console: console, Interval: time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))
	assert.True(t, s.Running())

	waitFor(t, func() bool { return p.formats.Load() >= 3 })
	s.Stop()
	s.Wait()

	n := p.formats.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, p.formats.Load(), "no cycle may run after Stop returns and Wait completes")
	assert.False(t, s.Running())
	assert.Equal(t, Stopped, s.State())
	assert.Equal(t, 1, logs.FilterMessage("API Watchdog stopped by user").Len())
}

func TestScheduler_StopDuringFetchLetsItFinish(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var once sync.Once
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		once.Do(func() { close(entered) })
		<-release
	}).Return(fetch.Payload{}, nil)
	p := &fakeProvider{}

	s, err := NewScheduler(Options{Provider: p, Fetcher: f, Interval: time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	<-entered
	s.Stop()
	assert.Equal(t, Fetching, s.State())
	close(release)
	s.Wait()

	assert.Equal(t, int32(1), p.formats.Load())
	assert.Equal(t, Stopped, s.State())
	f.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestScheduler_PanicKeepsScheduling(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Return(fetch.Payload{}, nil)
	var calls atomic.Int32
	p := &fakeProvider{format: func(fetch.Payload) error {
		if calls.Add(1) == 1 {
			panic("bad payload")
		}
		return nil
	}}
	console, logs := observedConsole()

	s, err := NewScheduler(Options{Provider: p, Fetcher: f, Console: console, Interval: time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))

	waitFor(t, func() bool { return calls.Load() >= 2 })
	s.Stop()
	s.Wait()

	assert.Equal(t, 1, logs.FilterMessage("Error in API monitoring: bad payload").Len())
}

func TestScheduler_ContextCancelStops(t *testing.T) {
	f := &mockFetcher{}
	f.On("Fetch", mock.Anything, mock.Anything).Return(fetch.Payload{}, nil)
	p := &fakeProvider{}

	s, err := NewScheduler(Options{Provider: p, Fetcher: f, Interval: time.Hour})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	waitFor(t, func() bool { return s.State() == Sleeping })
	cancel()

	done := make(chan struct{})
	go func() { s.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
	assert.Equal(t, Stopped, s.State())
}

func TestScheduler_StartAfterStop(t *testing.T) {
	s, err := NewScheduler(Options{Provider: &fakeProvider{}, Fetcher: &mockFetcher{}})
	require.NoError(t, err)
	s.Stop()
	s.Wait()
	assert.Error(t, s.Start(context.Background()))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "sleeping", Sleeping.String())
	assert.Equal(t, "state(42)", State(42).String())
}
