package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/five82/apiwatchdog/internal/config"
	"github.com/five82/apiwatchdog/internal/fetch"
	"github.com/five82/apiwatchdog/internal/logging"
	"github.com/five82/apiwatchdog/internal/metrics"
	"github.com/five82/apiwatchdog/internal/poll"
	"github.com/five82/apiwatchdog/internal/prefs"
	"github.com/five82/apiwatchdog/internal/provider"
	"github.com/five82/apiwatchdog/internal/state"
	"github.com/five82/apiwatchdog/internal/ui"
)

// Options configure the watchdog application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/apiwatchdog/prefs.toml
	// EnvFiles are loaded before reading API keys; empty loads ./.env.
	EnvFiles []string

	// Flag overrides. Zero values keep the config file's setting.
	Mirror      bool
	LogLevel    string
	MetricsAddr string

	// Console receives status output in command-line mode; defaults to stderr.
	Console io.Writer
	// HTTPClient replaces the fetcher's client.
	HTTPClient *http.Client
}

// Watch is one endpoint to poll, as entered on the command line or form.
type Watch struct {
	Kind       provider.Kind
	Query      string
	Interval   int
	BarMinutes int
	LogFile    string
}

// App is the composition root shared by the command line and the form.
type App struct {
	opts     Options
	cfg      config.Config
	console  *zap.SugaredLogger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// New loads .env and the settings file, applies flag overrides and builds
// the shared metrics registry.
func New(opts Options) (*App, error) {
	if err := config.LoadEnv(opts.EnvFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Mirror {
		cfg.Log.Mirror = true
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.MetricsAddr != "" {
		cfg.Metrics.Addr = opts.MetricsAddr
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}

	registry := prometheus.NewRegistry()
	return &App{
		opts:     opts,
		cfg:      cfg,
		console:  logging.Console(opts.Console, logging.ParseLevel(cfg.Log.Level)),
		registry: registry,
		metrics:  metrics.New(registry),
	}, nil
}

// Config returns the effective settings.
func (a *App) Config() config.Config { return a.cfg }

// Metrics returns the collectors shared by every session.
func (a *App) Metrics() *metrics.Metrics { return a.metrics }

// RunCLI polls w in the foreground until ctx is cancelled. Invalid input is
// reported before anything is written, wrapped in provider.ErrInvalidEndpoint.
func (a *App) RunCLI(ctx context.Context, w Watch) (err error) {
	stopMetrics, err := a.serveMetrics(ctx)
	if err != nil {
		return err
	}
	defer stopMetrics()

	sess, err := a.open(w, a.console)
	if err != nil {
		return err
	}
	defer func() { err = firstErr(err, sess.close()) }()

	a.console.Infof("Session %s: watching %s %q every %ds, logging to %s",
		sess.id, sess.ep.Kind, sess.ep.Query, sess.ep.Interval, sess.logFile)

	loop, err := poll.NewLoop(sess.pollOptions())
	if err != nil {
		return err
	}
	err = loop.Run(ctx)
	sess.store.SetRunning(false)
	return err
}

// RunForm opens the interactive form, optionally pre-filled, and blocks until
// the user quits. A session started from the form is stopped and drained
// before RunForm returns.
func (a *App) RunForm(ctx context.Context, initial *Watch) error {
	stopMetrics, err := a.serveMetrics(ctx)
	if err != nil {
		return err
	}
	defer stopMetrics()

	var active *FormSession
	opts := a.formOptions(ctx, initial, func(s *FormSession) { active = s })

	err = ui.Run(ctx, opts)
	if active != nil {
		active.Stop()
		active.Wait()
		err = firstErr(err, active.Close())
	}
	return err
}

// formOptions wires the form to StartSession. onStart receives every session
// the form starts.
func (a *App) formOptions(ctx context.Context, initial *Watch, onStart func(*FormSession)) ui.Options {
	opts := ui.Options{
		Start: func(req ui.Request) (ui.Session, error) {
			s, err := a.StartSession(ctx, Watch{
				Kind:       req.Kind,
				Query:      req.Query,
				Interval:   req.Interval,
				BarMinutes: req.BarMinutes,
				LogFile:    req.LogFile,
			})
			if err != nil {
				return nil, err
			}
			onStart(s)
			return s, nil
		},
		Prefs:     prefs.Load(a.opts.PrefsPath),
		PrefsPath: a.opts.PrefsPath,
	}
	if initial != nil {
		opts.Initial = &ui.Request{
			Kind:       initial.Kind,
			Interval:   initial.Interval,
			Query:      initial.Query,
			LogFile:    initial.LogFile,
			BarMinutes: initial.BarMinutes,
		}
	}
	return opts
}

// StartSession validates w and starts the scheduled-callback loop. Status
// records go to the session's log file so they can be shown in the form.
func (a *App) StartSession(ctx context.Context, w Watch) (*FormSession, error) {
	sess, err := a.open(w, nil)
	if err != nil {
		return nil, err
	}
	sched, err := poll.NewScheduler(sess.pollOptions())
	if err != nil {
		sess.close()
		return nil, err
	}
	if err := sched.Start(ctx); err != nil {
		sess.close()
		return nil, err
	}
	return &FormSession{session: sess, sched: sched}, nil
}

// open validates the endpoint, opens the data log and builds the fetcher and
// provider. A nil console sends status records to the data log.
func (a *App) open(w Watch, console *zap.SugaredLogger) (*session, error) {
	ep := a.cfg.Endpoint(provider.Endpoint{
		Kind:       w.Kind,
		Query:      w.Query,
		Interval:   w.Interval,
		BarMinutes: w.BarMinutes,
		LogFile:    w.LogFile,
	})
	if ep.Kind == provider.KindStock && ep.BarMinutes == 0 {
		ep.BarMinutes = provider.DefaultBarMinutes
	}
	if err := ep.Validate(); err != nil {
		return nil, err
	}

	logOpts := a.cfg.LogOptions(ep.LogFile)
	logOpts.Console = a.opts.Console
	if console == nil {
		// The form owns the terminal.
		logOpts.Mirror = false
	}
	data, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, err
	}
	if console == nil {
		console = data
	}

	p, err := provider.New(ep, data)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	fetchOpts := a.cfg.FetchOptions()
	fetchOpts.HTTPClient = a.opts.HTTPClient
	fetchOpts.Logger = data
	fetchOpts.Metrics = a.metrics
	fetchOpts.Label = ep.Kind.String()

	store := &state.Store{}
	id := uuid.NewString()
	store.Begin(id, ep.Kind.String(), ep.Query)

	return &session{
		id:       id,
		ep:       ep,
		logFile:  logOpts.Path,
		provider: p,
		fetcher:  fetch.New(fetchOpts),
		console:  console,
		store:    store,
		metrics:  a.metrics,
		closeLog: closeLog,
	}, nil
}

// serveMetrics starts the Prometheus listener when an address is configured.
// The returned function shuts it down.
func (a *App) serveMetrics(ctx context.Context) (func(), error) {
	addr := a.cfg.Metrics.Addr
	if addr == "" {
		return func() {}, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for metrics on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(a.registry))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.console.Errorf("metrics server: %v", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
