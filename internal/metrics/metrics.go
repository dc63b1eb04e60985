package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cycle outcomes recorded by the poll loop.
const (
	OutcomeOK         = "ok"
	OutcomeFetchError = "fetch_error"
	OutcomeRejected   = "rejected"
)

// Metrics groups the watchdog collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	FetchAttempts *prometheus.CounterVec
	FetchFailures *prometheus.CounterVec
	Cycles        *prometheus.CounterVec
	LastSuccess   *prometheus.GaugeVec
}

// New registers the collectors on reg. A nil reg uses a private registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		FetchAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apiwatchdog_fetch_attempts_total",
				Help: "HTTP GET attempts issued by the fetcher",
			},
			[]string{"provider"},
		),
		FetchFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apiwatchdog_fetch_failures_total",
				Help: "HTTP GET attempts that failed",
			},
			[]string{"provider"},
		),
		Cycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apiwatchdog_cycles_total",
				Help: "Completed poll cycles by outcome",
			},
			[]string{"provider", "outcome"},
		),
		LastSuccess: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "apiwatchdog_last_success_timestamp_seconds",
				Help: "Unix time of the last successfully formatted payload",
			},
			[]string{"provider"},
		),
	}
}

// Attempt records one fetch attempt and whether it failed.
func (m *Metrics) Attempt(provider string, failed bool) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(provider).Inc()
	if failed {
		m.FetchFailures.WithLabelValues(provider).Inc()
	}
}

// Cycle records the outcome of one poll cycle.
func (m *Metrics) Cycle(provider, outcome string, at time.Time) {
	if m == nil {
		return
	}
	m.Cycles.WithLabelValues(provider, outcome).Inc()
	if outcome == OutcomeOK {
		m.LastSuccess.WithLabelValues(provider).Set(float64(at.Unix()))
	}
}

// Handler serves the collectors registered on g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
