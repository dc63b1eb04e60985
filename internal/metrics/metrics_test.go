package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordsAttemptsAndCycles(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Attempt("weather", true)
	m.Attempt("weather", false)
	m.Cycle("weather", OutcomeOK, time.Unix(1700000000, 0))
	m.Cycle("weather", OutcomeFetchError, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchAttempts.WithLabelValues("weather")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures.WithLabelValues("weather")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues("weather", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues("weather", OutcomeFetchError)))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastSuccess.WithLabelValues("weather")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Attempt("stock", true)
		m.Cycle("stock", OutcomeRejected, time.Now())
	})
}

func TestHandler_ServesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Attempt("stock", false)

	srv := httptest.NewServer(Handler(reg))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `apiwatchdog_fetch_attempts_total{provider="stock"} 1`)
}
