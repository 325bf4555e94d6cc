package metrics

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dyike/FinAgentGo/pkg/dataflows"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveScrapeCountsErrorsByKind(t *testing.T) {
	m := New()
	m.ObserveScrape(120*time.Millisecond, nil)
	m.ObserveScrape(time.Second, fmt.Errorf("%w: status 503", dataflows.ErrNetworkFailure))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScrapeErrors.WithLabelValues("network_failure")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ScrapeErrors.WithLabelValues("structure_not_found")))
}

func TestSessionGauge(t *testing.T) {
	m := New()
	m.SessionStarted()
	m.SessionStarted()
	m.SessionEnded("client_closed")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsTotal.WithLabelValues("client_closed")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveFetch("commodity", dataflows.ErrNoData)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `finagent_quotes_fetch_total{capability="commodity",result="no_data"} 1`)
}

func TestEngineNoticeCountsTopics(t *testing.T) {
	m := New()
	m.EngineNotice("engine.reloaded", `{"version":1}`)
	m.EngineNotice("engine.reloaded", `{"version":2}`)
	m.EngineNotice("engine.reload_failed", `{"error":"boom"}`)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EngineReloads.WithLabelValues("engine.reloaded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EngineReloads.WithLabelValues("engine.reload_failed")))
}
