// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/dyike/FinAgentGo/pkg/dataflows"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finagent"

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry *prometheus.Registry

	ActiveSessions prometheus.Gauge
	SessionsTotal  *prometheus.CounterVec
	FramesTotal    *prometheus.CounterVec
	ScrapeDuration prometheus.Histogram
	ScrapeErrors   *prometheus.CounterVec
	FetchTotal     *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	EngineReloads  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "active_sessions",
			Help:      "Live relay sessions",
		}),
		SessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "sessions_total",
			Help:      "Relay sessions by how they ended",
		}, []string{"outcome"}),
		FramesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "frames_total",
			Help:      "Frames relayed by direction and kind",
		}, []string{"direction", "kind"}),
		ScrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "duration_seconds",
			Help:      "Market movers scrape duration",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		ScrapeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "errors_total",
			Help:      "Market movers scrape failures by kind",
		}, []string{"kind"}),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quotes",
			Name:      "fetch_total",
			Help:      "Quote lookups by capability and result",
		}, []string{"capability", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"route", "status"}),
		EngineReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "reloads_total",
			Help:      "Engine rebuilds by notification topic",
		}, []string{"topic"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ActiveSessions,
		m.SessionsTotal,
		m.FramesTotal,
		m.ScrapeDuration,
		m.ScrapeErrors,
		m.FetchTotal,
		m.HTTPRequests,
		m.EngineReloads,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveScrape(d time.Duration, err error) {
	m.ScrapeDuration.Observe(d.Seconds())
	if err != nil {
		m.ScrapeErrors.WithLabelValues(dataflows.ErrorKind(err)).Inc()
	}
}

func (m *Metrics) ObserveFetch(kind string, err error) {
	result := "ok"
	if err != nil {
		result = dataflows.ErrorKind(err)
	}
	m.FetchTotal.WithLabelValues(kind, result).Inc()
}

// EngineNotice matches the runtime notifier signature.
func (m *Metrics) EngineNotice(topic, _ string) {
	m.EngineReloads.WithLabelValues(topic).Inc()
}

func (m *Metrics) SessionStarted() {
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionEnded(outcome string) {
	m.ActiveSessions.Dec()
	m.SessionsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Frame(direction, kind string) {
	m.FramesTotal.WithLabelValues(direction, kind).Inc()
}
