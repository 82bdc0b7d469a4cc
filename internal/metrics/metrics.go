package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for one process.
//
// All metrics are prefixed with "refl_":
//   - refl_entries_logged_total{log_type}
//   - refl_summaries_sent_total{window,outcome}
//   - refl_sync_total{outcome}
//   - refl_http_request_duration_seconds{route,status}
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	EntriesLogged   *prometheus.CounterVec
	SummariesSent   *prometheus.CounterVec
	SyncResults     *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates a private registry with the process and Go collectors plus the refl metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		EntriesLogged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refl_entries_logged_total",
				Help: "Total number of entries logged, by category",
			},
			[]string{"log_type"},
		),
		SummariesSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refl_summaries_sent_total",
				Help: "Total number of scheduled summaries, by window and outcome",
			},
			[]string{"window", "outcome"}, // outcome: "success" or "error"
		),
		SyncResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refl_sync_total",
				Help: "Total number of entry mirror attempts, by outcome",
			},
			[]string{"outcome"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "refl_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
			},
			[]string{"route", "status"},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordEntry counts a logged entry.
func (m *Metrics) RecordEntry(logType string) {
	if m == nil {
		return
	}
	m.EntriesLogged.WithLabelValues(logType).Inc()
}

// RecordSummary counts a summary notification attempt.
func (m *Metrics) RecordSummary(window string, err error) {
	if m == nil {
		return
	}
	m.SummariesSent.WithLabelValues(window, outcome(err)).Inc()
}

// RecordSync counts a mirror attempt.
func (m *Metrics) RecordSync(err error) {
	if m == nil {
		return
	}
	m.SyncResults.WithLabelValues(outcome(err)).Inc()
}

// ObserveRequest records the latency of a finished HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
