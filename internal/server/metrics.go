package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors of the server. It also counts
// import events, as a bookio.Observer.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ImportLinks     *prometheus.CounterVec
	ImportFailures  prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sbm_http_requests_total",
			Help: "Total HTTP requests served.",
		},
		[]string{"method", "route", "code"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sbm_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	links := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sbm_import_links_total",
			Help: "Links seen by the bookmark importer, by outcome.",
		},
		[]string{"outcome"},
	)
	failures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sbm_import_parse_failures_total",
			Help: "Bookmark documents that could not be parsed.",
		},
	)

	registry.MustRegister(requests, duration, links, failures)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: duration,
		ImportLinks:     links,
		ImportFailures:  failures,
	}
}

// Handler returns the handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveRequest records a served request.
func (m *Metrics) ObserveRequest(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) Skipped(int) {
	m.ImportLinks.WithLabelValues("skipped").Inc()
}

func (m *Metrics) Imported(string) {
	m.ImportLinks.WithLabelValues("imported").Inc()
}

func (m *Metrics) Failed(string, error) {
	m.ImportLinks.WithLabelValues("failed").Inc()
}

func (m *Metrics) ParseFailed(error) {
	m.ImportFailures.Inc()
}
