// Package metrics exposes Prometheus collectors for catalog sync and the
// HTTP API.
package metrics

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sync results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics holds every collector the catalog records into.
type Metrics struct {
	registry *prometheus.Registry

	syncRunsTotal     *prometheus.CounterVec
	syncSystemsTotal  *prometheus.CounterVec
	syncDuration      prometheus.Histogram
	catalogSystems    prometheus.Gauge
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() (*Metrics, error) {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the collectors on registry.
func NewWithRegistry(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.syncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starsys_sync_runs_total",
			Help: "Total number of archive sync runs",
		},
		[]string{"result"},
	)
	m.syncSystemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starsys_sync_systems_total",
			Help: "Systems processed by sync and import, by outcome",
		},
		[]string{"outcome"}, // saved, failed
	)
	m.syncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "starsys_sync_duration_seconds",
			Help:    "Wall time of a full archive sync",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
	m.catalogSystems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "starsys_catalog_systems",
			Help: "Number of star systems currently stored",
		},
	)
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starsys_http_requests_total",
			Help: "HTTP requests served, by route pattern and status code",
		},
		[]string{"route", "code"},
	)
	m.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starsys_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.syncRunsTotal.Describe(ch)
	m.syncSystemsTotal.Describe(ch)
	m.syncDuration.Describe(ch)
	m.catalogSystems.Describe(ch)
	m.httpRequestsTotal.Describe(ch)
	m.httpDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.syncRunsTotal.Collect(ch)
	m.syncSystemsTotal.Collect(ch)
	m.syncDuration.Collect(ch)
	m.catalogSystems.Collect(ch)
	m.httpRequestsTotal.Collect(ch)
	m.httpDuration.Collect(ch)
}

// RecordSync records one finished sync run. saved and failed are only
// counted for successful runs.
func (m *Metrics) RecordSync(result string, saved, failed int, elapsed time.Duration) {
	m.syncRunsTotal.WithLabelValues(result).Inc()
	m.syncDuration.Observe(elapsed.Seconds())
	if result == ResultSuccess {
		m.RecordBatch(saved, failed)
	}
}

// RecordBatch counts systems saved or failed by any batch write.
func (m *Metrics) RecordBatch(saved, failed int) {
	m.syncSystemsTotal.WithLabelValues("saved").Add(float64(saved))
	m.syncSystemsTotal.WithLabelValues("failed").Add(float64(failed))
}

// SetCatalogSize sets the stored-systems gauge.
func (m *Metrics) SetCatalogSize(n int) {
	m.catalogSystems.Set(float64(n))
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, code int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
