// Package metrics exposes Prometheus collectors for the HTTP layer and the
// task store.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store write outcomes.
const (
	WriteWritten   = "written"
	WriteUnchanged = "unchanged"
	WriteInvalid   = "invalid"
	WriteFailed    = "failed"
)

// Store load sources.
const (
	LoadCurrent = "current"
	LoadLegacy  = "legacy"
	LoadMissing = "missing"
	LoadFailed  = "failed"
)

// Metrics holds the application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	storeWrites     *prometheus.CounterVec
	storeLoads      *prometheus.CounterVec
	queueDepth      prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		storeWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskstore_writes_total",
				Help: "Store write requests by outcome",
			},
			[]string{"outcome"},
		),
		storeLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskstore_loads_total",
				Help: "Store loads by on-disk source format",
			},
			[]string{"source"},
		),
		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "taskstore_write_queue_depth",
				Help: "Writes waiting for the store writer",
			},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.storeWrites,
		m.storeLoads,
		m.queueDepth,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// StoreWrite counts a write by outcome
func (m *Metrics) StoreWrite(outcome string) {
	if m == nil {
		return
	}
	m.storeWrites.WithLabelValues(outcome).Inc()
}

// StoreLoad counts a load by source format
func (m *Metrics) StoreLoad(source string) {
	if m == nil {
		return
	}
	m.storeLoads.WithLabelValues(source).Inc()
}

// SetQueueDepth reports the number of pending writes
func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
