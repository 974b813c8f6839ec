package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds prometheus collectors for the HTTP layer.
type Metrics struct {
	registry        *prometheus.Registry
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorTotal      *prometheus.CounterVec
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dataroom",
			Name:      "http_requests_total",
			Help:      "HTTP requests by path, method and status.",
			ConstLabels: prometheus.Labels{
				"service": serviceName,
			},
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dataroom",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dataroom",
			Name:      "http_errors_total",
			Help:      "Request failures by domain error code.",
		}, []string{"path", "method", "code"}),
	}

	registry.MustRegister(m.requestTotal, m.requestDuration, m.errorTotal)
	return m
}

// Registry exposes the underlying registry for the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// RecordRequest observes a completed request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts a request failure by error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(path, method, code).Inc()
}
