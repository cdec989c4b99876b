// Package metrics holds the Prometheus collectors of the account service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics groups the service collectors. A nil *Metrics is valid and records nothing,
// so components can be constructed without a registry in tests.
type Metrics struct {
	registry           *prometheus.Registry
	AuthOperations     *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestSeconds *prometheus.HistogramVec
}

// New creates a private registry with Go and process collectors plus the service metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		AuthOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facial_auth_operations_total",
				Help: "Total number of account operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facial_notifications_total",
				Help: "Total number of notification deliveries by kind and result",
			},
			[]string{"kind", "result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "facial_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "facial_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(m.AuthOperations, m.Notifications, m.HTTPRequests, m.HTTPRequestSeconds)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the private registry (used by tests and extra collectors).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordAuthOperation counts an account operation outcome.
func (m *Metrics) RecordAuthOperation(operation, result string) {
	if m == nil {
		return
	}
	m.AuthOperations.WithLabelValues(operation, result).Inc()
}

// RecordNotification counts a notification delivery outcome.
func (m *Metrics) RecordNotification(kind, result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind, result).Inc()
}

// RecordHTTPRequest records count and latency of a served request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
