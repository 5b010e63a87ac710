// Package metrics holds the Prometheus collectors the server exports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the collectors registered for one server.
type Metrics struct {
	Registry        *prometheus.Registry
	AuthAttempts    *prometheus.CounterVec
	GateRejections  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "auth_attempts_total",
			Help:      "Signup and login attempts by outcome.",
		}, []string{"operation", "outcome"}),
		GateRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "auth_gate_rejections_total",
			Help:      "Requests rejected by the auth gate by cause.",
		}, []string{"reason"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campus",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.Registry.MustRegister(
		m.AuthAttempts,
		m.GateRejections,
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// AuthAttempt counts one signup/login outcome. Safe on a nil receiver.
func (m *Metrics) AuthAttempt(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(operation, outcome).Inc()
}

// GateRejected counts one auth gate rejection. Safe on a nil receiver.
func (m *Metrics) GateRejected(reason string) {
	if m == nil {
		return
	}
	m.GateRejections.WithLabelValues(reason).Inc()
}
