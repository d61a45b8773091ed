// Package metrics holds the Prometheus collectors for the record store and
// its listeners.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a set of collectors registered on one registry.
type Metrics struct {
	Writes        *prometheus.CounterVec
	WriteFailures *prometheus.CounterVec
	Notifications prometheus.Counter
	Reloads       prometheus.Counter
	Published     *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	RateLimited  prometheus.Counter
	Suspicious   prometheus.Counter
	Mirrors      *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the collectors on a fresh registry, so tests and several
// stores in one process never collide on registration.
func New() *Metrics {
	m := &Metrics{
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prestes",
			Name:      "store_writes_total",
			Help:      "Durable writes attempted per collection.",
		}, []string{"collection"}),
		WriteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prestes",
			Name:      "store_write_failures_total",
			Help:      "Writes that did not reach durable storage.",
		}, []string{"collection"}),
		Notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prestes",
			Name:      "change_notifications_total",
			Help:      "Change signals emitted by the record store.",
		}),
		Reloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prestes",
			Name:      "binder_reloads_total",
			Help:      "Snapshot reloads performed by view-model binders.",
		}),
		Published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prestes",
			Name:      "bridge_messages_total",
			Help:      "Change messages handled by the AMQP bridge.",
		}, []string{"direction", "result"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prestes",
			Name:      "http_requests_total",
			Help:      "HTTP requests served by method and status code.",
		}, []string{"method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "prestes",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prestes",
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		Suspicious: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "prestes",
			Name:      "http_suspicious_requests_total",
			Help:      "Requests matching a known attack pattern.",
		}),
		Mirrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "prestes",
			Name:      "summary_mirrors_total",
			Help:      "Summary writes to the external sheet.",
		}, []string{"result"}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.Writes, m.WriteFailures, m.Notifications, m.Reloads, m.Published,
		m.HTTPRequests, m.HTTPDuration, m.RateLimited, m.Suspicious, m.Mirrors,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
