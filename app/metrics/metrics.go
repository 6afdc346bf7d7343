// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quillpost"

// Metrics groups every collector the application records into.
type Metrics struct {
	registry *prometheus.Registry

	// CommentSync counts synchronization passes by outcome.
	CommentSync *prometheus.CounterVec
	// Transitions counts successful moderation transitions by target status.
	Transitions *prometheus.CounterVec
	// AbsorbedErrors counts secondary-step failures that were logged and
	// swallowed, labelled by the step that failed.
	AbsorbedErrors *prometheus.CounterVec
	// HTTPRequests records request latency by route template, method and status.
	HTTPRequests *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry
// together with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CommentSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_sync_total",
			Help:      "Comment count synchronization passes by outcome.",
		}, []string{"outcome"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comment_transitions_total",
			Help:      "Comment moderation transitions by resulting status.",
		}, []string{"status"}),
		AbsorbedErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "absorbed_errors_total",
			Help:      "Best-effort steps that failed without failing the request.",
		}, []string{"step"}),
		HTTPRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	m.registry.MustRegister(
		m.CommentSync,
		m.Transitions,
		m.AbsorbedErrors,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
