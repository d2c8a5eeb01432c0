// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// bootstrap for the tonedown service.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Moderation metrics
	upstreamCallsTotal *prometheus.CounterVec

	// Rewrite metrics
	rewritesTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics instance with its own registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tonedown_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tonedown_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		upstreamCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tonedown_upstream_calls_total",
				Help: "Total number of scoring service calls by outcome",
			},
			[]string{"outcome"},
		),

		rewritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tonedown_rewrites_total",
				Help: "Total number of successful rewrites by tone",
			},
			[]string{"tone"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.upstreamCallsTotal,
		m.rewritesTotal,
	)

	return m
}

// RecordHTTPRequest records a completed request
func (m *Metrics) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordUpstreamCall records a scoring service call outcome ("ok",
// "unavailable", "bad_format", "failed")
func (m *Metrics) RecordUpstreamCall(outcome string) {
	m.upstreamCallsTotal.WithLabelValues(outcome).Inc()
}

// RecordRewrite records a successful rewrite
func (m *Metrics) RecordRewrite(tone string) {
	m.rewritesTotal.WithLabelValues(tone).Inc()
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
