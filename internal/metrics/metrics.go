// Package metrics exposes the Prometheus collectors used across the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "posterforge"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "route"},
	)

	// Upstream provider calls (openai, replicate).
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "calls_total",
			Help:      "Total number of upstream API calls",
		},
		[]string{"provider", "operation", "status"},
	)

	UpstreamCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "Upstream API call duration in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "operation"},
	)

	SloganParseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "slogan",
			Name:      "parse_total",
			Help:      "Slogan reply parse outcomes",
		},
		[]string{"stage", "status"},
	)

	PredictionWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "wait_duration_seconds",
			Help:      "Time spent waiting for a prediction to settle",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 90, 120, 180},
		},
		[]string{"state"},
	)

	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "total",
			Help:      "Render outcomes by mode",
		},
		[]string{"mode", "state"},
	)
)

// ObserveUpstream records one upstream call.
func ObserveUpstream(provider, operation string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	UpstreamCallsTotal.WithLabelValues(provider, operation, status).Inc()
	UpstreamCallDuration.WithLabelValues(provider, operation).Observe(time.Since(started).Seconds())
}
