// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendify_http_requests_total",
		Help: "Handled HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	// HTTPDuration tracks request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "attendify_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// StoreFallbacks counts operations retried on the local store after the
	// primary store failed.
	StoreFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendify_store_fallbacks_total",
		Help: "Store operations served by the local fallback",
	}, []string{"op"})

	// SnapshotDuration tracks how long loading subjects, timetable and
	// attendance for one owner takes.
	SnapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "attendify_snapshot_load_duration_seconds",
		Help:    "Owner snapshot load duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
	})

	// DashboardCache counts dashboard cache lookups by result (hit, miss).
	DashboardCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendify_dashboard_cache_total",
		Help: "Dashboard cache lookups by result",
	}, []string{"result"})

	// WorkerMessages counts queue messages handled by the worker.
	WorkerMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendify_worker_messages_total",
		Help: "Queue messages handled by the worker by type and outcome",
	}, []string{"type", "outcome"})

	// ClassPrompts counts in-progress class prompts raised by the worker.
	ClassPrompts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendify_class_prompts_total",
		Help: "In-progress class prompts stored for owners",
	})
)
