// Package metrics declares the Prometheus collectors exported by the player.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaplayer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediaplayer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Library metrics
var (
	LibraryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaplayer_library_operations_total",
			Help: "Total number of media library operations applied",
		},
		[]string{"operation"},
	)

	LibraryItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediaplayer_library_current_playlist_items",
			Help: "Number of items in the current playlist",
		},
	)

	RemoteSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaplayer_remote_sync_total",
			Help: "Total number of remote store calls by operation and outcome",
		},
		[]string{"operation", "status"},
	)

	RemoteSyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediaplayer_remote_sync_duration_seconds",
			Help:    "Remote store call duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)
)

// ObserveRemote records the outcome of a remote store call.
func ObserveRemote(operation string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RemoteSyncTotal.WithLabelValues(operation, status).Inc()
	RemoteSyncDuration.WithLabelValues(operation).Observe(seconds)
}
