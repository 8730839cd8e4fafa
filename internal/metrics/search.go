package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search and backend Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "search_requests_total",
			Help:      "Total number of search and autocomplete operations",
		},
		[]string{"mode", "status"}, // status: "ok" / "error"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docsearch",
			Name:      "search_duration_seconds",
			Help:      "Search and autocomplete duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docsearch",
			Name:      "backend_requests_total",
			Help:      "Total number of registration requests to the orchestrating backend",
		},
		[]string{"op", "status"},
	)
)

var registerOnce sync.Once

// Register adds the HTTP, search and backend metrics to the default registry.
// Called explicitly from main (no init()); repeated calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpInFlight,
			SearchRequestsTotal,
			SearchDuration,
			BackendRequestsTotal,
		)
	})
}
