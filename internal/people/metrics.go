// internal/people/metrics.go

package people

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks people-feed performance
type Metrics struct {
	DiscoverRequests *prometheus.CounterVec
	DiscoverDuration prometheus.Histogram
	DiscoverResults  prometheus.Histogram
}

// NewMetrics creates and registers people metrics
func NewMetrics() *Metrics {
	return &Metrics{
		DiscoverRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "people_discover_requests_total",
				Help: "Total number of people discovery requests",
			},
			[]string{"status"},
		),
		DiscoverDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "people_discover_duration_seconds",
				Help:    "Duration of people discovery including bucket fetches and ranking",
				Buckets: prometheus.DefBuckets,
			},
		),
		DiscoverResults: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "people_discover_results",
				Help:    "Number of results returned per discovery page",
				Buckets: []float64{0, 1, 5, 10, 15, 20},
			},
		),
	}
}
