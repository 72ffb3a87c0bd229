// internal/meetups/metrics.go

package meetups

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks meetup feed and lifecycle activity
type Metrics struct {
	DiscoverRequests *prometheus.CounterVec
	DiscoverDuration prometheus.Histogram
	MeetupsCreated   prometheus.Counter
	JoinRequests     *prometheus.CounterVec
}

// NewMetrics creates and registers meetup metrics
func NewMetrics() *Metrics {
	return &Metrics{
		DiscoverRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetups_discover_requests_total",
				Help: "Total number of meetup feed requests",
			},
			[]string{"window", "status"},
		),
		DiscoverDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "meetups_discover_duration_seconds",
				Help:    "Duration of meetup feed queries",
				Buckets: prometheus.DefBuckets,
			},
		),
		MeetupsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "meetups_created_total",
				Help: "Total number of meetups created",
			},
		),
		JoinRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meetups_join_requests_total",
				Help: "Join request outcomes",
			},
			[]string{"outcome"},
		),
	}
}
