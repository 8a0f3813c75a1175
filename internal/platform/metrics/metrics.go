package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds process level Prometheus metrics. Module specific metrics
// live next to their module (see internal/idv/metrics).
type Metrics struct {
	UsersCreated    prometheus.Counter
	EndpointLatency *prometheus.HistogramVec
	NotifyDropped   prometheus.Counter
}

// New creates and registers all process level Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "idport_users_created_total",
			Help: "Total number of users created",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idport_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		NotifyDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "idport_notifications_dropped_total",
			Help: "Total number of notifications dropped because the dispatch buffer was full",
		}),
	}
}

// ObserveEndpointLatency records the latency of a single request.
func (m *Metrics) ObserveEndpointLatency(endpoint string, seconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(seconds)
}
