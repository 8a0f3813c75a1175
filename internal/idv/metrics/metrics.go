package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the proofing flow.
type Metrics struct {
	Submissions      *prometheus.CounterVec
	VendorLatency    prometheus.Histogram
	AttemptsExceeded prometheus.Counter
}

// Submission outcome labels.
const (
	OutcomeValidationFailed  = "validation_failed"
	OutcomeVendorApproved    = "vendor_approved"
	OutcomeVendorRejected    = "vendor_rejected"
	OutcomeVendorUnavailable = "vendor_unavailable"
)

// New creates and registers proofing metrics.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "idport_idv_submissions_total",
			Help: "Total profile submissions, labeled by outcome",
		}, []string{"outcome"}),
		VendorLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "idport_idv_vendor_latency_seconds",
			Help:    "Latency of proofing vendor calls in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		AttemptsExceeded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "idport_idv_attempts_exceeded_total",
			Help: "Submissions made by users who have exhausted their attempt budget",
		}),
	}
}

// ObserveSubmission records one submission outcome.
func (m *Metrics) ObserveSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// ObserveVendorLatency records the duration of one vendor call.
func (m *Metrics) ObserveVendorLatency(d time.Duration) {
	m.VendorLatency.Observe(d.Seconds())
}
