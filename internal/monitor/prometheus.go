package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type promMetrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// newPromMetrics builds the collectors. A nil registerer leaves them
// unregistered.
func newPromMetrics(reg prometheus.Registerer) *promMetrics {
	f := promauto.With(reg)
	return &promMetrics{
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fooddrop_store_operation_duration_seconds",
			Help:    "Duration of observed document store operations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"operation"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fooddrop_store_operation_errors_total",
			Help: "Observed document store operations that failed, by error code",
		}, []string{"operation", "code"}),
	}
}

func (p *promMetrics) observe(m Metric) {
	p.duration.WithLabelValues(m.Operation).Observe(m.Duration.Seconds())
	if m.ErrorCode != "" {
		p.errors.WithLabelValues(m.Operation, m.ErrorCode).Inc()
	}
}
