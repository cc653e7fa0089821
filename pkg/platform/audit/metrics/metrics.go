package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the audit queue and worker.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Enqueued            prometheus.Counter
	Dropped             *prometheus.CounterVec
	Persisted           prometheus.Counter
	PersistFailures     prometheus.Counter
	TeeFailures         prometheus.Counter
	CircuitBreakerState prometheus.Gauge
	QueueDepth          prometheus.Gauge
}

// New registers the audit metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Enqueued: f.NewCounter(prometheus.CounterOpts{
			Name: "fooddrop_audit_enqueued_total",
			Help: "Total number of audit entries accepted onto the queue",
		}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fooddrop_audit_dropped_total",
			Help: "Total number of audit entries dropped, by reason",
		}, []string{"reason"}),
		Persisted: f.NewCounter(prometheus.CounterOpts{
			Name: "fooddrop_audit_persisted_total",
			Help: "Total number of audit entries written to the store",
		}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "fooddrop_audit_persist_failures_total",
			Help: "Total number of audit store write failures",
		}),
		TeeFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "fooddrop_audit_tee_failures_total",
			Help: "Total number of failed audit tee publications",
		}),
		CircuitBreakerState: f.NewGauge(prometheus.GaugeOpts{
			Name: "fooddrop_audit_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Name: "fooddrop_audit_queue_depth",
			Help: "Number of audit jobs waiting on the queue",
		}),
	}
}

func (m *Metrics) IncEnqueued() {
	if m != nil {
		m.Enqueued.Inc()
	}
}

// IncDropped counts a dropped entry. Reasons: invalid, queue_full, closed,
// circuit_open.
func (m *Metrics) IncDropped(reason string) {
	if m != nil {
		m.Dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncPersisted() {
	if m != nil {
		m.Persisted.Inc()
	}
}

func (m *Metrics) IncPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) IncTeeFailures() {
	if m != nil {
		m.TeeFailures.Inc()
	}
}

// SetCircuitBreakerState sets the circuit breaker state gauge.
func (m *Metrics) SetCircuitBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}

func (m *Metrics) SetQueueDepth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}
