package worker

import (
	"context"
	"log/slog"
	"time"

	audit "fooddrop/pkg/platform/audit"
	"fooddrop/pkg/platform/audit/metrics"
	"fooddrop/pkg/platform/circuit"
)

const defaultWriteTimeout = 5 * time.Second

// Worker drains audit jobs from a channel into the store. Jobs are handled
// in arrival order, so a flush marker completes only after every job queued
// before it.
type Worker struct {
	store        audit.Store
	inbox        <-chan audit.Job
	tees         []audit.Tee
	breaker      *circuit.Breaker
	metrics      *metrics.Metrics
	reporter     audit.ErrorReporter
	logger       *slog.Logger
	writeTimeout time.Duration
}

// Option configures a Worker.
type Option func(*Worker)

// WithTee streams every persisted entry to t.
func WithTee(t audit.Tee) Option {
	return func(w *Worker) {
		if t != nil {
			w.tees = append(w.tees, t)
		}
	}
}

// WithBreaker drops entries while the store is failing.
func WithBreaker(b *circuit.Breaker) Option {
	return func(w *Worker) { w.breaker = b }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

func WithReporter(r audit.ErrorReporter) Option {
	return func(w *Worker) { w.reporter = r }
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWriteTimeout bounds each store write.
func WithWriteTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.writeTimeout = d
		}
	}
}

func NewWorker(store audit.Store, inbox <-chan audit.Job, opts ...Option) *Worker {
	w := &Worker{
		store:        store,
		inbox:        inbox,
		logger:       slog.Default(),
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes jobs until the inbox is closed and drained, or ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.metrics.SetQueueDepth(len(w.inbox))
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job audit.Job) {
	switch {
	case job.Flushed != nil:
		close(job.Flushed)
	case job.Entry != nil:
		entry := *job.Entry
		if !w.write(ctx, "entry", func(ctx context.Context) error { return w.store.Append(ctx, entry) }) {
			return
		}
		w.publish(ctx, entry)
	case job.Metric != nil:
		metric := *job.Metric
		w.write(ctx, "performance_metric", func(ctx context.Context) error { return w.store.AppendMetric(ctx, metric) })
	}
}

func (w *Worker) write(ctx context.Context, kind string, fn func(ctx context.Context) error) bool {
	if w.breaker != nil && !w.breaker.Allow() {
		w.metrics.IncDropped("circuit_open")
		w.logger.WarnContext(ctx, "audit store circuit open, dropping",
			"kind", kind,
		)
		return false
	}

	writeCtx, cancel := context.WithTimeout(ctx, w.writeTimeout)
	err := fn(writeCtx)
	cancel()

	if err != nil {
		w.metrics.IncPersistFailures()
		if w.breaker != nil {
			if _, change := w.breaker.RecordFailure(); change.Opened {
				w.metrics.SetCircuitBreakerState(true)
				w.logger.ErrorContext(ctx, "audit store circuit opened",
					"breaker", w.breaker.Name(),
				)
			}
		}
		w.logger.ErrorContext(ctx, "failed to persist audit record",
			"kind", kind,
			"error", err,
		)
		if w.reporter != nil {
			w.reporter.CaptureError(ctx, err, map[string]string{"component": "audit", "kind": kind})
		}
		return false
	}

	w.metrics.IncPersisted()
	if w.breaker != nil {
		if _, change := w.breaker.RecordSuccess(); change.Closed {
			w.metrics.SetCircuitBreakerState(false)
			w.logger.InfoContext(ctx, "audit store circuit closed",
				"breaker", w.breaker.Name(),
			)
		}
	}
	return true
}

func (w *Worker) publish(ctx context.Context, entry audit.Entry) {
	for _, tee := range w.tees {
		if err := tee.Publish(ctx, entry); err != nil {
			w.metrics.IncTeeFailures()
			w.logger.WarnContext(ctx, "failed to publish audit entry",
				"action", string(entry.Action),
				"error", err,
			)
		}
	}
}
