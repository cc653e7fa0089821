// Package publisher is the audit logger. Recording never blocks and never
// fails the caller: entries are validated, enriched with request context and
// queued for a background worker that writes them to the audit store.
package publisher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fooddrop/internal/validation"
	audit "fooddrop/pkg/platform/audit"
	"fooddrop/pkg/platform/audit/metrics"
	"fooddrop/pkg/platform/audit/session"
	"fooddrop/pkg/platform/audit/worker"
	"fooddrop/pkg/requestcontext"
)

const (
	defaultBufferSize = 1024
	batchConcurrency  = 8
)

// Publisher records audit entries asynchronously.
type Publisher struct {
	queue      chan audit.Job
	bufferSize int
	persist    bool
	sessions   session.Registry
	metrics    *metrics.Metrics
	logger     *slog.Logger
	workerOpts []worker.Option
	now        func() time.Time

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
	cancel context.CancelFunc
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer sets the queue capacity. Entries arriving while the queue
// is full are dropped.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.bufferSize = size
		}
	}
}

// WithPersistence toggles writing to the store. When disabled, entries are
// only mirrored to the diagnostic logger.
func WithPersistence(enabled bool) Option {
	return func(p *Publisher) { p.persist = enabled }
}

func WithSessionRegistry(r session.Registry) Option {
	return func(p *Publisher) {
		if r != nil {
			p.sessions = r
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithWorkerOptions passes options through to the background worker.
func WithWorkerOptions(opts ...worker.Option) Option {
	return func(p *Publisher) { p.workerOpts = append(p.workerOpts, opts...) }
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPublisher starts the background worker draining into store.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		bufferSize: defaultBufferSize,
		persist:    true,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sessions == nil {
		p.sessions = session.NewMemoryRegistry(session.WithClock(p.now))
	}

	p.queue = make(chan audit.Job, p.bufferSize)
	workerOpts := append([]worker.Option{
		worker.WithMetrics(p.metrics),
		worker.WithLogger(p.logger),
	}, p.workerOpts...)
	w := worker.NewWorker(store, p.queue, workerOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		_ = w.Run(ctx)
	}()
	return p
}

// RecordOption overrides request-derived entry fields.
type RecordOption func(*recordOptions)

type recordOptions struct {
	ip        string
	userAgent string
	sessionID string
}

func WithIP(ip string) RecordOption {
	return func(o *recordOptions) { o.ip = ip }
}

func WithUserAgent(ua string) RecordOption {
	return func(o *recordOptions) { o.userAgent = ua }
}

func WithSessionID(id string) RecordOption {
	return func(o *recordOptions) { o.sessionID = id }
}

// Record queues an audit entry. Invalid entries and entries arriving while
// the queue is full are logged and dropped.
func (p *Publisher) Record(ctx context.Context, userID string, action audit.Action, details map[string]any, opts ...RecordOption) {
	entry := p.buildEntry(ctx, userID, action, details, opts...)
	p.logAudit(ctx, entry)

	record, err := validation.ToRecord(entry)
	if err == nil {
		if errs := validation.Validate(record, audit.EntryRules); len(errs) > 0 {
			p.metrics.IncDropped("invalid")
			p.logger.WarnContext(ctx, "invalid audit entry dropped",
				"action", string(action),
				"violations", validation.Messages(errs),
			)
			return
		}
	}

	if !p.persist {
		return
	}
	p.enqueue(ctx, audit.Job{Entry: &entry})
}

// LogSecurityEvent records a security event under the login action with its
// severity.
func (p *Publisher) LogSecurityEvent(ctx context.Context, userID string, event audit.SecurityEvent, details map[string]any, ip string) {
	severity := event.Severity()
	merged := make(map[string]any, len(details)+2)
	for k, v := range details {
		merged[k] = v
	}
	merged["securityEvent"] = string(event)
	merged["severity"] = string(severity)

	if severity == audit.SeverityHigh || severity == audit.SeverityCritical {
		p.logger.WarnContext(ctx, "security event",
			"event", string(event),
			"severity", string(severity),
			"user_id", userID,
		)
	}

	var opts []RecordOption
	if ip != "" {
		opts = append(opts, WithIP(ip))
	}
	p.Record(ctx, userID, audit.ActionLogin, merged, opts...)
}

// RecordBatch records independent entries concurrently. A failing entry does
// not affect the others.
func (p *Publisher) RecordBatch(ctx context.Context, entries []audit.Entry) {
	var g errgroup.Group
	g.SetLimit(batchConcurrency)
	for _, e := range entries {
		g.Go(func() error {
			var opts []RecordOption
			if e.IPAddress != "" {
				opts = append(opts, WithIP(e.IPAddress))
			}
			if e.SessionID != "" {
				opts = append(opts, WithSessionID(e.SessionID))
			}
			p.Record(ctx, e.UserID, e.Action, e.Details, opts...)
			return nil
		})
	}
	_ = g.Wait()
}

func (p *Publisher) LogUserRegistration(ctx context.Context, userID, method string) {
	p.Record(ctx, userID, audit.ActionRegister, map[string]any{"registrationMethod": method})
}

func (p *Publisher) LogUserLogin(ctx context.Context, userID, method string) {
	p.Record(ctx, userID, audit.ActionLogin, map[string]any{"loginMethod": method})
}

func (p *Publisher) LogUserLogout(ctx context.Context, userID string, sessionDuration time.Duration) {
	p.Record(ctx, userID, audit.ActionLogout, map[string]any{"sessionDuration": sessionDuration.Milliseconds()})
}

func (p *Publisher) LogDataExportRequest(ctx context.Context, userID string, dataTypes []string) {
	p.Record(ctx, userID, audit.ActionDataExport, map[string]any{"requestedDataTypes": dataTypes})
}

func (p *Publisher) LogDataDeletionRequest(ctx context.Context, userID, reason string) {
	if reason == "" {
		reason = "not specified"
	}
	p.Record(ctx, userID, audit.ActionDataDeletion, map[string]any{"reason": reason})
}

func (p *Publisher) LogDataAccess(ctx context.Context, userID, resourceType, resourceID, accessType string) {
	p.Record(ctx, userID, audit.ActionDataAccess, map[string]any{
		"resourceType": resourceType,
		"resourceId":   resourceID,
		"accessType":   accessType,
	})
}

// LogPerformanceMetric queues a metric for the performance metrics
// collection. Like Record, it never blocks.
func (p *Publisher) LogPerformanceMetric(ctx context.Context, metric audit.PerformanceMetric) {
	if metric.UserID == "" {
		metric.UserID = requestcontext.UserID(ctx)
	}
	p.logger.DebugContext(ctx, "performance metric",
		"operation", metric.Operation,
		"duration_ms", metric.DurationMs,
		"log_type", "audit",
	)
	if !p.persist {
		return
	}
	p.enqueue(ctx, audit.Job{Metric: &metric})
}

// Flush blocks until every job queued before the call has been handled.
func (p *Publisher) Flush(ctx context.Context) error {
	done := make(chan struct{})

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil
	}
	select {
	case p.queue <- audit.Job{Flushed: done}:
	case <-ctx.Done():
		p.mu.RUnlock()
		return ctx.Err()
	}
	p.mu.RUnlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting entries and waits for the queue to drain. If ctx
// ends first the worker is abandoned and the remaining jobs are lost.
func (p *Publisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	select {
	case <-p.done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

func (p *Publisher) enqueue(ctx context.Context, job audit.Job) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.metrics.IncDropped("closed")
		p.logger.WarnContext(ctx, "audit logger closed, dropping")
		return
	}
	select {
	case p.queue <- job:
		p.metrics.IncEnqueued()
	default:
		p.metrics.IncDropped("queue_full")
		attrs := []any{"queue_capacity", cap(p.queue)}
		if job.Entry != nil {
			attrs = append(attrs, "action", string(job.Entry.Action), "user_id", job.Entry.UserID)
		}
		p.logger.WarnContext(ctx, "audit queue full, dropping", attrs...)
	}
}

func (p *Publisher) logAudit(ctx context.Context, entry audit.Entry) {
	p.logger.InfoContext(ctx, string(entry.Action),
		"log_type", "audit",
		"user_id", entry.UserID,
		"session_id", entry.SessionID,
		"category", string(entry.Category),
		"request_id", requestcontext.RequestID(ctx),
		"persisted", p.persist,
	)
}
