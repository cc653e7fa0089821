// Package monitor measures store operations. Every observed call produces
// exactly one Metric, kept in a bounded per-operation buffer, exported to
// Prometheus and traced with OpenTelemetry. Slow calls are logged and handed
// to an optional Reporter.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "fooddrop/pkg/domain-errors"
)

const (
	DefaultBufferSize     = 100
	DefaultWarnThreshold  = 500 * time.Millisecond
	DefaultErrorThreshold = 2 * time.Second

	panicCode = "panic"
)

// Meta describes the observed operation.
type Meta struct {
	UserID        string
	QueryType     string
	Collection    string
	DocumentCount int
	Cached        bool
}

// Metric is one observed call.
type Metric struct {
	ID        string
	Operation string
	Duration  time.Duration
	Timestamp time.Time
	Meta      Meta
	ErrorCode string
}

// Reporter receives metrics that crossed the warn threshold. Implementations
// must not block.
type Reporter interface {
	ReportSlow(ctx context.Context, m Metric)
}

// Monitor is safe for concurrent use.
type Monitor struct {
	mu      sync.Mutex
	metrics map[string][]Metric

	bufferSize     int
	warnThreshold  time.Duration
	errorThreshold time.Duration
	enableLogging  bool
	enableMetrics  bool

	reporter Reporter
	logger   *slog.Logger
	tracer   trace.Tracer
	prom     *promMetrics
	reg      prometheus.Registerer
	now      func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithReporter(r Reporter) Option {
	return func(m *Monitor) { m.reporter = r }
}

// WithThresholds overrides the warn and error durations. Zero keeps the default.
func WithThresholds(warn, errorAt time.Duration) Option {
	return func(m *Monitor) {
		if warn > 0 {
			m.warnThreshold = warn
		}
		if errorAt > 0 {
			m.errorThreshold = errorAt
		}
	}
}

func WithBufferSize(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.bufferSize = n
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(m *Monitor) {
		if t != nil {
			m.tracer = t
		}
	}
}

// WithRegisterer registers the Prometheus collectors with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(m *Monitor) { m.reg = reg }
}

func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

func New(opts ...Option) *Monitor {
	m := &Monitor{
		metrics:        make(map[string][]Metric),
		bufferSize:     DefaultBufferSize,
		warnThreshold:  DefaultWarnThreshold,
		errorThreshold: DefaultErrorThreshold,
		enableLogging:  true,
		enableMetrics:  true,
		logger:         slog.Default(),
		tracer:         otel.Tracer("fooddrop/monitor"),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.prom = newPromMetrics(m.reg)
	return m
}

// Configure toggles slow-call logging and metric collection.
func (m *Monitor) Configure(enableLogging, enableMetrics bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enableLogging = enableLogging
	m.enableMetrics = enableMetrics
}

// Observe runs op and records exactly one metric for it, whether it
// succeeds, fails or panics. The op's result and error are returned
// unchanged; a panic is re-raised after recording.
func Observe[T any](ctx context.Context, m *Monitor, name string, meta Meta, op func(ctx context.Context) (T, error)) (T, error) {
	if m == nil {
		return op(ctx)
	}

	ctx, span := m.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.operation", meta.QueryType),
		attribute.String("db.collection", meta.Collection),
	))
	start := m.now()

	defer func() {
		if r := recover(); r != nil {
			m.record(ctx, name, m.now().Sub(start), meta, panicCode, nil)
			span.SetStatus(codes.Error, panicCode)
			span.End()
			panic(r)
		}
	}()

	result, err := op(ctx)

	code := ""
	if err != nil {
		code = string(dErrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
	}
	m.record(ctx, name, m.now().Sub(start), meta, code, err)
	span.End()
	return result, err
}

// Do is Observe for operations without a result.
func (m *Monitor) Do(ctx context.Context, name string, meta Meta, op func(ctx context.Context) error) error {
	_, err := Observe(ctx, m, name, meta, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func (m *Monitor) record(ctx context.Context, name string, d time.Duration, meta Meta, code string, opErr error) {
	metric := Metric{
		ID:        fmt.Sprintf("%s_%s", name, uuid.NewString()),
		Operation: name,
		Duration:  d,
		Timestamp: m.now(),
		Meta:      meta,
		ErrorCode: code,
	}

	m.prom.observe(metric)

	m.mu.Lock()
	logging, collecting := m.enableLogging, m.enableMetrics
	if collecting {
		buf := append(m.metrics[name], metric)
		if len(buf) > m.bufferSize {
			buf = buf[len(buf)-m.bufferSize:]
		}
		m.metrics[name] = buf
	}
	m.mu.Unlock()

	if logging {
		switch {
		case d > m.errorThreshold:
			m.logger.ErrorContext(ctx, "very slow store operation",
				"operation", name,
				"duration_ms", ms(d),
				"user_id", meta.UserID,
				"query_type", meta.QueryType,
				"collection", meta.Collection,
				"document_count", meta.DocumentCount,
				"cached", meta.Cached,
				"error", opErr,
			)
		case d > m.warnThreshold:
			m.logger.WarnContext(ctx, "slow store operation",
				"operation", name,
				"duration_ms", ms(d),
				"collection", meta.Collection,
			)
		}
	}

	if collecting && d > m.warnThreshold && m.reporter != nil {
		m.reporter.ReportSlow(ctx, metric)
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
