// Package errtrack forwards unexpected failures to Sentry.
package errtrack

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"

	"fooddrop/internal/platform/config"
	"fooddrop/pkg/requestcontext"
)

// Tracker captures errors on a dedicated Sentry hub. A nil *Tracker is a
// valid no-op.
type Tracker struct {
	hub *sentry.Hub
}

// New initialises Sentry from cfg. It returns nil when no DSN is configured.
func New(cfg config.Sentry) (*Tracker, error) {
	if cfg.DSN == "" {
		return nil, nil
	}
	return NewWithOptions(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		SampleRate:       cfg.SampleRate,
		AttachStacktrace: true,
	})
}

// NewWithOptions builds a tracker from explicit client options.
func NewWithOptions(opts sentry.ClientOptions) (*Tracker, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	return &Tracker{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// CaptureError reports err with tags and the request id from ctx.
func (t *Tracker) CaptureError(ctx context.Context, err error, tags map[string]string) {
	if t == nil || err == nil {
		return
	}
	hub := t.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		if id := requestcontext.RequestID(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
		hub.CaptureException(err)
	})
}

// Flush waits up to timeout for queued events to be delivered.
func (t *Tracker) Flush(timeout time.Duration) bool {
	if t == nil {
		return true
	}
	return t.hub.Flush(timeout)
}

// Handler returns a slog handler that forwards records at or above level.
// An attribute holding an error is reported as the exception.
func (t *Tracker) Handler(level slog.Level) slog.Handler {
	return &handler{tracker: t, level: level}
}

type handler struct {
	tracker *Tracker
	level   slog.Level
	attrs   []slog.Attr
	group   string
}

func (h *handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.tracker != nil && level >= h.level
}

func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	fields := make(map[string]any, len(h.attrs)+r.NumAttrs())
	var cause error
	collect := func(a slog.Attr) {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		if err, ok := a.Value.Any().(error); ok && cause == nil {
			cause = err
		}
		fields[key] = a.Value.String()
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(a)
		return true
	})

	hub := h.tracker.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentryLevel(r.Level))
		scope.SetContext("log", sentry.Context(fields))
		if id := requestcontext.RequestID(ctx); id != "" {
			scope.SetTag("request_id", id)
		}
		if cause != nil {
			hub.CaptureException(fmt.Errorf("%s: %w", r.Message, cause))
			return
		}
		hub.CaptureMessage(r.Message)
	})
	return nil
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *handler) WithGroup(name string) slog.Handler {
	next := *h
	if next.group != "" {
		name = next.group + "." + name
	}
	next.group = name
	return &next
}

func sentryLevel(l slog.Level) sentry.Level {
	switch {
	case l >= slog.LevelError:
		return sentry.LevelError
	case l >= slog.LevelWarn:
		return sentry.LevelWarning
	default:
		return sentry.LevelInfo
	}
}
