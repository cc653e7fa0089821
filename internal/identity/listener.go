package identity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	profilemodels "fooddrop/internal/profile/models"
)

// ProfileEnsurer creates or refreshes the profile for a signed-in identity.
// It records the register or login audit entry itself.
type ProfileEnsurer interface {
	EnsureProfile(ctx context.Context, id Identity) (*profilemodels.Profile, error)
}

// LogoutAuditor records sign-outs.
type LogoutAuditor interface {
	LogUserLogout(ctx context.Context, userID string, sessionDuration time.Duration)
}

// Listener reacts to identity provider state changes.
type Listener struct {
	profiles ProfileEnsurer
	auditor  LogoutAuditor
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	signedInAt map[string]time.Time
}

type ListenerOption func(*Listener)

func WithListenerLogger(logger *slog.Logger) ListenerOption {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithListenerClock(now func() time.Time) ListenerOption {
	return func(l *Listener) {
		if now != nil {
			l.now = now
		}
	}
}

func NewListener(profiles ProfileEnsurer, auditor LogoutAuditor, opts ...ListenerOption) *Listener {
	l := &Listener{
		profiles:   profiles,
		auditor:    auditor,
		logger:     slog.Default(),
		now:        time.Now,
		signedInAt: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SignedIn ensures the profile exists and starts tracking the session.
func (l *Listener) SignedIn(ctx context.Context, id Identity) (*profilemodels.Profile, error) {
	profile, err := l.profiles.EnsureProfile(ctx, id)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to ensure profile on sign-in",
			"user_id", id.UID,
			"error", err,
		)
		return nil, err
	}

	l.mu.Lock()
	l.signedInAt[id.UID] = l.now()
	l.mu.Unlock()
	return profile, nil
}

// SignedOut records the logout with the tracked session duration. Unknown
// sessions are recorded with a zero duration.
func (l *Listener) SignedOut(ctx context.Context, uid string) {
	l.mu.Lock()
	start, ok := l.signedInAt[uid]
	delete(l.signedInAt, uid)
	l.mu.Unlock()

	var d time.Duration
	if ok {
		d = l.now().Sub(start)
	}
	l.auditor.LogUserLogout(ctx, uid, d)
}
