// Package middleware enforces per-user request limits on authenticated
// routes and audits every rejection as a security event.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fooddrop/internal/ratelimit/models"
	audit "fooddrop/pkg/platform/audit"
	"fooddrop/pkg/platform/httputil"
	"fooddrop/pkg/requestcontext"
)

// BucketStore counts requests in a sliding window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

// SecurityLogger records rejected requests.
type SecurityLogger interface {
	LogSecurityEvent(ctx context.Context, userID string, event audit.SecurityEvent, details map[string]any, ip string)
}

type Middleware struct {
	store    BucketStore
	security SecurityLogger
	logger   *slog.Logger
	limits   map[models.EndpointClass]models.Limit
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns every check into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithLimit overrides the limit for one class.
func WithLimit(class models.EndpointClass, limit models.Limit) Option {
	return func(m *Middleware) {
		if limit.Requests > 0 && limit.Window > 0 {
			m.limits[class] = limit
		}
	}
}

func New(store BucketStore, security SecurityLogger, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:    store,
		security: security,
		logger:   logger,
		limits:   make(map[models.EndpointClass]models.Limit, len(models.DefaultLimits)),
	}
	for class, limit := range models.DefaultLimits {
		m.limits[class] = limit
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimitAuthenticated limits requests per user. It must run after the
// auth middleware; requests without a user pass through. Store failures
// fail open.
func (m *Middleware) RateLimitAuthenticated(class models.EndpointClass) func(http.Handler) http.Handler {
	limit, ok := m.limits[class]
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userID := requestcontext.UserID(ctx)
			if m.disabled || !ok || userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := m.store.Allow(ctx, models.UserKey(userID, class), limit.Requests, limit.Window)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check user rate limit",
					"user_id", userID,
					"class", string(class),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)
			if !result.Allowed {
				m.logger.WarnContext(ctx, "user rate limit exceeded",
					"user_id", userID,
					"class", string(class),
				)
				m.security.LogSecurityEvent(ctx, userID, audit.SecurityRateLimitExceeded, map[string]any{
					"class":  string(class),
					"path":   r.URL.Path,
					"limit":  result.Limit,
					"window": limit.Window.String(),
				}, requestcontext.ClientIP(ctx))
				writeUserRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeUserRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.UserRateLimitExceededResponse{
		Error:          "user_rate_limit_exceeded",
		Message:        "You have exceeded your request quota for this operation.",
		QuotaLimit:     result.Limit,
		QuotaRemaining: result.Remaining,
		QuotaReset:     result.ResetAt,
	})
}
