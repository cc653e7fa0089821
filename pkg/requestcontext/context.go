// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets the values; services and the audit logger read them without
// importing net/http.
//
//	userID := requestcontext.UserID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7", "Mozilla/5.0")
package requestcontext

import (
	"context"
	"time"
)

type (
	userIDKey      struct{}
	sessionIDKey   struct{}
	deviceIDKey    struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestURLKey  struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyUserID      = userIDKey{}
	ContextKeySessionID   = sessionIDKey{}
	ContextKeyDeviceID    = deviceIDKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestURL  = requestURLKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

func stringValue(ctx context.Context, key any) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// -----------------------------------------------------------------------------
// Identity
// -----------------------------------------------------------------------------

// UserID returns the authenticated account id, or "" when anonymous.
func UserID(ctx context.Context) string { return stringValue(ctx, ContextKeyUserID) }

// WithUserID injects the authenticated account id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// SessionID returns the client session id, or "" when none was established.
func SessionID(ctx context.Context) string { return stringValue(ctx, ContextKeySessionID) }

// WithSessionID injects a client session id.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

// DeviceID returns the device cookie value.
func DeviceID(ctx context.Context) string { return stringValue(ctx, ContextKeyDeviceID) }

// WithDeviceID injects a device identifier.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, ContextKeyDeviceID, deviceID)
}

// -----------------------------------------------------------------------------
// Client metadata
// -----------------------------------------------------------------------------

// ClientIP returns the originating client address.
func ClientIP(ctx context.Context) string { return stringValue(ctx, ContextKeyClientIP) }

// UserAgent returns the client User-Agent.
func UserAgent(ctx context.Context) string { return stringValue(ctx, ContextKeyUserAgent) }

// WithClientMetadata injects client IP and User-Agent.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyClientIP, clientIP)
	ctx = context.WithValue(ctx, ContextKeyUserAgent, userAgent)
	return ctx
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID returns the correlation id of the current request.
func RequestID(ctx context.Context) string { return stringValue(ctx, ContextKeyRequestID) }

// WithRequestID injects a correlation id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestURL returns the URL the current request was made against.
func RequestURL(ctx context.Context) string { return stringValue(ctx, ContextKeyRequestURL) }

// WithRequestURL injects the request URL.
func WithRequestURL(ctx context.Context, url string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestURL, url)
}

// Now returns the request-scoped time, falling back to time.Now() outside of
// HTTP requests (workers, CLI, tests without an injected clock).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
