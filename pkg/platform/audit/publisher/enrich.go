package publisher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mssola/useragent"

	audit "fooddrop/pkg/platform/audit"
	"fooddrop/pkg/platform/audit/session"
	"fooddrop/pkg/requestcontext"
)

func (p *Publisher) buildEntry(ctx context.Context, userID string, action audit.Action, details map[string]any, opts ...RecordOption) audit.Entry {
	var o recordOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.ip == "" {
		o.ip = requestcontext.ClientIP(ctx)
	}
	if o.userAgent == "" {
		o.userAgent = requestcontext.UserAgent(ctx)
	}
	if userID == "" {
		userID = audit.AnonymousUser
	}

	return audit.Entry{
		UserID:    userID,
		Action:    action,
		Details:   enrichDetails(ctx, details, o.userAgent),
		IPAddress: o.ip,
		SessionID: p.resolveSession(ctx, o.sessionID, userID),
		Category:  action.Category(),
	}
}

// enrichDetails copies details and adds client context. Client context wins
// over caller-supplied keys of the same name.
func enrichDetails(ctx context.Context, details map[string]any, userAgent string) map[string]any {
	out := make(map[string]any, len(details)+5)
	for k, v := range details {
		out[k] = v
	}
	if userAgent != "" {
		out["userAgent"] = userAgent
		out["device"] = describeDevice(userAgent)
	}
	if url := requestcontext.RequestURL(ctx); url != "" {
		out["url"] = url
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		out["requestId"] = requestID
	}
	out["timestamp"] = requestcontext.Now(ctx).UTC().Format(time.RFC3339Nano)
	return out
}

// resolveSession prefers an explicit id, then the request's session, then
// the registry entry for the client device.
func (p *Publisher) resolveSession(ctx context.Context, explicit, userID string) string {
	if explicit != "" {
		return explicit
	}
	if id := requestcontext.SessionID(ctx); id != "" {
		return id
	}
	key := requestcontext.DeviceID(ctx)
	if key == "" {
		key = "user:" + userID
	}
	id, err := p.sessions.SessionID(ctx, key)
	if err != nil || id == "" {
		p.logger.WarnContext(ctx, "session registry unavailable, using fresh session id",
			"error", err,
		)
		return session.NewID(p.now())
	}
	return id
}

// describeDevice summarizes a user agent as "<browser> on <os> (<kind>)".
func describeDevice(raw string) string {
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if major, _, ok := strings.Cut(version, "."); ok {
		version = major
	}
	browser := strings.TrimSpace(name + " " + version)
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := ua.OS()
	if os == "" {
		os = "Unknown OS"
	}
	kind := "desktop"
	switch {
	case ua.Bot():
		kind = "bot"
	case ua.Mobile():
		kind = "mobile"
	}
	return fmt.Sprintf("%s on %s (%s)", browser, os, kind)
}
