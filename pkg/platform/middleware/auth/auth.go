package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"fooddrop/internal/identity"
	"fooddrop/pkg/requestcontext"
)

// TokenVerifier validates bearer identity tokens.
type TokenVerifier interface {
	Verify(tokenString string) (identity.Identity, *identity.Claims, error)
}

type contextKeyIdentity struct{}

// IdentityFrom returns the verified identity placed by RequireAuth.
func IdentityFrom(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(contextKeyIdentity{}).(identity.Identity)
	return id, ok
}

// WithIdentity injects a verified identity. Useful for handler tests that
// skip the middleware.
func WithIdentity(ctx context.Context, id identity.Identity, sessionID string) context.Context {
	ctx = context.WithValue(ctx, contextKeyIdentity{}, id)
	ctx = requestcontext.WithUserID(ctx, id.UID)
	if sessionID != "" {
		ctx = requestcontext.WithSessionID(ctx, sessionID)
	}
	return ctx
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth rejects requests without a valid bearer token and places the
// identity, user id and session id in the context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			id, claims, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id, claims.SessionID)))
		})
	}
}
