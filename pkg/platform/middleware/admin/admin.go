// Package admin guards operator routes.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "fooddrop/pkg/domain-errors"
	"fooddrop/pkg/platform/httputil"
	"fooddrop/pkg/requestcontext"
)

// HeaderAdminToken carries the shared operator secret.
const HeaderAdminToken = "X-Admin-Token"

var errAdminToken = dErrors.New(dErrors.CodeUnauthorized, "admin token required")

// RequireAdminToken admits requests whose X-Admin-Token matches
// expectedToken. With no token configured every request is refused.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokenMatches(r.Header.Get(HeaderAdminToken), expectedToken) {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin request rejected",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
					"token_configured", expectedToken != "",
				)
				httputil.WriteError(w, errAdminToken)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenMatches(got, want string) bool {
	if want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
