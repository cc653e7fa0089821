package testutil

import (
	"net/http"

	"fooddrop/internal/identity"
	"fooddrop/pkg/platform/middleware/auth"
	"fooddrop/pkg/requestcontext"
)

// WithAuth puts the state RequireAuth would leave on an authenticated
// request. An empty sessionID is left unset.
func WithAuth(req *http.Request, userID, sessionID string) *http.Request {
	ctx := auth.WithIdentity(req.Context(), identity.Identity{UID: userID}, sessionID)
	return req.WithContext(ctx)
}

// WithClient sets the client address and user agent the metadata middleware
// would extract.
func WithClient(req *http.Request, ip, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, userAgent))
}
