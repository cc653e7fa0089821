// Package device identifies the client device so audit sessions can be
// keyed per device.
package device

import (
	"net/http"
	"regexp"

	"fooddrop/pkg/requestcontext"
)

const (
	// CookieName carries the device id set by the web client.
	CookieName = "fd_device"
	// HeaderName carries the device id from native clients.
	HeaderName = "X-Device-ID"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// Middleware reads the device id from the header or cookie. Malformed values
// are ignored.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := FromRequest(r); id != "" {
			r = r.WithContext(requestcontext.WithDeviceID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// FromRequest returns the request's device id, or "".
func FromRequest(r *http.Request) string {
	if id := r.Header.Get(HeaderName); validID.MatchString(id) {
		return id
	}
	if c, err := r.Cookie(CookieName); err == nil && validID.MatchString(c.Value) {
		return c.Value
	}
	return ""
}
