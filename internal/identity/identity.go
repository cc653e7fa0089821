// Package identity is the boundary to the identity provider: the signed-in
// principal, bearer token verification and the sign-in/sign-out listener.
package identity

// Identity is the authenticated principal as asserted by the provider.
type Identity struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}
