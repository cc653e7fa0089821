package models

import "time"

// EndpointClass groups endpoints that share a limit.
type EndpointClass string

const (
	// ClassSensitive covers exports and deletions, which touch every
	// collection a user owns.
	ClassSensitive EndpointClass = "sensitive"
	// ClassWrite covers ordinary profile mutations.
	ClassWrite EndpointClass = "write"
)

// Limit is the number of requests allowed per sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// DefaultLimits are applied per user.
var DefaultLimits = map[EndpointClass]Limit{
	ClassSensitive: {Requests: 5, Window: time.Hour},
	ClassWrite:     {Requests: 60, Window: time.Minute},
}

// RateLimitResult is the outcome of one check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// UserRateLimitExceededResponse is the API response when a user's quota is
// exhausted.
type UserRateLimitExceededResponse struct {
	Error          string    `json:"error"`
	Message        string    `json:"message"`
	QuotaLimit     int       `json:"quota_limit"`
	QuotaRemaining int       `json:"quota_remaining"`
	QuotaReset     time.Time `json:"quota_reset"`
}

// UserKey builds the bucket key for a user and class.
func UserKey(userID string, class EndpointClass) string {
	return "user:" + userID + ":" + string(class)
}
