package audit

import (
	"context"
	"time"

	"fooddrop/internal/validation"
)

// Action names what an audit entry records.
type Action string

const (
	ActionRegister          Action = "register"
	ActionLogin             Action = "login"
	ActionLogout            Action = "logout"
	ActionProfileUpdate     Action = "profile_update"
	ActionCollectionAdd     Action = "collection_add"
	ActionDataExport        Action = "data_export"
	ActionDataDeletion      Action = "data_deletion"
	ActionConsentUpdate     Action = "consent_update"
	ActionPerformanceMetric Action = "performance_metric"
	ActionDataAccess        Action = "data_access"
)

// Actions lists every action an entry may carry.
var Actions = []Action{
	ActionRegister, ActionLogin, ActionLogout, ActionProfileUpdate, ActionCollectionAdd,
	ActionDataExport, ActionDataDeletion, ActionConsentUpdate, ActionPerformanceMetric, ActionDataAccess,
}

// EventCategory classifies entries for routing to downstream consumers.
type EventCategory string

const (
	// CategoryCompliance covers data subject rights and consent.
	CategoryCompliance EventCategory = "compliance"
	// CategorySecurity covers authentication and session activity.
	CategorySecurity EventCategory = "security"
	// CategoryOperations covers routine activity.
	CategoryOperations EventCategory = "operations"
)

var actionCategories = map[Action]EventCategory{
	ActionRegister:      CategoryCompliance,
	ActionDataExport:    CategoryCompliance,
	ActionDataDeletion:  CategoryCompliance,
	ActionConsentUpdate: CategoryCompliance,
	ActionDataAccess:    CategoryCompliance,

	ActionLogin:  CategorySecurity,
	ActionLogout: CategorySecurity,
}

// Category returns the category for this action. Unknown actions default to
// CategoryOperations.
func (a Action) Category() EventCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

const (
	// AnonymousUser is recorded when no user id is known.
	AnonymousUser = "anonymous"
	// SystemActor is recorded for entries written by background workflows.
	SystemActor = "system"
)

// Entry is one append-only audit record. Timestamp is assigned by the store
// when the entry is persisted.
type Entry struct {
	ID        string         `json:"id,omitempty"`
	UserID    string         `json:"userId"`
	Action    Action         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details"`
	IPAddress string         `json:"ipAddress,omitempty"`
	SessionID string         `json:"sessionId"`
	Category  EventCategory  `json:"category,omitempty"`
}

// EntryRules validates an entry before it is queued.
var EntryRules = []validation.Rule{
	validation.RequiredField("userId", validation.TypeString, validation.MinLength(1)),
	validation.RequiredField("action", validation.TypeString, validation.OneOf(actionStrings()...)),
	validation.RequiredField("details", validation.TypeObject),
	validation.RequiredField("sessionId", validation.TypeString, validation.MinLength(1)),
	validation.Field("ipAddress", validation.TypeString, validation.MaxLength(64)),
}

func actionStrings() []string {
	out := make([]string, len(Actions))
	for i, a := range Actions {
		out[i] = string(a)
	}
	return out
}

// SecurityEvent names a security-relevant occurrence.
type SecurityEvent string

const (
	SecurityFailedLogin        SecurityEvent = "failed_login"
	SecuritySuspiciousActivity SecurityEvent = "suspicious_activity"
	SecurityRateLimitExceeded  SecurityEvent = "rate_limit_exceeded"
	SecurityInvalidToken       SecurityEvent = "invalid_token"
)

// Severity levels for security events.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severity returns the fixed severity for the event.
func (e SecurityEvent) Severity() Severity {
	switch e {
	case SecurityInvalidToken:
		return SeverityCritical
	case SecuritySuspiciousActivity, SecurityRateLimitExceeded:
		return SeverityHigh
	case SecurityFailedLogin:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// PerformanceMetric is a slow or notable operation measurement.
type PerformanceMetric struct {
	ID         string         `json:"id,omitempty"`
	Operation  string         `json:"operation"`
	DurationMs float64        `json:"durationMs"`
	UserID     string         `json:"userId,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Store persists audit entries and performance metrics.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	AppendMetric(ctx context.Context, metric PerformanceMetric) error
}

// Tee receives every entry after it has been persisted.
type Tee interface {
	Publish(ctx context.Context, entry Entry) error
}

// ErrorReporter forwards unexpected failures to an error tracker.
type ErrorReporter interface {
	CaptureError(ctx context.Context, err error, tags map[string]string)
}

// Job is one unit of work on the audit queue. Exactly one field is set.
type Job struct {
	Entry   *Entry
	Metric  *PerformanceMetric
	Flushed chan struct{}
}
