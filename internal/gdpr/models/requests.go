package models

import (
	"fmt"
	"time"

	dErrors "fooddrop/pkg/domain-errors"
	"fooddrop/pkg/platform/sentinel"
)

// RetentionWindow is the delay between a deletion request and the date it is
// scheduled for.
const RetentionWindow = 30 * 24 * time.Hour

type ExportStatus string

const (
	ExportPending    ExportStatus = "pending"
	ExportProcessing ExportStatus = "processing"
	ExportCompleted  ExportStatus = "completed"
	ExportFailed     ExportStatus = "failed"
)

var exportTransitions = map[ExportStatus][]ExportStatus{
	ExportPending:    {ExportProcessing},
	ExportProcessing: {ExportCompleted, ExportFailed},
}

func (s ExportStatus) CanTransitionTo(next ExportStatus) bool {
	for _, allowed := range exportTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ExportStatus) IsTerminal() bool {
	return s == ExportCompleted || s == ExportFailed
}

type DeletionStatus string

const (
	DeletionPending   DeletionStatus = "pending"
	DeletionCompleted DeletionStatus = "completed"
)

func (s DeletionStatus) CanTransitionTo(next DeletionStatus) bool {
	return s == DeletionPending && next == DeletionCompleted
}

type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
)

// ExportRequest tracks one data export.
//
// Invariants:
//   - Status only moves pending → processing → completed | failed
//   - CompletedAt is set once the request reaches a terminal state
type ExportRequest struct {
	ID                 string       `json:"id,omitempty"`
	UserID             string       `json:"userId"`
	RequestedAt        time.Time    `json:"requestedAt"`
	Status             ExportStatus `json:"status"`
	IncludeProfile     bool         `json:"includeProfile"`
	IncludeCollections bool         `json:"includeCollections"`
	IncludePreferences bool         `json:"includePreferences"`
	IncludeAnalytics   bool         `json:"includeAnalytics"`
	IncludeAuditLogs   bool         `json:"includeAuditLogs"`
	Format             ExportFormat `json:"format"`
	IPAddress          string       `json:"requestIpAddress,omitempty"`
	CompletedAt        *time.Time   `json:"completedAt,omitempty"`
	FailureReason      string       `json:"failureReason,omitempty"`
	DataTypes          []string     `json:"dataTypes,omitempty"`
}

func NewExportRequest(userID string, opts ExportOptions, ipAddress string, now time.Time) *ExportRequest {
	return &ExportRequest{
		UserID:             userID,
		RequestedAt:        now,
		Status:             ExportPending,
		IncludeProfile:     opts.IncludeProfile,
		IncludeCollections: opts.IncludeCollections,
		IncludePreferences: opts.IncludePreferences,
		IncludeAnalytics:   opts.IncludeAnalytics,
		IncludeAuditLogs:   opts.IncludeAuditLogs,
		Format:             opts.Format,
		IPAddress:          ipAddress,
	}
}

// TransitionTo moves the request to next, stamping CompletedAt on terminal
// states. Any other move fails with sentinel.ErrInvalidState.
func (r *ExportRequest) TransitionTo(next ExportStatus, now time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return invalidTransition("export", string(r.Status), string(next))
	}
	r.Status = next
	if next.IsTerminal() {
		t := now
		r.CompletedAt = &t
	}
	return nil
}

// Fail moves a processing request to failed with reason.
func (r *ExportRequest) Fail(reason string, now time.Time) error {
	if err := r.TransitionTo(ExportFailed, now); err != nil {
		return err
	}
	r.FailureReason = reason
	return nil
}

// DeletionRequest is a scheduled erasure of a user's data. Only the bcrypt
// hash of the confirmation code is stored.
type DeletionRequest struct {
	ID               string         `json:"id,omitempty"`
	UserID           string         `json:"userId"`
	RequestedAt      time.Time      `json:"requestedAt"`
	ScheduledFor     time.Time      `json:"scheduledFor"`
	Status           DeletionStatus `json:"status"`
	Reason           string         `json:"reason,omitempty"`
	ConfirmationHash string         `json:"confirmationHash"`
	RetainAnalytics  bool           `json:"retainAnalytics"`
	IPAddress        string         `json:"requestIpAddress,omitempty"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
}

func NewDeletionRequest(userID, reason, confirmationHash string, retainAnalytics bool, ipAddress string, now time.Time) *DeletionRequest {
	return &DeletionRequest{
		UserID:           userID,
		RequestedAt:      now,
		ScheduledFor:     now.Add(RetentionWindow),
		Status:           DeletionPending,
		Reason:           reason,
		ConfirmationHash: confirmationHash,
		RetainAnalytics:  retainAnalytics,
		IPAddress:        ipAddress,
	}
}

func (r *DeletionRequest) TransitionTo(next DeletionStatus, now time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return invalidTransition("deletion", string(r.Status), string(next))
	}
	r.Status = next
	t := now
	r.CompletedAt = &t
	return nil
}

func invalidTransition(kind, from, to string) error {
	return dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeInvalidState,
		fmt.Sprintf("%s request cannot move from %s to %s", kind, from, to))
}

// DeletionReceipt is returned to the user once; the code is not stored.
type DeletionReceipt struct {
	RequestID        string    `json:"requestId"`
	ConfirmationCode string    `json:"confirmationCode"`
	ScheduledFor     time.Time `json:"scheduledFor"`
}

type RequestKind string

const (
	KindExport   RequestKind = "export"
	KindDeletion RequestKind = "deletion"
)

// RequestSummary is one row of a user's GDPR request history.
type RequestSummary struct {
	ID          string      `json:"id"`
	Kind        RequestKind `json:"kind"`
	Status      string      `json:"status"`
	RequestedAt time.Time   `json:"requestedAt"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
}
