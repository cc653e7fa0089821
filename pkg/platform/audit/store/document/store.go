// Package document persists audit entries and performance metrics in the
// document store. Timestamps come from the store clock.
package document

import (
	"context"
	"fmt"

	"fooddrop/internal/docstore"
	audit "fooddrop/pkg/platform/audit"
)

const (
	EntriesCollection = "audit_logs"
	MetricsCollection = "performance_metrics"
)

// Store implements audit.Store on top of a docstore.Store.
type Store struct {
	docs docstore.Store
}

func New(docs docstore.Store) *Store {
	return &Store{docs: docs}
}

func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	ref := docstore.Doc(EntriesCollection, s.docs.NewID())
	if err := s.docs.Set(ctx, ref, entryDocument(entry)); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *Store) AppendMetric(ctx context.Context, metric audit.PerformanceMetric) error {
	doc := map[string]any{
		"operation":  metric.Operation,
		"durationMs": metric.DurationMs,
		"timestamp":  docstore.ServerTimestamp,
	}
	if metric.UserID != "" {
		doc["userId"] = metric.UserID
	}
	if len(metric.Metadata) > 0 {
		doc["metadata"] = metric.Metadata
	}
	if metric.Error != "" {
		doc["error"] = metric.Error
	}
	ref := docstore.Doc(MetricsCollection, s.docs.NewID())
	if err := s.docs.Set(ctx, ref, doc); err != nil {
		return fmt.Errorf("append performance metric: %w", err)
	}
	return nil
}

func entryDocument(entry audit.Entry) map[string]any {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	category := entry.Category
	if category == "" {
		category = entry.Action.Category()
	}
	doc := map[string]any{
		"userId":    entry.UserID,
		"action":    string(entry.Action),
		"timestamp": docstore.ServerTimestamp,
		"details":   details,
		"sessionId": entry.SessionID,
		"category":  string(category),
	}
	if entry.IPAddress != "" {
		doc["ipAddress"] = entry.IPAddress
	}
	return doc
}

// ListByUser returns a user's entries, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]audit.Entry, error) {
	snaps, err := s.docs.Query(ctx, docstore.From(EntriesCollection).
		Where("userId", docstore.OpEqual, userID).
		OrderBy("timestamp", docstore.Desc))
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	entries := make([]audit.Entry, 0, len(snaps))
	for _, snap := range snaps {
		var e audit.Entry
		if err := snap.DataTo(&e); err != nil {
			return nil, err
		}
		e.ID = snap.Ref.ID
		entries = append(entries, e)
	}
	return entries, nil
}

// ListMetricsByUser returns a user's performance metrics, newest first.
func (s *Store) ListMetricsByUser(ctx context.Context, userID string) ([]audit.PerformanceMetric, error) {
	snaps, err := s.docs.Query(ctx, docstore.From(MetricsCollection).
		Where("userId", docstore.OpEqual, userID).
		OrderBy("timestamp", docstore.Desc))
	if err != nil {
		return nil, fmt.Errorf("query performance metrics: %w", err)
	}
	metrics := make([]audit.PerformanceMetric, 0, len(snaps))
	for _, snap := range snaps {
		var m audit.PerformanceMetric
		if err := snap.DataTo(&m); err != nil {
			return nil, err
		}
		m.ID = snap.Ref.ID
		metrics = append(metrics, m)
	}
	return metrics, nil
}

// PurgeOps returns deletes for every entry and metric recorded for userID.
// The caller commits them as part of its own batch.
func (s *Store) PurgeOps(ctx context.Context, userID string) (*docstore.Batch, error) {
	batch := docstore.NewBatch()
	for _, coll := range []string{EntriesCollection, MetricsCollection} {
		snaps, err := s.docs.Query(ctx, docstore.From(coll).Where("userId", docstore.OpEqual, userID))
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", coll, err)
		}
		for _, snap := range snaps {
			batch.Delete(snap.Ref)
		}
	}
	return batch, nil
}
