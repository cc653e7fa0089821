// Package store persists GDPR export, deletion and consent records in the
// document store.
package store

import (
	"context"
	"fmt"

	"fooddrop/internal/docstore"
	"fooddrop/internal/gdpr/models"
	"fooddrop/internal/monitor"
)

const (
	ExportsCollection   = "gdpr_data_exports"
	DeletionsCollection = "gdpr_deletion_requests"
	ConsentsCollection  = "gdpr_consents"
)

type Store struct {
	docs    docstore.Store
	monitor *monitor.Monitor
}

func New(docs docstore.Store, m *monitor.Monitor) *Store {
	return &Store{docs: docs, monitor: m}
}

// RunTransaction runs fn atomically against the underlying document store.
func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.docs.RunTransaction(ctx, fn)
}

// Commit applies a batch atomically.
func (s *Store) Commit(ctx context.Context, batch *docstore.Batch) error {
	meta := monitor.Meta{QueryType: "batch", DocumentCount: batch.Len()}
	return s.monitor.Do(ctx, "commitBatch", meta, func(ctx context.Context) error {
		return batch.Commit(ctx, s.docs)
	})
}

// CreateExport stores a new export request and sets its id.
func (s *Store) CreateExport(ctx context.Context, req *models.ExportRequest) error {
	meta := monitor.Meta{UserID: req.UserID, QueryType: "create", Collection: ExportsCollection, DocumentCount: 1}
	return s.monitor.Do(ctx, "createExportRequest", meta, func(ctx context.Context) error {
		req.ID = s.docs.NewID()
		if err := s.docs.Create(ctx, docstore.Doc(ExportsCollection, req.ID), req); err != nil {
			return fmt.Errorf("create export request: %w", err)
		}
		return nil
	})
}

// SaveExport replaces the stored export request.
func (s *Store) SaveExport(ctx context.Context, req *models.ExportRequest) error {
	meta := monitor.Meta{UserID: req.UserID, QueryType: "update", Collection: ExportsCollection, DocumentCount: 1}
	return s.monitor.Do(ctx, "updateExportRequest", meta, func(ctx context.Context) error {
		if err := s.docs.Set(ctx, docstore.Doc(ExportsCollection, req.ID), req); err != nil {
			return fmt.Errorf("save export request: %w", err)
		}
		return nil
	})
}

func (s *Store) ListExports(ctx context.Context, userID string) ([]*models.ExportRequest, error) {
	meta := monitor.Meta{UserID: userID, QueryType: "query", Collection: ExportsCollection}
	return monitor.Observe(ctx, s.monitor, "listExportRequests", meta, func(ctx context.Context) ([]*models.ExportRequest, error) {
		return queryAll[models.ExportRequest](ctx, s.docs, docstore.From(ExportsCollection).
			Where("userId", docstore.OpEqual, userID).
			OrderBy("requestedAt", docstore.Desc),
			func(r *models.ExportRequest, id string) { r.ID = id })
	})
}

// CreateDeletion stores a new deletion request and sets its id.
func (s *Store) CreateDeletion(ctx context.Context, req *models.DeletionRequest) error {
	meta := monitor.Meta{UserID: req.UserID, QueryType: "create", Collection: DeletionsCollection, DocumentCount: 1}
	return s.monitor.Do(ctx, "createDeletionRequest", meta, func(ctx context.Context) error {
		req.ID = s.docs.NewID()
		if err := s.docs.Create(ctx, docstore.Doc(DeletionsCollection, req.ID), req); err != nil {
			return fmt.Errorf("create deletion request: %w", err)
		}
		return nil
	})
}

func (s *Store) ListDeletions(ctx context.Context, userID string) ([]*models.DeletionRequest, error) {
	meta := monitor.Meta{UserID: userID, QueryType: "query", Collection: DeletionsCollection}
	return monitor.Observe(ctx, s.monitor, "listDeletionRequests", meta, func(ctx context.Context) ([]*models.DeletionRequest, error) {
		return queryAll[models.DeletionRequest](ctx, s.docs, docstore.From(DeletionsCollection).
			Where("userId", docstore.OpEqual, userID).
			OrderBy("requestedAt", docstore.Desc),
			func(r *models.DeletionRequest, id string) { r.ID = id })
	})
}

// PendingDeletions returns the user's deletion requests still awaiting
// confirmation, newest first.
func (s *Store) PendingDeletions(ctx context.Context, userID string) ([]*models.DeletionRequest, error) {
	meta := monitor.Meta{UserID: userID, QueryType: "query", Collection: DeletionsCollection}
	return monitor.Observe(ctx, s.monitor, "findPendingDeletions", meta, func(ctx context.Context) ([]*models.DeletionRequest, error) {
		return queryAll[models.DeletionRequest](ctx, s.docs, docstore.From(DeletionsCollection).
			Where("userId", docstore.OpEqual, userID).
			Where("status", docstore.OpEqual, string(models.DeletionPending)).
			OrderBy("requestedAt", docstore.Desc),
			func(r *models.DeletionRequest, id string) { r.ID = id })
	})
}

// AppendConsent adds a consent decision to the history and sets its id.
func (s *Store) AppendConsent(ctx context.Context, rec *models.ConsentRecord) error {
	meta := monitor.Meta{UserID: rec.UserID, QueryType: "create", Collection: ConsentsCollection, DocumentCount: 1}
	return s.monitor.Do(ctx, "recordConsent", meta, func(ctx context.Context) error {
		rec.ID = s.docs.NewID()
		if err := s.docs.Create(ctx, docstore.Doc(ConsentsCollection, rec.ID), rec); err != nil {
			return fmt.Errorf("append consent record: %w", err)
		}
		return nil
	})
}

func (s *Store) ListConsents(ctx context.Context, userID string) ([]*models.ConsentRecord, error) {
	meta := monitor.Meta{UserID: userID, QueryType: "query", Collection: ConsentsCollection}
	return monitor.Observe(ctx, s.monitor, "listConsentRecords", meta, func(ctx context.Context) ([]*models.ConsentRecord, error) {
		return queryAll[models.ConsentRecord](ctx, s.docs, docstore.From(ConsentsCollection).
			Where("userId", docstore.OpEqual, userID).
			OrderBy("timestamp", docstore.Desc),
			func(r *models.ConsentRecord, id string) { r.ID = id })
	})
}

// DeletionOps returns deletes for every export request, consent record and
// deletion request of the user except keepID.
func (s *Store) DeletionOps(ctx context.Context, userID, keepID string) (*docstore.Batch, error) {
	batch := docstore.NewBatch()
	for _, coll := range []string{ExportsCollection, DeletionsCollection, ConsentsCollection} {
		snaps, err := s.docs.Query(ctx, docstore.From(coll).Where("userId", docstore.OpEqual, userID))
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", coll, err)
		}
		for _, snap := range snaps {
			if coll == DeletionsCollection && snap.Ref.ID == keepID {
				continue
			}
			batch.Delete(snap.Ref)
		}
	}
	return batch, nil
}

// CompleteDeletionOps returns the write that persists a completed request.
func (s *Store) CompleteDeletionOps(req *models.DeletionRequest) *docstore.Batch {
	return docstore.NewBatch().Set(docstore.Doc(DeletionsCollection, req.ID), req)
}

func queryAll[T any](ctx context.Context, docs docstore.Store, q docstore.Query, setID func(*T, string)) ([]*T, error) {
	snaps, err := docs.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	out := make([]*T, 0, len(snaps))
	for _, snap := range snaps {
		v := new(T)
		if err := snap.DataTo(v); err != nil {
			return nil, err
		}
		setID(v, snap.Ref.ID)
		out = append(out, v)
	}
	return out, nil
}
