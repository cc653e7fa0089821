// Package store persists user profiles and their collections in the document
// store. Every call is timed by the query monitor.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fooddrop/internal/docstore"
	"fooddrop/internal/monitor"
	"fooddrop/internal/profile/models"
	"fooddrop/pkg/platform/sentinel"
)

const (
	UsersCollection       = "users"
	CollectionsCollection = "collections"
)

// ProfileRef addresses a user's profile document.
func ProfileRef(uid string) docstore.Ref {
	return docstore.Doc(UsersCollection, uid)
}

// CollectionsPath is the collection holding a user's collected items.
func CollectionsPath(uid string) string {
	return docstore.Path(UsersCollection, uid, CollectionsCollection)
}

// ErrProfileNotFound is returned when a user has no profile document.
var ErrProfileNotFound = fmt.Errorf("profile %w", sentinel.ErrNotFound)

type Store struct {
	docs    docstore.Store
	monitor *monitor.Monitor
}

func New(docs docstore.Store, m *monitor.Monitor) *Store {
	return &Store{docs: docs, monitor: m}
}

func (s *Store) Get(ctx context.Context, uid string) (*models.Profile, error) {
	meta := monitor.Meta{UserID: uid, QueryType: "get", Collection: UsersCollection, DocumentCount: 1}
	return monitor.Observe(ctx, s.monitor, "getUserProfile", meta, func(ctx context.Context) (*models.Profile, error) {
		snap, err := s.docs.Get(ctx, ProfileRef(uid))
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, ErrProfileNotFound
			}
			return nil, fmt.Errorf("get profile: %w", err)
		}
		return decodeProfile(snap)
	})
}

// Create writes a new profile. createdAt, lastLoginAt and updatedAt come
// from the store clock. Returns sentinel.ErrConflict when a profile exists.
func (s *Store) Create(ctx context.Context, p *models.Profile) error {
	meta := monitor.Meta{UserID: p.UID, QueryType: "create", Collection: UsersCollection, DocumentCount: 1}
	return s.monitor.Do(ctx, "createUserProfile", meta, func(ctx context.Context) error {
		doc, err := docstore.Encode(p)
		if err != nil {
			return err
		}
		doc["createdAt"] = docstore.ServerTimestamp
		doc["lastLoginAt"] = docstore.ServerTimestamp
		doc["updatedAt"] = docstore.ServerTimestamp
		if err := s.docs.Create(ctx, ProfileRef(p.UID), doc); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		return nil
	})
}

// Update merges fields into the profile and stamps updatedAt.
func (s *Store) Update(ctx context.Context, uid string, fields map[string]any) error {
	meta := monitor.Meta{UserID: uid, QueryType: "update", Collection: UsersCollection, DocumentCount: 1}
	return s.monitor.Do(ctx, "updateUserProfile", meta, func(ctx context.Context) error {
		merged := make(map[string]any, len(fields)+1)
		for k, v := range fields {
			merged[k] = v
		}
		merged["updatedAt"] = docstore.ServerTimestamp
		if err := s.docs.Update(ctx, ProfileRef(uid), merged); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return ErrProfileNotFound
			}
			return fmt.Errorf("update profile: %w", err)
		}
		return nil
	})
}

// Subscribe delivers the current profile, then every committed change. A
// nil profile means the document does not exist.
func (s *Store) Subscribe(ctx context.Context, uid string, onChange func(*models.Profile), onError func(error)) (func(), error) {
	return s.docs.Subscribe(ctx, ProfileRef(uid), func(snap *docstore.Snapshot) {
		if !snap.Exists {
			onChange(nil)
			return
		}
		p, err := decodeProfile(snap)
		if err != nil {
			onError(err)
			return
		}
		onChange(p)
	}, onError)
}

// AddCollectionItem appends an item and returns its id.
func (s *Store) AddCollectionItem(ctx context.Context, item *models.CollectionItem) (string, error) {
	meta := monitor.Meta{UserID: item.UserID, QueryType: "create", Collection: CollectionsCollection, DocumentCount: 1}
	return monitor.Observe(ctx, s.monitor, "addToCollection", meta, func(ctx context.Context) (string, error) {
		id := s.docs.NewID()
		doc, err := docstore.Encode(item)
		if err != nil {
			return "", err
		}
		delete(doc, "id")
		if err := s.docs.Set(ctx, docstore.Doc(CollectionsPath(item.UserID), id), doc); err != nil {
			return "", fmt.Errorf("add collection item: %w", err)
		}
		return id, nil
	})
}

func (s *Store) ListCollections(ctx context.Context, uid string, opts models.ListOptions) ([]*models.CollectionItem, error) {
	meta := monitor.Meta{UserID: uid, QueryType: "query", Collection: CollectionsCollection}
	return monitor.Observe(ctx, s.monitor, "getUserCollections", meta, func(ctx context.Context) ([]*models.CollectionItem, error) {
		dir := docstore.Desc
		if opts.Direction == string(docstore.Asc) {
			dir = docstore.Asc
		}
		q := docstore.From(CollectionsPath(uid)).OrderBy(opts.OrderBy, dir)
		if opts.Limit > 0 {
			q = q.Limit(opts.Limit)
		}
		return s.queryItems(ctx, q)
	})
}

func (s *Store) queryItems(ctx context.Context, q docstore.Query) ([]*models.CollectionItem, error) {
	snaps, err := s.docs.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query collection items: %w", err)
	}
	items := make([]*models.CollectionItem, 0, len(snaps))
	for _, snap := range snaps {
		var it models.CollectionItem
		if err := snap.DataTo(&it); err != nil {
			return nil, err
		}
		it.ID = snap.Ref.ID
		items = append(items, &it)
	}
	return items, nil
}

// RecomputeStats rebuilds the collection totals from every stored item in a
// single transaction, so concurrent inserts cannot leave stale counts.
func (s *Store) RecomputeStats(ctx context.Context, uid string) (models.Stats, error) {
	meta := monitor.Meta{UserID: uid, QueryType: "transaction", Collection: UsersCollection}
	return monitor.Observe(ctx, s.monitor, "updateUserStats", meta, func(ctx context.Context) (models.Stats, error) {
		var stats models.Stats
		err := s.docs.RunTransaction(ctx, func(ctx context.Context) error {
			snap, err := s.docs.Get(ctx, ProfileRef(uid))
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					return ErrProfileNotFound
				}
				return err
			}
			p, err := decodeProfile(snap)
			if err != nil {
				return err
			}
			items, err := s.queryItems(ctx, docstore.From(CollectionsPath(uid)))
			if err != nil {
				return err
			}
			total, distinct, last := models.StatsFrom(items)
			stats = p.Stats
			stats.TotalItemsCollected = total
			stats.CompletedCollections = distinct
			stats.LastCollectedAt = last

			fields := map[string]any{
				"stats.totalItemsCollected":  total,
				"stats.completedCollections": distinct,
				"updatedAt":                  docstore.ServerTimestamp,
			}
			if last != nil {
				fields["stats.lastCollectedAt"] = last.UTC().Format(time.RFC3339Nano)
			}
			return s.docs.Update(ctx, ProfileRef(uid), fields)
		})
		if err != nil {
			return models.Stats{}, fmt.Errorf("recompute stats: %w", err)
		}
		return stats, nil
	})
}

// DeletionOps returns deletes for the profile and every collection item.
func (s *Store) DeletionOps(ctx context.Context, uid string) (*docstore.Batch, error) {
	snaps, err := s.docs.Query(ctx, docstore.From(CollectionsPath(uid)))
	if err != nil {
		return nil, fmt.Errorf("query collection items: %w", err)
	}
	batch := docstore.NewBatch()
	for _, snap := range snaps {
		batch.Delete(snap.Ref)
	}
	batch.Delete(ProfileRef(uid))
	return batch, nil
}

// DeleteUser removes the profile and all collection items atomically.
func (s *Store) DeleteUser(ctx context.Context, uid string) error {
	meta := monitor.Meta{UserID: uid, QueryType: "batch", Collection: UsersCollection}
	return s.monitor.Do(ctx, "deleteUserData", meta, func(ctx context.Context) error {
		return s.docs.RunTransaction(ctx, func(ctx context.Context) error {
			batch, err := s.DeletionOps(ctx, uid)
			if err != nil {
				return err
			}
			if err := batch.Commit(ctx, s.docs); err != nil {
				return fmt.Errorf("delete user data: %w", err)
			}
			return nil
		})
	})
}

func decodeProfile(snap *docstore.Snapshot) (*models.Profile, error) {
	var p models.Profile
	if err := snap.DataTo(&p); err != nil {
		return nil, err
	}
	return &p, nil
}
