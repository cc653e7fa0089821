// Package docstore is the document store boundary: documents addressed by
// collection and id, merge updates, filtered queries, atomic batches, live
// per-document subscriptions and server-assigned timestamps.
//
// Two implementations share the same semantics: MemoryStore for tests and
// development, PostgresStore for deployments.
package docstore

import (
	"context"
	"strings"
	"time"
)

// Document is the generic tree stored per id. Values are JSON shaped:
// string, float64, bool, nil, []any and map[string]any. Timestamps are stored
// as fixed-width UTC strings (see TimeLayout) so they order lexically.
type Document = map[string]any

// TimeLayout is the stored timestamp encoding.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type serverTimestamp struct{}

// ServerTimestamp is replaced by the store's clock when a write is applied.
var ServerTimestamp = serverTimestamp{}

// Ref addresses one document. Collection may be a nested path such as
// "users/u1/collections".
type Ref struct {
	Collection string
	ID         string
}

// Doc builds a Ref.
func Doc(collection, id string) Ref { return Ref{Collection: collection, ID: id} }

func (r Ref) String() string { return r.Collection + "/" + r.ID }

// Path joins collection path segments.
func Path(segments ...string) string { return strings.Join(segments, "/") }

// Snapshot is a read of one document.
type Snapshot struct {
	Ref        Ref
	Exists     bool
	Data       Document
	CreateTime time.Time
	UpdateTime time.Time
}

// DataTo decodes the snapshot into v using JSON field names.
func (s *Snapshot) DataTo(v any) error {
	return Decode(s.Data, v)
}

// Store is implemented by MemoryStore and PostgresStore.
//
// Calls made with the context passed to a RunTransaction callback join that
// transaction; reads inside it lock the documents they return until commit.
type Store interface {
	// Get returns sentinel.ErrNotFound when the document does not exist.
	Get(ctx context.Context, ref Ref) (*Snapshot, error)
	// Create fails with sentinel.ErrConflict when the document exists.
	Create(ctx context.Context, ref Ref, data any) error
	// Set creates or replaces the document.
	Set(ctx context.Context, ref Ref, data any) error
	// Update merges fields into an existing document. Dotted keys address
	// nested fields. Returns sentinel.ErrNotFound when the document is missing.
	Update(ctx context.Context, ref Ref, fields map[string]any) error
	// Delete removes the document; deleting a missing document is not an error.
	Delete(ctx context.Context, ref Ref) error
	Query(ctx context.Context, q Query) ([]*Snapshot, error)
	// RunTransaction runs fn atomically. Returning an error discards every write.
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Subscribe delivers the current state of ref, then every committed change.
	// onError is called at most once, after which the subscription is dead.
	Subscribe(ctx context.Context, ref Ref, onChange func(*Snapshot), onError func(error)) (unsubscribe func(), err error)
	NewID() string
}
