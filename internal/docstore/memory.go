package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fooddrop/pkg/platform/sentinel"
)

type record struct {
	data       Document
	createTime time.Time
	updateTime time.Time
}

type docSet map[string]map[string]*record

func (d docSet) clone() docSet {
	out := make(docSet, len(d))
	for coll, docs := range d {
		m := make(map[string]*record, len(docs))
		for id, r := range docs {
			m[id] = &record{data: cloneDocument(r.data), createTime: r.createTime, updateTime: r.updateTime}
		}
		out[coll] = m
	}
	return out
}

func (d docSet) get(ref Ref) *record {
	return d[ref.Collection][ref.ID]
}

func (d docSet) put(ref Ref, r *record) {
	m, ok := d[ref.Collection]
	if !ok {
		m = make(map[string]*record)
		d[ref.Collection] = m
	}
	m[ref.ID] = r
}

func (d docSet) remove(ref Ref) {
	if m, ok := d[ref.Collection]; ok {
		delete(m, ref.ID)
		if len(m) == 0 {
			delete(d, ref.Collection)
		}
	}
}

func snapshotOf(ref Ref, r *record) *Snapshot {
	if r == nil {
		return &Snapshot{Ref: ref}
	}
	return &Snapshot{
		Ref:        ref,
		Exists:     true,
		Data:       cloneDocument(r.data),
		CreateTime: r.createTime,
		UpdateTime: r.updateTime,
	}
}

// memTx is the staged view of a running transaction.
type memTx struct {
	store   *MemoryStore
	docs    docSet
	changed map[Ref]struct{}
}

type memTxKey struct{}

// MemoryStore keeps documents in process. Transactions hold the store lock
// for their whole duration and apply a copy-on-write view on commit.
type MemoryStore struct {
	mu     sync.Mutex
	docs   docSet
	clock  func() time.Time
	closed bool
	subs   map[Ref]map[*subscription]struct{}
	failOn func(ref Ref) error
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the server clock used for ServerTimestamp and metadata.
func WithClock(clock func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		docs:  make(docSet),
		clock: time.Now,
		subs:  make(map[Ref]map[*subscription]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) NewID() string { return uuid.NewString() }

// FailWrites makes every write to a matching document fail with the returned
// error. Pass nil to clear. Intended for exercising failure paths.
func (s *MemoryStore) FailWrites(match func(ref Ref) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn = match
}

// view runs fn against the transaction in ctx, or against the live set under
// the store lock. Changed refs are published after the lock is released.
func (s *MemoryStore) view(ctx context.Context, fn func(tx *memTx) error) error {
	if tx, ok := ctx.Value(memTxKey{}).(*memTx); ok && tx.store == s {
		return fn(tx)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("memory store: %w", sentinel.ErrUnavailable)
	}
	tx := &memTx{store: s, docs: s.docs, changed: make(map[Ref]struct{})}
	err := fn(tx)
	s.publishLocked(tx.changed)
	s.mu.Unlock()
	return err
}

func (s *MemoryStore) checkWrite(ref Ref) error {
	if s.failOn == nil {
		return nil
	}
	return s.failOn(ref)
}

func (s *MemoryStore) Get(ctx context.Context, ref Ref) (*Snapshot, error) {
	var snap *Snapshot
	err := s.view(ctx, func(tx *memTx) error {
		r := tx.docs.get(ref)
		if r == nil {
			return fmt.Errorf("document %s: %w", ref, sentinel.ErrNotFound)
		}
		snap = snapshotOf(ref, r)
		return nil
	})
	return snap, err
}

func (s *MemoryStore) Create(ctx context.Context, ref Ref, data any) error {
	return s.view(ctx, func(tx *memTx) error {
		if err := s.checkWrite(ref); err != nil {
			return err
		}
		if tx.docs.get(ref) != nil {
			return fmt.Errorf("document %s: %w", ref, sentinel.ErrConflict)
		}
		now := s.clock()
		doc, err := normalize(data, now)
		if err != nil {
			return err
		}
		tx.docs.put(ref, &record{data: doc, createTime: now, updateTime: now})
		tx.changed[ref] = struct{}{}
		return nil
	})
}

func (s *MemoryStore) Set(ctx context.Context, ref Ref, data any) error {
	return s.view(ctx, func(tx *memTx) error {
		if err := s.checkWrite(ref); err != nil {
			return err
		}
		now := s.clock()
		doc, err := normalize(data, now)
		if err != nil {
			return err
		}
		created := now
		if existing := tx.docs.get(ref); existing != nil {
			created = existing.createTime
		}
		tx.docs.put(ref, &record{data: doc, createTime: created, updateTime: now})
		tx.changed[ref] = struct{}{}
		return nil
	})
}

func (s *MemoryStore) Update(ctx context.Context, ref Ref, fields map[string]any) error {
	return s.view(ctx, func(tx *memTx) error {
		if err := s.checkWrite(ref); err != nil {
			return err
		}
		existing := tx.docs.get(ref)
		if existing == nil {
			return fmt.Errorf("document %s: %w", ref, sentinel.ErrNotFound)
		}
		now := s.clock()
		patch, err := normalize(fields, now)
		if err != nil {
			return err
		}
		merged := cloneDocument(existing.data)
		applyUpdate(merged, patch)
		tx.docs.put(ref, &record{data: merged, createTime: existing.createTime, updateTime: now})
		tx.changed[ref] = struct{}{}
		return nil
	})
}

func (s *MemoryStore) Delete(ctx context.Context, ref Ref) error {
	return s.view(ctx, func(tx *memTx) error {
		if err := s.checkWrite(ref); err != nil {
			return err
		}
		if tx.docs.get(ref) == nil {
			return nil
		}
		tx.docs.remove(ref)
		tx.changed[ref] = struct{}{}
		return nil
	})
}

func (s *MemoryStore) Query(ctx context.Context, q Query) ([]*Snapshot, error) {
	var out []*Snapshot
	err := s.view(ctx, func(tx *memTx) error {
		nq, err := q.normalized(s.clock())
		if err != nil {
			return err
		}
		docs := tx.docs[q.Collection]
		snaps := make([]*Snapshot, 0, len(docs))
		for id, r := range docs {
			snaps = append(snaps, snapshotOf(Doc(q.Collection, id), r))
		}
		sort.Slice(snaps, func(i, j int) bool { return snaps[i].Ref.ID < snaps[j].Ref.ID })
		out = nq.apply(snaps)
		return nil
	})
	return out, err
}

// RunTransaction serializes against every other store call. Nested calls
// join the outer transaction.
func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(memTxKey{}).(*memTx); ok && tx.store == s {
		return fn(ctx)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("memory store: %w", sentinel.ErrUnavailable)
	}
	tx := &memTx{store: s, docs: s.docs.clone(), changed: make(map[Ref]struct{})}
	err := fn(context.WithValue(ctx, memTxKey{}, tx))
	if err == nil {
		s.docs = tx.docs
		s.publishLocked(tx.changed)
	}
	s.mu.Unlock()
	return err
}

func (s *MemoryStore) Subscribe(ctx context.Context, ref Ref, onChange func(*Snapshot), onError func(error)) (func(), error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("memory store: %w", sentinel.ErrUnavailable)
	}
	sub := newSubscription(ref, onChange, onError)
	sub.deliver(snapshotOf(ref, s.docs.get(ref)))
	if s.subs[ref] == nil {
		s.subs[ref] = make(map[*subscription]struct{})
	}
	s.subs[ref][sub] = struct{}{}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs[ref], sub)
		if len(s.subs[ref]) == 0 {
			delete(s.subs, ref)
		}
		s.mu.Unlock()
		sub.stop()
	}, nil
}

// publishLocked pushes the committed state of each changed ref to its
// subscribers. Delivery is queued, so holding the store lock keeps the order
// of snapshots identical to the order of commits.
func (s *MemoryStore) publishLocked(changed map[Ref]struct{}) {
	for ref := range changed {
		subs := s.subs[ref]
		if len(subs) == 0 {
			continue
		}
		snap := snapshotOf(ref, s.docs.get(ref))
		for sub := range subs {
			sub.deliver(snap)
		}
	}
}

// Close fails every live subscription and rejects further calls.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for ref, subs := range s.subs {
		for sub := range subs {
			sub.fail(fmt.Errorf("subscription %s: %w", ref, sentinel.ErrUnavailable))
		}
		delete(s.subs, ref)
	}
	return nil
}
