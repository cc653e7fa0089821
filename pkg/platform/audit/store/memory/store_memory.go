package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	audit "fooddrop/pkg/platform/audit"
)

// InMemoryStore keeps audit entries and metrics in process memory. The store
// clock assigns timestamps, mirroring the document store sink.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]audit.Entry
	metrics []audit.PerformanceMetric
	seq     int
	now     func() time.Time
}

// Option configures an InMemoryStore.
type Option func(*InMemoryStore)

func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{entries: make(map[string][]audit.Entry), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]audit.Entry)
	s.metrics = nil
}

func (s *InMemoryStore) Append(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	entry.ID = fmt.Sprintf("audit-%d", s.seq)
	entry.Timestamp = s.now().UTC()
	s.entries[entry.UserID] = append(s.entries[entry.UserID], entry)
	return nil
}

func (s *InMemoryStore) AppendMetric(_ context.Context, metric audit.PerformanceMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	metric.ID = fmt.Sprintf("metric-%d", s.seq)
	metric.Timestamp = s.now().UTC()
	s.metrics = append(s.metrics, metric)
	return nil
}

// ListByUser returns a user's entries in append order.
func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Entry{}, s.entries[userID]...), nil
}

// ListRecent returns the most recent entries across all users, newest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []audit.Entry
	for _, userEntries := range s.entries {
		all = append(all, userEntries...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Metrics returns every recorded performance metric in append order.
func (s *InMemoryStore) Metrics(_ context.Context) ([]audit.PerformanceMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.PerformanceMetric{}, s.metrics...), nil
}
