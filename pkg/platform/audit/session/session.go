// Package session assigns audit session ids. An id is generated once per
// client session and reused by every entry recorded for it.
package session

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultTTL bounds how long an idle session id is reused.
	DefaultTTL = 24 * time.Hour

	randomLength = 9
)

// Registry returns the session id for a client key, creating one on first use.
type Registry interface {
	SessionID(ctx context.Context, key string) (string, error)
}

// NewID builds a session id of the form session_<unixms>_<random>.
func NewID(now time.Time) string {
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	s := strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36)
	if len(s) < randomLength {
		s = strings.Repeat("0", randomLength-len(s)) + s
	}
	return s[:randomLength]
}

type memoryEntry struct {
	id       string
	lastSeen time.Time
}

// MemoryRegistry keeps session ids in process memory.
type MemoryRegistry struct {
	mu  sync.Mutex
	ids map[string]memoryEntry
	ttl time.Duration
	now func() time.Time
}

// MemoryOption configures a MemoryRegistry.
type MemoryOption func(*MemoryRegistry)

func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(r *MemoryRegistry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) MemoryOption {
	return func(r *MemoryRegistry) {
		if now != nil {
			r.now = now
		}
	}
}

func NewMemoryRegistry(opts ...MemoryOption) *MemoryRegistry {
	r := &MemoryRegistry{
		ids: make(map[string]memoryEntry),
		ttl: DefaultTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SessionID returns the live id for key, sliding its expiry.
func (r *MemoryRegistry) SessionID(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.ids[key]; ok && now.Sub(e.lastSeen) < r.ttl {
		e.lastSeen = now
		r.ids[key] = e
		return e.id, nil
	}
	id := NewID(now)
	r.ids[key] = memoryEntry{id: id, lastSeen: now}
	return id, nil
}

// Forget drops the session for key, e.g. on sign-out.
func (r *MemoryRegistry) Forget(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, key)
	return nil
}
