package bucket

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAllowWithinLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	store := New(WithClock(clock.Now))
	ctx := context.Background()

	for i := range 3 {
		res, err := store.Allow(ctx, "user:u1:sensitive", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 3-(i+1), res.Remaining)
		assert.Equal(t, clock.Now().Add(time.Minute), res.ResetAt)
	}

	res, err := store.Allow(ctx, "user:u1:sensitive", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, 60, res.RetryAfter)
}

func TestWindowSlides(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
	store := New(WithClock(clock.Now))
	ctx := context.Background()

	_, _ = store.Allow(ctx, "k", 2, time.Minute)
	clock.Advance(30 * time.Second)
	_, _ = store.Allow(ctx, "k", 2, time.Minute)

	res, _ := store.Allow(ctx, "k", 2, time.Minute)
	require.False(t, res.Allowed)
	assert.Equal(t, 30, res.RetryAfter)

	clock.Advance(31 * time.Second)
	res, _ = store.Allow(ctx, "k", 2, time.Minute)
	assert.True(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestKeysAreIndependent(t *testing.T) {
	store := New()
	ctx := context.Background()

	res, _ := store.Allow(ctx, "a", 1, time.Minute)
	require.True(t, res.Allowed)
	res, _ = store.Allow(ctx, "a", 1, time.Minute)
	require.False(t, res.Allowed)

	res, _ = store.Allow(ctx, "b", 1, time.Minute)
	assert.True(t, res.Allowed)
}

func TestReset(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, _ = store.Allow(ctx, "a", 1, time.Minute)
	require.NoError(t, store.Reset(ctx, "a"))

	res, _ := store.Allow(ctx, "a", 1, time.Minute)
	assert.True(t, res.Allowed)
}

func TestConcurrentAllowNeverExceedsLimit(t *testing.T) {
	store := New()
	ctx := context.Background()
	const limit = 10

	var wg sync.WaitGroup
	var allowed atomic.Int32
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res, err := store.Allow(ctx, "hot", limit, time.Minute); err == nil && res.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(limit), allowed.Load())
}
