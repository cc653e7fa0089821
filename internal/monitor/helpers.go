package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultCacheTTL  = 5 * time.Minute
	DefaultBatchSize = 10
	DefaultPageSize  = 25
)

// Cached wraps fn with a TTL cache under key. Hits and misses are observed
// as separate operations. Errors are not cached.
func Cached[T any](m *Monitor, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	var (
		mu      sync.Mutex
		value   T
		expires time.Time
		filled  bool
	)
	clock := time.Now
	if m != nil {
		clock = m.now
	}

	return func(ctx context.Context) (T, error) {
		mu.Lock()
		hit := filled && clock().Before(expires)
		cached := value
		mu.Unlock()

		if hit {
			return Observe(ctx, m, "cached_query_"+key, Meta{QueryType: "read", Cached: true},
				func(context.Context) (T, error) { return cached, nil })
		}

		result, err := Observe(ctx, m, "uncached_query_"+key, Meta{QueryType: "read"}, fn)
		if err != nil {
			return result, err
		}
		mu.Lock()
		value, expires, filled = result, clock().Add(ttl), true
		mu.Unlock()
		return result, nil
	}
}

// Batched splits items into chunks of size and runs fn on every chunk
// concurrently, observed as one operation. The first chunk error is returned.
func Batched[T any](ctx context.Context, m *Monitor, items []T, size int, fn func(ctx context.Context, batch []T) error) error {
	if size <= 0 {
		size = DefaultBatchSize
	}
	name := fmt.Sprintf("batched_operation_%d_items", len(items))
	_, err := Observe(ctx, m, name, Meta{QueryType: "write", DocumentCount: len(items)}, func(ctx context.Context) (struct{}, error) {
		g, gctx := errgroup.WithContext(ctx)
		for start := 0; start < len(items); start += size {
			end := min(start+size, len(items))
			chunk := items[start:end]
			g.Go(func() error { return fn(gctx, chunk) })
		}
		return struct{}{}, g.Wait()
	})
	return err
}

// Paginated binds a page size to fn. Each page fetch is observed under its
// page number.
func Paginated[T any](m *Monitor, pageSize int, fn func(ctx context.Context, limit int, startAfter string) ([]T, error)) func(ctx context.Context, page int, startAfter string) ([]T, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return func(ctx context.Context, page int, startAfter string) ([]T, error) {
		if page <= 0 {
			page = 1
		}
		name := fmt.Sprintf("paginated_query_page_%d", page)
		return Observe(ctx, m, name, Meta{QueryType: "read", DocumentCount: pageSize}, func(ctx context.Context) ([]T, error) {
			return fn(ctx, pageSize, startAfter)
		})
	}
}
