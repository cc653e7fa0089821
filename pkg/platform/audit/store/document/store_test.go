package document

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fooddrop/internal/docstore"
	audit "fooddrop/pkg/platform/audit"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	docs := docstore.NewMemoryStore(docstore.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	s := New(docs)

	require.NoError(t, s.Append(ctx, audit.Entry{
		UserID:    "u1",
		Action:    audit.ActionRegister,
		Details:   map[string]any{"method": "email"},
		IPAddress: "10.0.0.1",
		SessionID: "session_1_abc",
		Timestamp: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, s.Append(ctx, audit.Entry{UserID: "u1", Action: audit.ActionLogin, SessionID: "session_1_abc"}))
	require.NoError(t, s.Append(ctx, audit.Entry{UserID: "u2", Action: audit.ActionLogin, SessionID: "session_2_abc"}))
	require.NoError(t, s.AppendMetric(ctx, audit.PerformanceMetric{Operation: "getProfile", DurationMs: 812, UserID: "u1"}))

	t.Run("entries are listed newest first with store timestamps", func(t *testing.T) {
		entries, err := s.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, audit.ActionLogin, entries[0].Action)
		assert.Equal(t, audit.ActionRegister, entries[1].Action)
		assert.Equal(t, 2026, entries[1].Timestamp.Year())
		assert.Equal(t, "email", entries[1].Details["method"])
		assert.Equal(t, audit.CategoryCompliance, entries[1].Category)
		assert.NotEmpty(t, entries[0].ID)
		assert.NotNil(t, entries[0].Details)
	})

	t.Run("metrics are listed per user", func(t *testing.T) {
		metrics, err := s.ListMetricsByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, metrics, 1)
		assert.Equal(t, "getProfile", metrics[0].Operation)
		assert.InDelta(t, 812, metrics[0].DurationMs, 0.001)
	})

	t.Run("purge removes only the user's records", func(t *testing.T) {
		batch, err := s.PurgeOps(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 3, batch.Len())
		require.NoError(t, batch.Commit(ctx, docs))

		entries, err := s.ListByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, entries)
		others, err := s.ListByUser(ctx, "u2")
		require.NoError(t, err)
		assert.Len(t, others, 1)
	})
}
