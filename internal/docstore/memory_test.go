package docstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fooddrop/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	now   time.Time
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewMemoryStore(WithClock(func() time.Time { return s.now }))
	s.ctx = context.Background()
}

type profileDoc struct {
	UID   string         `json:"uid"`
	Email string         `json:"email"`
	Prefs map[string]any `json:"preferences"`
	At    time.Time      `json:"at"`
}

func (s *MemoryStoreSuite) TestCreateGetUpdate() {
	ref := Doc("users", "u1")
	local := time.Date(2026, 3, 1, 13, 0, 0, 0, time.FixedZone("CET", 3600))
	s.Require().NoError(s.store.Create(s.ctx, ref, profileDoc{UID: "u1", Email: "a@b.com", Prefs: map[string]any{"theme": "light", "language": "en"}, At: local}))

	err := s.store.Create(s.ctx, ref, map[string]any{"uid": "u1"})
	s.ErrorIs(err, sentinel.ErrConflict)

	s.now = s.now.Add(time.Minute)
	s.Require().NoError(s.store.Update(s.ctx, ref, map[string]any{
		"preferences.theme": "dark",
		"updatedAt":         ServerTimestamp,
	}))

	snap, err := s.store.Get(s.ctx, ref)
	s.Require().NoError(err)
	s.True(snap.Exists)
	s.Equal("dark", snap.Data["preferences"].(map[string]any)["theme"])
	s.Equal("en", snap.Data["preferences"].(map[string]any)["language"], "dotted update keeps siblings")
	s.Equal("2026-03-01T12:01:00.000000000Z", snap.Data["updatedAt"])
	s.Equal("2026-03-01T12:00:00.000000000Z", snap.Data["at"], "times are stored in UTC")
	s.Equal(s.now.Add(-time.Minute), snap.CreateTime)
	s.Equal(s.now, snap.UpdateTime)

	var decoded profileDoc
	s.Require().NoError(snap.DataTo(&decoded))
	s.True(decoded.At.Equal(local))
}

func (s *MemoryStoreSuite) TestUpdateMissing() {
	err := s.store.Update(s.ctx, Doc("users", "ghost"), map[string]any{"a": 1})
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.Get(s.ctx, Doc("users", "ghost"))
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.NoError(s.store.Delete(s.ctx, Doc("users", "ghost")), "deleting a missing document is not an error")
}

func (s *MemoryStoreSuite) TestReturnedDataIsIsolated() {
	ref := Doc("users", "u1")
	s.Require().NoError(s.store.Set(s.ctx, ref, map[string]any{"nested": map[string]any{"a": 1}}))

	snap, err := s.store.Get(s.ctx, ref)
	s.Require().NoError(err)
	snap.Data["nested"].(map[string]any)["a"] = 99

	again, err := s.store.Get(s.ctx, ref)
	s.Require().NoError(err)
	s.Equal(float64(1), again.Data["nested"].(map[string]any)["a"])
}

func (s *MemoryStoreSuite) TestQuery() {
	coll := Path("users", "u1", "collections")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, item := range []struct {
		id   string
		food string
		tags []any
	}{
		{"c1", "apple", []any{"fruit"}},
		{"c2", "kale", []any{"veg", "green"}},
		{"c3", "mango", []any{"fruit", "tropical"}},
	} {
		s.Require().NoError(s.store.Set(s.ctx, Doc(coll, item.id), map[string]any{
			"userId":      "u1",
			"foodItemId":  item.food,
			"tags":        item.tags,
			"rank":        i + 1,
			"collectedAt": base.Add(time.Duration(i) * 500 * time.Millisecond),
		}))
	}

	snaps, err := s.store.Query(s.ctx, From(coll).Where("userId", OpEqual, "u1").OrderBy("collectedAt", Desc).Limit(2))
	s.Require().NoError(err)
	s.Equal([]string{"c3", "c2"}, ids(snaps))

	snaps, err = s.store.Query(s.ctx, From(coll).Where("rank", OpGreaterOrEqual, 2).OrderBy("rank", Asc))
	s.Require().NoError(err)
	s.Equal([]string{"c2", "c3"}, ids(snaps))

	snaps, err = s.store.Query(s.ctx, From(coll).Where("collectedAt", OpLess, base.Add(time.Second)))
	s.Require().NoError(err)
	s.Equal([]string{"c1", "c2"}, ids(snaps), "sub-second timestamps compare chronologically")

	snaps, err = s.store.Query(s.ctx, From(coll).Where("tags", OpArrayContainsAny, []any{"tropical", "green"}))
	s.Require().NoError(err)
	s.Equal([]string{"c2", "c3"}, ids(snaps))

	snaps, err = s.store.Query(s.ctx, From(coll).OrderBy("missing", Asc))
	s.Require().NoError(err)
	s.Empty(snaps, "documents without the order field are excluded")
}

func (s *MemoryStoreSuite) TestBatchIsAtomic() {
	s.Require().NoError(s.store.Set(s.ctx, Doc("users", "u1"), map[string]any{"uid": "u1"}))
	s.Require().NoError(s.store.Set(s.ctx, Doc("requests", "r1"), map[string]any{"status": "pending"}))

	s.store.FailWrites(func(ref Ref) error {
		if ref.Collection == "requests" {
			return errors.New("boom")
		}
		return nil
	})
	batch := NewBatch().
		Delete(Doc("users", "u1")).
		Update(Doc("requests", "r1"), map[string]any{"status": "completed"})
	s.Equal(2, batch.Len())
	s.Error(batch.Commit(s.ctx, s.store))

	_, err := s.store.Get(s.ctx, Doc("users", "u1"))
	s.NoError(err, "failed batch leaves earlier writes unapplied")

	s.store.FailWrites(nil)
	s.Require().NoError(batch.Commit(s.ctx, s.store))
	_, err = s.store.Get(s.ctx, Doc("users", "u1"))
	s.ErrorIs(err, sentinel.ErrNotFound)
	snap, err := s.store.Get(s.ctx, Doc("requests", "r1"))
	s.Require().NoError(err)
	s.Equal("completed", snap.Data["status"])
}

func (s *MemoryStoreSuite) TestTransactionReadsOwnWrites() {
	ref := Doc("counters", "c")
	s.Require().NoError(s.store.Set(s.ctx, ref, map[string]any{"n": 1}))

	err := s.store.RunTransaction(s.ctx, func(ctx context.Context) error {
		snap, err := s.store.Get(ctx, ref)
		if err != nil {
			return err
		}
		n := snap.Data["n"].(float64)
		if err := s.store.Update(ctx, ref, map[string]any{"n": n + 1}); err != nil {
			return err
		}
		again, err := s.store.Get(ctx, ref)
		if err != nil {
			return err
		}
		s.Equal(float64(2), again.Data["n"])
		return nil
	})
	s.Require().NoError(err)
}

func (s *MemoryStoreSuite) TestConcurrentTransactionsSerialize() {
	ref := Doc("counters", "c")
	s.Require().NoError(s.store.Set(s.ctx, ref, map[string]any{"n": 0}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.store.RunTransaction(s.ctx, func(ctx context.Context) error {
				snap, err := s.store.Get(ctx, ref)
				if err != nil {
					return err
				}
				return s.store.Update(ctx, ref, map[string]any{"n": snap.Data["n"].(float64) + 1})
			})
		}()
	}
	wg.Wait()

	snap, err := s.store.Get(s.ctx, ref)
	s.Require().NoError(err)
	s.Equal(float64(50), snap.Data["n"])
}

func (s *MemoryStoreSuite) TestSubscribe() {
	ref := Doc("users", "u1")
	var (
		mu    sync.Mutex
		seen  []any
		errCh = make(chan error, 2)
	)
	unsubscribe, err := s.store.Subscribe(s.ctx, ref, func(snap *Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if !snap.Exists {
			seen = append(seen, nil)
			return
		}
		seen = append(seen, snap.Data["theme"])
	}, func(err error) { errCh <- err })
	s.Require().NoError(err)

	s.Require().NoError(s.store.Set(s.ctx, ref, map[string]any{"theme": "light"}))
	s.Require().NoError(s.store.Update(s.ctx, ref, map[string]any{"theme": "dark"}))
	s.Require().NoError(s.store.Set(s.ctx, Doc("users", "other"), map[string]any{"theme": "x"}))

	s.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	s.Equal([]any{nil, "light", "dark"}, seen)
	mu.Unlock()

	unsubscribe()
	s.Require().NoError(s.store.Update(s.ctx, ref, map[string]any{"theme": "light"}))
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	s.Len(seen, 3, "no delivery after unsubscribe")
	mu.Unlock()
	s.Empty(errCh)
}

func (s *MemoryStoreSuite) TestSubscriptionErrorFiresOnce() {
	errCh := make(chan error, 2)
	_, err := s.store.Subscribe(s.ctx, Doc("users", "u1"), func(*Snapshot) {}, func(err error) { errCh <- err })
	s.Require().NoError(err)

	s.Require().NoError(s.store.Close())
	select {
	case err := <-errCh:
		s.ErrorIs(err, sentinel.ErrUnavailable)
	case <-time.After(time.Second):
		s.Fail("expected onError")
	}
	time.Sleep(10 * time.Millisecond)
	s.Empty(errCh)

	_, err = s.store.Subscribe(s.ctx, Doc("users", "u1"), func(*Snapshot) {}, nil)
	s.ErrorIs(err, sentinel.ErrUnavailable)
}

func ids(snaps []*Snapshot) []string {
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.Ref.ID
	}
	return out
}

func TestApplyUpdate(t *testing.T) {
	doc := Document{"preferences": map[string]any{"theme": "light", "cookies": map[string]any{"analytics": false}}}
	applyUpdate(doc, Document{
		"preferences.cookies.analytics": true,
		"stats.total":                   float64(2),
		"displayName":                   nil,
	})
	assert.Equal(t, true, doc["preferences"].(map[string]any)["cookies"].(map[string]any)["analytics"])
	assert.Equal(t, "light", doc["preferences"].(map[string]any)["theme"])
	assert.Equal(t, float64(2), doc["stats"].(map[string]any)["total"])
	v, ok := doc["displayName"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestNormalizeEncodesTimes(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	doc, err := normalize(map[string]any{
		"at":    time.Date(2026, 5, 1, 10, 30, 0, 5, time.FixedZone("X", 7200)),
		"stamp": ServerTimestamp,
		"list":  []any{ServerTimestamp},
		"text":  "2024-05-01T10:00:00+02:00",
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "2026-05-01T08:30:00.000000005Z", doc["at"])
	assert.Equal(t, "2026-05-01T08:30:00.000000000Z", doc["stamp"])
	assert.Equal(t, []any{"2026-05-01T08:30:00.000000000Z"}, doc["list"])
	assert.Equal(t, "2024-05-01T10:00:00+02:00", doc["text"], "strings are never reinterpreted")
}

type encodedItem struct {
	Base
	Notes    string     `json:"notes,omitempty"`
	Count    int        `json:"count"`
	Done     *time.Time `json:"doneAt,omitempty"`
	Skipped  string     `json:"-"`
	internal string
}

type Base struct {
	ID string `json:"id"`
}

func TestEncodeFollowsJSONFieldRules(t *testing.T) {
	done := time.Date(2026, 2, 3, 4, 5, 6, 0, time.FixedZone("Y", -3600))
	doc, err := Encode(encodedItem{Base: Base{ID: "i1"}, Count: 3, Done: &done, Skipped: "x", internal: "y"})
	require.NoError(t, err)
	assert.Equal(t, Document{
		"id":     "i1",
		"count":  float64(3),
		"doneAt": "2026-02-03T05:05:06.000000000Z",
	}, doc)

	doc, err = Encode(map[string]any{"updatedAt": ServerTimestamp})
	require.NoError(t, err)
	assert.Equal(t, ServerTimestamp, doc["updatedAt"], "placeholder resolves at write time")

	_, err = Encode("not an object")
	assert.Error(t, err)
}

func (s *MemoryStoreSuite) TestStringsRoundTripUnchanged() {
	ref := Doc("users/u1/collections", "c1")
	notes := "2024-05-01T10:00:00+02:00"
	s.Require().NoError(s.store.Set(s.ctx, ref, map[string]any{"notes": notes, "details": map[string]any{"seenAt": notes}}))

	snap, err := s.store.Get(s.ctx, ref)
	s.Require().NoError(err)
	s.Equal(notes, snap.Data["notes"])
	s.Equal(notes, snap.Data["details"].(map[string]any)["seenAt"])
}

func TestParseRef(t *testing.T) {
	ref, ok := parseRef("users/u1/collections/c9")
	assert.True(t, ok)
	assert.Equal(t, Doc("users/u1/collections", "c9"), ref)

	_, ok = parseRef("nope")
	assert.False(t, ok)
}
