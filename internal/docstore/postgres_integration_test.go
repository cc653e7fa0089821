//go:build integration

package docstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"fooddrop/pkg/platform/sentinel"
	"fooddrop/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(EnsureSchema(s.ctx, s.pg.DB))
	s.store = NewPostgresStore(s.pg.DB, WithListenerDSN(s.pg.DSN))
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.store.Close()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx, "documents"))
}

func (s *PostgresStoreSuite) TestCreateUpdateGet() {
	ref := Doc("users", "u1")
	s.Require().NoError(s.store.Create(s.ctx, ref, map[string]any{
		"uid":         "u1",
		"preferences": map[string]any{"theme": "light", "language": "en"},
	}))
	s.ErrorIs(s.store.Create(s.ctx, ref, map[string]any{}), sentinel.ErrConflict)

	s.Require().NoError(s.store.Update(s.ctx, ref, map[string]any{
		"preferences.theme": "dark",
		"updatedAt":         ServerTimestamp,
	}))

	snap, err := s.store.Get(s.ctx, ref)
	s.Require().NoError(err)
	prefs := snap.Data["preferences"].(map[string]any)
	s.Equal("dark", prefs["theme"])
	s.Equal("en", prefs["language"])
	s.NotEmpty(snap.Data["updatedAt"])

	s.ErrorIs(s.store.Update(s.ctx, Doc("users", "ghost"), map[string]any{"a": 1}), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestQueryMatchesMemorySemantics() {
	coll := Path("users", "u1", "collections")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"c1", "c2", "c3"} {
		s.Require().NoError(s.store.Set(s.ctx, Doc(coll, id), map[string]any{
			"userId":      "u1",
			"rank":        i + 1,
			"tags":        []any{id, "all"},
			"collectedAt": base.Add(time.Duration(i) * 500 * time.Millisecond),
		}))
	}

	snaps, err := s.store.Query(s.ctx, From(coll).Where("userId", OpEqual, "u1").OrderBy("collectedAt", Desc).Limit(2))
	s.Require().NoError(err)
	s.Equal([]string{"c3", "c2"}, ids(snaps))

	snaps, err = s.store.Query(s.ctx, From(coll).Where("rank", OpGreater, 1))
	s.Require().NoError(err)
	s.Equal([]string{"c2", "c3"}, ids(snaps))

	snaps, err = s.store.Query(s.ctx, From(coll).Where("collectedAt", OpLess, base.Add(time.Second)))
	s.Require().NoError(err)
	s.Equal([]string{"c1", "c2"}, ids(snaps))

	snaps, err = s.store.Query(s.ctx, From(coll).Where("tags", OpArrayContainsAny, []any{"c1", "c3"}))
	s.Require().NoError(err)
	s.Equal([]string{"c1", "c3"}, ids(snaps))
}

func (s *PostgresStoreSuite) TestBatchRollsBack() {
	s.Require().NoError(s.store.Set(s.ctx, Doc("users", "u1"), map[string]any{"uid": "u1"}))

	err := s.store.RunTransaction(s.ctx, func(ctx context.Context) error {
		if err := s.store.Delete(ctx, Doc("users", "u1")); err != nil {
			return err
		}
		return errors.New("abort")
	})
	s.Error(err)

	_, err = s.store.Get(s.ctx, Doc("users", "u1"))
	s.NoError(err)
}

func (s *PostgresStoreSuite) TestSubscribeSeesOtherConnectionsWrites() {
	ref := Doc("users", "live")
	var (
		mu   sync.Mutex
		seen []any
	)
	unsubscribe, err := s.store.Subscribe(s.ctx, ref, func(snap *Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if snap.Exists {
			seen = append(seen, snap.Data["theme"])
		}
	}, func(error) {})
	s.Require().NoError(err)
	defer unsubscribe()

	other := NewPostgresStore(s.pg.DB)
	s.Require().NoError(other.Set(s.ctx, ref, map[string]any{"theme": "light"}))
	s.Require().NoError(other.Update(s.ctx, ref, map[string]any{"theme": "dark"}))

	s.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0 && seen[len(seen)-1] == "dark"
	}, 5*time.Second, 20*time.Millisecond)
}
