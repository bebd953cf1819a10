package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominopro/dominopro-server/internal/domain"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
	}
	return s, cleanup
}

func leagueWithPlayer(name string) *domain.LeagueState {
	st := domain.NewInitialState()
	st.Players = append(st.Players, domain.Player{
		ID: "player-" + name, Name: name, Level: domain.LevelPollito,
		Badges: []string{}, Status: domain.PlayerActive,
	})
	return st
}

func TestStore_LoadMissing(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, leagueWithPlayer("ana")))
	require.NoError(t, s.Save(ctx, leagueWithPlayer("beto")))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Players, 1)
	assert.Equal(t, "beto", got.Players[0].Name)
	assert.True(t, leagueWithPlayer("beto").Equal(got))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	ctx := context.Background()

	s, err := New(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, leagueWithPlayer("ana")))
	require.NoError(t, s.Close())

	s, err = New(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Players[0].Name)
	assert.NoError(t, s.Ping())
}

func TestStore_CancelledContext(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, leagueWithPlayer("ana")), context.Canceled)
	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnavailable(t *testing.T) {
	u := NewUnavailable("durable", assert.AnError)

	_, err := u.Load(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrStorageUnavailable)
	assert.ErrorIs(t, u.Save(context.Background(), leagueWithPlayer("x")), domainerrors.ErrStorageUnavailable)
	assert.Equal(t, "durable", u.Name())
}

func TestStore_LoadCorrupt(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	require.NoError(t, s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(currentKey, []byte(`{"players": [`))
	}))

	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrCorrupt)
}
