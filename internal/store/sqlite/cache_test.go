package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominopro/dominopro-server/internal/domain"
	"github.com/dominopro/dominopro-server/internal/store"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, err := Open(context.Background(), dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpen(t *testing.T) {
	c := newTestCache(t)

	var journalMode string
	require.NoError(t, c.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var name string
	err := c.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='cache_entries'").Scan(&name)
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	c, err := Open(ctx, dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "k", "v"))
	require.NoError(t, c.Close())

	c, err = Open(ctx, dbPath, nil)
	require.NoError(t, err)
	defer c.Close()

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestGetSet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, c.Set(ctx, "k", "one"))
	require.NoError(t, c.Set(ctx, "k", "two"))

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}

func TestLoadSave(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, err := c.Load(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)

	st := domain.NewInitialState()
	st.AdminPin = "2468"
	st.Players = append(st.Players, domain.Player{ID: "player-1", Name: "Ana", Badges: []string{"bautizo"}, Status: domain.PlayerActive})
	require.NoError(t, c.Save(ctx, st))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.Equal(got))

	raw, err := c.Get(ctx, StateKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"adminPin":"2468"`)
}

func TestLoad_Corrupt(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, StateKey, "{not json"))
	_, err := c.Load(ctx)
	assert.ErrorIs(t, err, store.ErrCorrupt)
}

func TestCache_AsChainFallback(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	st := domain.NewInitialState()
	st.Players = append(st.Players, domain.Player{ID: "player-1", Name: "Ana", Badges: []string{}, Status: domain.PlayerActive})
	require.NoError(t, c.Save(ctx, st))

	durable := store.NewUnavailable("durable", assert.AnError)
	got, report := store.NewChain(durable, c, nil).LoadWithReport(ctx)

	assert.Equal(t, store.SourceCache, report.Source)
	assert.False(t, report.Healed)
	assert.Equal(t, "Ana", got.Players[0].Name)
}
