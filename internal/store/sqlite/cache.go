// Package sqlite implements the fallback cache: a flat key/value mirror of the
// league document kept in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/dominopro/dominopro-server/internal/domain"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
	"github.com/dominopro/dominopro-server/internal/store"

	_ "modernc.org/sqlite"
)

// StateKey is the cache key holding the last known league document.
const StateKey = "DOMINO_PRO_LAST_STATE"

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Cache provides SQLite-backed key/value storage.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the cache database at path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	if logger != nil {
		logger.Info("Fallback cache opened", "path", path)
	}
	return &Cache{db: db, logger: logger}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("run goose migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Get returns the raw value stored under key.
// Returns store.ErrNotFound if the key does not exist.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM cache_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (c *Cache) Set(ctx context.Context, key, value string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (key, value, updated_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// Name implements store.Backend.
func (c *Cache) Name() string { return "cache" }

// Load implements store.Backend. A value that does not decode is store.ErrCorrupt.
func (c *Cache) Load(ctx context.Context) (*domain.LeagueState, error) {
	raw, err := c.Get(ctx, StateKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, domainerrors.TransactionFailed(c.Name(), err)
	}

	var state domain.LeagueState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrCorrupt, err)
	}
	state.Normalize()
	return &state, nil
}

// Save implements store.Backend.
func (c *Cache) Save(ctx context.Context, state *domain.LeagueState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal league state: %w", err)
	}
	if err := c.Set(ctx, StateKey, string(data)); err != nil {
		return domainerrors.TransactionFailed(c.Name(), err)
	}
	return nil
}
