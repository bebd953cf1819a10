// Package store persists the league document.
//
// Store is the durable backend on Badger. It holds a single record that every
// save overwrites. Chain composes it with the fallback cache.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/dominopro/dominopro-server/internal/domain"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
)

// currentKey is the only key the durable store writes.
var currentKey = []byte("league:current")

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens (or creates) the Badger database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Name implements Backend.
func (s *Store) Name() string { return "durable" }

// Load implements Backend. A missing record is ErrNotFound.
func (s *Store) Load(ctx context.Context) (*domain.LeagueState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var state domain.LeagueState
	err := s.get(currentKey, &state)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, ErrNotFound
	case errors.Is(err, ErrCorrupt):
		return nil, err
	case err != nil:
		return nil, domainerrors.TransactionFailed(s.Name(), err)
	}
	state.Normalize()
	return &state, nil
}

// Save implements Backend. The previous record is replaced wholesale.
func (s *Store) Save(ctx context.Context, state *domain.LeagueState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.set(currentKey, state); err != nil {
		return domainerrors.TransactionFailed(s.Name(), err)
	}
	return nil
}

// Ping reports whether the database answers a read transaction.
func (s *Store) Ping() error {
	_, err := s.exists(currentKey)
	return err
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, dest); err != nil {
				return fmt.Errorf("%w: %w", ErrCorrupt, err)
			}
			return nil
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
