// Package search keeps an in-memory full-text index of the league roster.
package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/dominopro/dominopro-server/internal/domain"
	"github.com/dominopro/dominopro-server/internal/logger"
)

// PlayerIndex wraps a memory-only Bleve index.
//
// The roster is small and the league document is the source of truth, so
// the index is rebuilt wholesale on every change instead of being persisted.
// All methods are safe for concurrent use.
type PlayerIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// NewPlayerIndex creates an empty index.
func NewPlayerIndex(log *slog.Logger) (*PlayerIndex, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &PlayerIndex{index: index, logger: logger.OrDiscard(log)}, nil
}

// Close releases the index.
func (s *PlayerIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Rebuild replaces the indexed roster with players.
func (s *PlayerIndex) Rebuild(players []domain.Player) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	batch := fresh.NewBatch()
	for i := range players {
		doc := NewPlayerDocument(&players[i])
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			_ = fresh.Close()
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	if err := fresh.Batch(batch); err != nil {
		_ = fresh.Close()
		return fmt.Errorf("commit batch: %w", err)
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close previous player index", slog.String("error", err.Error()))
	}
	s.logger.Debug("rebuilt player index", slog.Int("players", len(players)))
	return nil
}

// DocumentCount returns how many players are indexed.
func (s *PlayerIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
