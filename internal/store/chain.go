package store

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dominopro/dominopro-server/internal/domain"
	"github.com/dominopro/dominopro-server/internal/logger"
)

// Source names where a loaded document came from.
type Source string

// Load sources, in fallback order.
const (
	SourceDurable Source = "durable"
	SourceCache   Source = "cache"
	SourceDefault Source = "default"
)

// LoadReport describes how Chain.Load resolved the document.
type LoadReport struct {
	Source Source
	Healed bool // the cache copy was written back into the durable backend
}

// Chain reads through durable -> cache -> defaults and writes to both backends.
//
// Backend failures never escape Load: the chain always yields a usable state.
// Save reports failures so the caller can log them.
type Chain struct {
	durable Backend
	cache   Backend
	logger  *slog.Logger
}

// NewChain composes the durable and cache backends.
func NewChain(durable, cache Backend, log *slog.Logger) *Chain {
	return &Chain{durable: durable, cache: cache, logger: logger.OrDiscard(log)}
}

// Name implements Backend.
func (c *Chain) Name() string { return "chain" }

// Load implements Backend. It never returns an error.
func (c *Chain) Load(ctx context.Context) (*domain.LeagueState, error) {
	state, _ := c.LoadWithReport(ctx)
	return state, nil
}

// LoadWithReport resolves the league document.
//
// The durable copy wins when it holds players or games. Otherwise the cache is
// consulted, and a cache copy with data is written back into the durable
// backend. An existing but empty durable copy beats the defaults so that its
// configuration survives.
func (c *Chain) LoadWithReport(ctx context.Context) (*domain.LeagueState, LoadReport) {
	durable, err := c.durable.Load(ctx)
	switch {
	case err == nil && durable.HasData():
		return durable, LoadReport{Source: SourceDurable}
	case err != nil && !errors.Is(err, ErrNotFound):
		c.logger.Warn("durable store read failed, falling back to cache",
			"backend", c.durable.Name(),
			"error", err)
	}

	cached, cerr := c.cache.Load(ctx)
	switch {
	case cerr == nil:
		report := LoadReport{Source: SourceCache}
		if cached.HasData() {
			if herr := c.durable.Save(ctx, cached); herr != nil {
				c.logger.Warn("self-heal of durable store failed", "error", herr)
			} else {
				report.Healed = true
				c.logger.Info("durable store healed from cache",
					"players", len(cached.Players),
					"games", len(cached.Games))
			}
		}
		if cached.HasData() || durable == nil {
			return cached, report
		}
	case errors.Is(cerr, ErrNotFound):
	default:
		c.logger.Warn("fallback cache read failed",
			"backend", c.cache.Name(),
			"error", cerr)
	}

	if durable != nil {
		return durable, LoadReport{Source: SourceDurable}
	}
	return domain.NewInitialState(), LoadReport{Source: SourceDefault}
}

// Save writes the document to both backends concurrently. The cache is
// written regardless of the durable backend's health. The returned error
// joins every backend failure.
func (c *Chain) Save(ctx context.Context, state *domain.LeagueState) error {
	var durableErr, cacheErr error
	var g errgroup.Group

	g.Go(func() error {
		durableErr = c.durable.Save(ctx, state)
		return nil
	})
	g.Go(func() error {
		cacheErr = c.cache.Save(ctx, state)
		return nil
	})
	_ = g.Wait()

	return errors.Join(durableErr, cacheErr)
}
