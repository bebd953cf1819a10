package providers

import (
	"context"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/dominopro/dominopro-server/internal/config"
	"github.com/dominopro/dominopro-server/internal/logger"
	"github.com/dominopro/dominopro-server/internal/store"
	"github.com/dominopro/dominopro-server/internal/store/sqlite"
)

// StoreHandle wraps the durable store with shutdown capability.
// Store is nil when the durable backend could not be opened; Backend then
// reports it as unavailable and the cache carries the league alone.
type StoreHandle struct {
	Store   *store.Store
	Backend store.Backend
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	if h.Store == nil {
		return nil
	}
	return h.Store.Close()
}

// ProvideStore provides the badger-backed durable store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i).WithField(logger.ComponentKey, "store")

	db, err := store.New(cfg.Storage.DurableDir, log.Logger)
	if err != nil {
		log.WithError(err).Error("Durable store unavailable, continuing on the cache",
			"path", cfg.Storage.DurableDir)
		return &StoreHandle{Backend: store.NewUnavailable("durable", err)}, nil
	}

	log.Info("Durable store initialized", "path", cfg.Storage.DurableDir)
	return &StoreHandle{Store: db, Backend: db}, nil
}

// CacheHandle wraps the sqlite fallback cache with shutdown capability.
type CacheHandle struct {
	Cache   *sqlite.Cache
	Backend store.Backend
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	if h.Cache == nil {
		return nil
	}
	return h.Cache.Close()
}

// ProvideCache provides the sqlite fallback cache.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i).WithField(logger.ComponentKey, "cache")

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.CachePath), 0o755); err != nil {
		return nil, err
	}

	cache, err := sqlite.Open(context.Background(), cfg.Storage.CachePath, log.Logger)
	if err != nil {
		log.WithError(err).Error("Fallback cache unavailable",
			"path", cfg.Storage.CachePath)
		return &CacheHandle{Backend: store.NewUnavailable("cache", err)}, nil
	}

	log.Info("Fallback cache initialized", "path", cfg.Storage.CachePath)
	return &CacheHandle{Cache: cache, Backend: cache}, nil
}

// ProvideChain provides the durable -> cache -> defaults storage chain.
func ProvideChain(i do.Injector) (*store.Chain, error) {
	durable := do.MustInvoke[*StoreHandle](i)
	cache := do.MustInvoke[*CacheHandle](i)
	return store.NewChain(durable.Backend, cache.Backend, component(i, "chain")), nil
}
