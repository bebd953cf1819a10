package providers

import (
	"github.com/samber/do/v2"

	"github.com/dominopro/dominopro-server/internal/league"
	"github.com/dominopro/dominopro-server/internal/search"
)

// SearchIndexHandle wraps the player index with shutdown capability.
type SearchIndexHandle struct {
	*search.PlayerIndex
	unsubscribe func()
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	h.unsubscribe()
	return h.Close()
}

// ProvideSearchIndex provides the player index and keeps it in step with
// every league change.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	lg := do.MustInvoke[*LeagueHandle](i)
	log := component(i, "search")

	index, err := search.NewPlayerIndex(log)
	if err != nil {
		return nil, err
	}

	if err := index.Rebuild(lg.Snapshot().Players); err != nil {
		log.Warn("Initial player index build failed", "error", err)
	}

	unsubscribe := lg.Subscribe(func(c league.Change) {
		if err := index.Rebuild(c.State.Players); err != nil {
			log.Warn("Player index rebuild failed", "change", c.Kind, "error", err)
		}
	})

	docCount, _ := index.DocumentCount()
	log.Info("Player index initialized", "documents", docCount)

	return &SearchIndexHandle{PlayerIndex: index, unsubscribe: unsubscribe}, nil
}
