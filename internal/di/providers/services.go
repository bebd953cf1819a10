package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/dominopro/dominopro-server/internal/backup"
	"github.com/dominopro/dominopro-server/internal/broadcast"
	"github.com/dominopro/dominopro-server/internal/config"
	"github.com/dominopro/dominopro-server/internal/league"
	"github.com/dominopro/dominopro-server/internal/store"
	"github.com/dominopro/dominopro-server/internal/summary"
)

// HubHandle wraps the broadcast hub with shutdown capability.
type HubHandle struct {
	*broadcast.Hub
}

// Shutdown implements do.Shutdownable.
func (h *HubHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Hub.Shutdown(ctx)
}

// ProvideHub provides the cross-context broadcaster.
func ProvideHub(i do.Injector) (*HubHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &HubHandle{Hub: broadcast.NewHub(component(i, "broadcast"), cfg.Sync.BufferSize)}, nil
}

// LeagueHandle wraps the league container with shutdown capability.
type LeagueHandle struct {
	*league.League
}

// Shutdown implements do.Shutdownable.
func (h *LeagueHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideLeague provides the league container, loaded from storage and
// joined to the sync channel.
func ProvideLeague(i do.Injector) (*LeagueHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	chain := do.MustInvoke[*store.Chain](i)
	hub := do.MustInvoke[*HubHandle](i)
	log := component(i, "league")

	lg := league.New(league.Options{
		Store:          chain,
		Endpoint:       hub.Join(cfg.Sync.ChannelName),
		Logger:         log,
		PersistTimeout: cfg.Storage.PersistTimeout,
	})

	report := lg.Load(context.Background())
	state := lg.Snapshot()
	log.Info("League loaded",
		"source", report.Source,
		"healed", report.Healed,
		"players", len(state.Players),
		"games", len(state.Games),
	)

	return &LeagueHandle{League: lg}, nil
}

// ProvideSummaryService provides the recap generator.
func ProvideSummaryService(i do.Injector) (*summary.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return summary.NewService(summary.NewLocalGenerator(nil), cfg.Summary.Timeout, component(i, "summary")), nil
}

// ProvideBackupService provides the backup file manager.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return backup.NewService(cfg.Storage.BackupDir, component(i, "backup"), nil), nil
}
