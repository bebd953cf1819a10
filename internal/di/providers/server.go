package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/dominopro/dominopro-server/internal/api"
	"github.com/dominopro/dominopro-server/internal/backup"
	"github.com/dominopro/dominopro-server/internal/config"
	"github.com/dominopro/dominopro-server/internal/league"
	"github.com/dominopro/dominopro-server/internal/sse"
	"github.com/dominopro/dominopro-server/internal/summary"
)

// SSEManagerHandle wraps the SSE manager with shutdown capability.
type SSEManagerHandle struct {
	*sse.Manager
	unsubscribe func()
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.unsubscribe()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager. Streams join the
// sync channel as their own contexts; achievements raised here are relayed
// to them directly.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	hub := do.MustInvoke[*HubHandle](i)
	lg := do.MustInvoke[*LeagueHandle](i)

	manager := sse.NewManager(hub.Hub, cfg.Sync.ChannelName, component(i, "sse"))
	unsubscribe := lg.Subscribe(func(c league.Change) {
		if c.Kind == league.ChangeLocal && len(c.Events) > 0 {
			manager.Achievements(c.Events)
		}
	})

	return &SSEManagerHandle{Manager: manager, unsubscribe: unsubscribe}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	lg := do.MustInvoke[*LeagueHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := component(i, "http")

	services := &api.Services{
		League:  lg.League,
		Search:  searchHandle.PlayerIndex,
		Summary: do.MustInvoke[*summary.Service](i),
		Backups: do.MustInvoke[*backup.Service](i),
	}
	if storeHandle.Store != nil {
		services.Durable = storeHandle.Store
	}

	sseHandler := sse.NewHandler(sseHandle.Manager, lg.Snapshot, component(i, "sse"))
	handler := api.NewServer(services, sseHandle.Manager, sseHandler, api.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		SummaryPerMinute: cfg.Summary.RequestsPerMinute,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
