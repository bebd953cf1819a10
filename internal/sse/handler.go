package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dominopro/dominopro-server/internal/domain"
	"github.com/dominopro/dominopro-server/internal/logger"
)

const (
	defaultHeartbeat = 30 * time.Second
	writeDeadline    = 60 * time.Second
)

// Handler serves GET /api/v1/sync/stream.
type Handler struct {
	manager  *Manager
	snapshot func() *domain.LeagueState
	logger   *slog.Logger

	// Heartbeat is the keepalive interval.
	Heartbeat time.Duration
}

// NewHandler creates a Handler. snapshot supplies the document sent right
// after the connection opens.
func NewHandler(manager *Manager, snapshot func() *domain.LeagueState, log *slog.Logger) *Handler {
	return &Handler{
		manager:   manager,
		snapshot:  snapshot,
		logger:    logger.OrDiscard(log),
		Heartbeat: defaultHeartbeat,
	}
}

// ServeHTTP streams events until the client goes away or the manager shuts down.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("failed to flush headers", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client, err := h.manager.Connect()
	if err != nil {
		h.logger.Error("failed to register SSE client", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusServiceUnavailable)
		return
	}
	defer h.manager.Disconnect(client.ID)

	log := h.logger.With(slog.String("client_id", client.ID))

	if err := h.sendEvent(w, rc, newEvent(EventConnected, ConnectedEventData{ClientID: client.ID})); err != nil {
		log.Warn("failed to send initial connection message", slog.String("error", err.Error()))
		return
	}
	if h.snapshot != nil {
		if err := h.sendEvent(w, rc, NewStateEvent(h.snapshot())); err != nil {
			log.Info("client disconnected during initial state")
			return
		}
	}

	heartbeat := time.NewTicker(h.Heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case evt := <-client.Events:
			if err := h.sendEvent(w, rc, evt); err != nil {
				log.Info("client disconnected during send")
				return
			}
		case <-heartbeat.C:
			if err := h.sendEvent(w, rc, NewHeartbeatEvent()); err != nil {
				log.Info("client disconnected during heartbeat")
				return
			}
		case <-client.Done:
			log.Info("client closed by manager")
			return
		case <-ctx.Done():
			log.Debug("client context canceled")
			return
		}
	}
}

// sendEvent writes one "event:/data:" frame and flushes it.
func (h *Handler) sendEvent(w http.ResponseWriter, rc *http.ResponseController, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}
	if err := rc.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
		h.logger.Debug("failed to set write deadline", slog.String("error", err.Error()))
	}
	return nil
}
