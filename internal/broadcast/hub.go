// Package broadcast propagates the league document between execution contexts
// that share a channel name.
//
// Delivery is best-effort and at-most-once. Each endpoint has a bounded queue;
// when it is full the message is dropped for that endpoint only. A publisher
// never receives its own message. There is no ordering across publishers: a
// receiver simply keeps the last document it was handed.
package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dominopro/dominopro-server/internal/logger"
)

// DefaultChannel is the channel contexts of the same league join.
const DefaultChannel = "DOMINO_PRO_SYNC"

const defaultBufferSize = 64

// Message is one published document.
type Message struct {
	From    string
	Channel string
	Payload []byte
	SentAt  time.Time
}

// Hub routes messages between endpoints by channel name.
type Hub struct {
	mu         sync.RWMutex
	channels   map[string]map[string]*Endpoint
	logger     *slog.Logger
	bufferSize int
	wg         sync.WaitGroup
	closed     bool
}

// NewHub creates a hub. bufferSize bounds each endpoint's pending queue.
func NewHub(log *slog.Logger, bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Hub{
		channels:   make(map[string]map[string]*Endpoint),
		logger:     logger.OrDiscard(log),
		bufferSize: bufferSize,
	}
}

// Join registers a new context on the channel and starts its delivery loop.
// Joining a closed hub returns an endpoint that is already closed.
func (h *Hub) Join(channel string) *Endpoint {
	e := &Endpoint{
		id:       uuid.NewString(),
		channel:  channel,
		hub:      h,
		queue:    make(chan Message, h.bufferSize),
		done:     make(chan struct{}),
		handlers: make(map[uint64]Handler),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		e.closeOnce.Do(func() { close(e.done) })
		return e
	}
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[string]*Endpoint)
		h.channels[channel] = members
	}
	members[e.id] = e
	total := len(members)
	h.wg.Add(1)
	h.mu.Unlock()

	go e.deliver()

	h.logger.Debug("broadcast context joined",
		slog.String("channel", channel),
		slog.String("context_id", e.id),
		slog.Int("contexts", total))
	return e
}

// Contexts returns how many endpoints are joined to channel.
func (h *Hub) Contexts(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// fanout queues msg for every endpoint on the channel except the sender.
func (h *Hub) fanout(msg Message) {
	var delivered, dropped int

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	for id, e := range h.channels[msg.Channel] {
		if id == msg.From {
			continue
		}
		select {
		case e.queue <- msg:
			delivered++
		default:
			dropped++
			h.logger.Warn("dropped broadcast for slow context",
				slog.String("channel", msg.Channel),
				slog.String("context_id", id))
		}
	}

	h.logger.Debug("broadcast published",
		slog.String("channel", msg.Channel),
		slog.String("from", msg.From),
		slog.Group("stats",
			slog.Int("delivered", delivered),
			slog.Int("dropped", dropped)))
}

func (h *Hub) leave(e *Endpoint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.channels[e.channel]
	delete(members, e.id)
	if len(members) == 0 {
		delete(h.channels, e.channel)
	}
}

// Shutdown closes every endpoint and waits for their delivery loops to exit.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	var all []*Endpoint
	for _, members := range h.channels {
		for _, e := range members {
			all = append(all, e)
		}
	}
	h.channels = make(map[string]map[string]*Endpoint)
	h.mu.Unlock()

	for _, e := range all {
		e.stop()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("broadcast hub shut down", slog.Int("contexts", len(all)))
		return nil
	case <-ctx.Done():
		h.logger.Warn("broadcast hub shutdown timed out")
		return ctx.Err()
	}
}
