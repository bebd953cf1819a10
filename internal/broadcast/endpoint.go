package broadcast

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dominopro/dominopro-server/internal/domain"
)

// Handler receives a remote document and the time it was published.
// Each handler gets its own decoded copy.
type Handler func(state *domain.LeagueState, sentAt time.Time)

// Endpoint is one execution context's membership of a channel.
type Endpoint struct {
	id      string
	channel string
	hub     *Hub
	queue   chan Message
	done    chan struct{}

	mu       sync.Mutex
	handlers map[uint64]Handler
	nextID   uint64

	closeOnce sync.Once
}

// ID identifies the context. Messages it publishes are never delivered back to it.
func (e *Endpoint) ID() string { return e.id }

// Channel returns the channel name the endpoint joined.
func (e *Endpoint) Channel() string { return e.channel }

// Publish serializes state and queues it for every other context on the channel.
// Publishing on a closed endpoint is a no-op.
func (e *Endpoint) Publish(state *domain.LeagueState) error {
	select {
	case <-e.done:
		return nil
	default:
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal broadcast: %w", err)
	}
	e.hub.fanout(Message{
		From:    e.id,
		Channel: e.channel,
		Payload: payload,
		SentAt:  time.Now(),
	})
	return nil
}

// Subscribe registers handler for documents published by other contexts.
// Handlers run on the endpoint's delivery goroutine in arrival order.
func (e *Endpoint) Subscribe(handler Handler) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.handlers[id] = handler
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.handlers, id)
			e.mu.Unlock()
		})
	}
}

// Close leaves the channel. Pending messages are discarded.
func (e *Endpoint) Close() {
	e.hub.leave(e)
	e.stop()
}

func (e *Endpoint) stop() {
	e.closeOnce.Do(func() { close(e.done) })
}

// Done is closed once the endpoint stops delivering.
func (e *Endpoint) Done() <-chan struct{} { return e.done }

func (e *Endpoint) deliver() {
	defer e.hub.wg.Done()

	for {
		select {
		case msg := <-e.queue:
			e.dispatch(msg)
		case <-e.done:
			return
		}
	}
}

func (e *Endpoint) dispatch(msg Message) {
	e.mu.Lock()
	handlers := make([]Handler, 0, len(e.handlers))
	for id := uint64(0); id < e.nextID; id++ {
		if h, ok := e.handlers[id]; ok {
			handlers = append(handlers, h)
		}
	}
	e.mu.Unlock()

	for _, h := range handlers {
		var state domain.LeagueState
		if err := json.Unmarshal(msg.Payload, &state); err != nil {
			e.hub.logger.Warn("discarding undecodable broadcast",
				slog.String("context_id", e.id),
				slog.String("from", msg.From),
				slog.String("error", err.Error()))
			return
		}
		state.Normalize()
		h(&state, msg.SentAt)
	}
}
