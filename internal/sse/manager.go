package sse

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dominopro/dominopro-server/internal/broadcast"
	"github.com/dominopro/dominopro-server/internal/domain"
	"github.com/dominopro/dominopro-server/internal/id"
	"github.com/dominopro/dominopro-server/internal/logger"
)

const clientBuffer = 32

// ErrShutdown is returned by Connect once the manager has shut down.
var ErrShutdown = errors.New("sse manager is shut down")

// Client is one connected stream.
type Client struct {
	ConnectedAt time.Time
	// Events is never closed; watch Done instead.
	Events chan Event
	Done   chan struct{}
	ID     string

	endpoint    *broadcast.Endpoint
	unsubscribe func()
	closeOnce   sync.Once
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.unsubscribe()
		c.endpoint.Close()
		close(c.Done)
	})
}

// Manager tracks connected streams.
type Manager struct {
	hub     *broadcast.Hub
	logger  *slog.Logger
	clients map[string]*Client
	channel string
	mu      sync.RWMutex
	closed  bool
}

// NewManager creates a Manager whose clients join channel on hub.
func NewManager(hub *broadcast.Hub, channel string, log *slog.Logger) *Manager {
	if channel == "" {
		channel = broadcast.DefaultChannel
	}
	return &Manager{
		hub:     hub,
		channel: channel,
		logger:  logger.OrDiscard(log),
		clients: make(map[string]*Client),
	}
}

// Connect registers a stream and joins it to the broadcast channel.
func (m *Manager) Connect() (*Client, error) {
	clientID, err := id.Generate("sse")
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrShutdown
	}

	client := &Client{
		ID:          clientID,
		ConnectedAt: time.Now(),
		Events:      make(chan Event, clientBuffer),
		Done:        make(chan struct{}),
		endpoint:    m.hub.Join(m.channel),
	}
	client.unsubscribe = client.endpoint.Subscribe(func(state *domain.LeagueState, _ time.Time) {
		m.send(client, NewStateEvent(state))
	})
	m.clients[clientID] = client

	m.logger.Info("SSE client connected",
		slog.String("client_id", clientID),
		slog.String("context_id", client.endpoint.ID()),
		slog.Int("total_clients", len(m.clients)))
	return client, nil
}

// Disconnect removes a client and leaves the broadcast channel.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	client, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
	}
	total := len(m.clients)
	m.mu.Unlock()
	if !ok {
		return
	}

	client.close()
	m.logger.Info("SSE client disconnected",
		slog.String("client_id", clientID),
		slog.Duration("duration", time.Since(client.ConnectedAt)),
		slog.Int("total_clients", total))
}

// Achievements pushes each event to every client.
func (m *Manager) Achievements(events []domain.AchievementEvent) {
	for _, evt := range events {
		m.broadcast(NewAchievementEvent(evt))
	}
}

func (m *Manager) broadcast(evt Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var delivered int
	for _, client := range m.clients {
		if m.send(client, evt) {
			delivered++
		}
	}
	m.logger.Debug("event broadcast",
		slog.String("event_type", string(evt.Type)),
		slog.Int("delivered", delivered),
		slog.Int("clients", len(m.clients)))
}

// send never blocks; a full client queue drops the event.
func (m *Manager) send(client *Client, evt Event) bool {
	select {
	case <-client.Done:
		return false
	default:
	}
	select {
	case client.Events <- evt:
		return true
	default:
		m.logger.Warn("dropped event for slow client",
			slog.String("client_id", client.ID),
			slog.String("event_type", string(evt.Type)))
		return false
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Shutdown disconnects every client and refuses new ones.
func (m *Manager) Shutdown(_ context.Context) error {
	m.mu.Lock()
	m.closed = true
	clients := m.clients
	m.clients = make(map[string]*Client)
	m.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
	m.logger.Info("all SSE clients disconnected", slog.Int("count", len(clients)))
	return nil
}
