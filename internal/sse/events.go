// Package sse streams league updates to browsers as Server-Sent Events.
//
// Every connection joins the broadcast hub as its own context, so it sees
// each document another context publishes, exactly like a second tab would.
package sse

import (
	"time"

	"github.com/dominopro/dominopro-server/internal/domain"
)

// EventType names an SSE event.
type EventType string

const (
	// EventConnected is the first event of every stream.
	EventConnected EventType = "connected"
	// EventState carries a full league document.
	EventState EventType = "state"
	// EventAchievement carries one level-up or badge event.
	EventAchievement EventType = "achievement"
	// EventHeartbeat keeps idle connections open.
	EventHeartbeat EventType = "heartbeat"
)

// Event is one SSE message. Timestamp is unix milliseconds.
type Event struct {
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
}

// ConnectedEventData is the payload of EventConnected.
type ConnectedEventData struct {
	ClientID string `json:"client_id"`
}

// HeartbeatEventData is the payload of EventHeartbeat.
type HeartbeatEventData struct {
	ServerTime int64 `json:"server_time"`
}

func newEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now().UnixMilli()}
}

// NewStateEvent wraps a league document with the admin PIN removed.
func NewStateEvent(state *domain.LeagueState) Event {
	return newEvent(EventState, state.Public())
}

// NewAchievementEvent wraps an achievement.
func NewAchievementEvent(evt domain.AchievementEvent) Event {
	return newEvent(EventAchievement, evt)
}

// NewHeartbeatEvent creates a heartbeat.
func NewHeartbeatEvent() Event {
	now := time.Now().UnixMilli()
	return Event{Type: EventHeartbeat, Data: HeartbeatEventData{ServerTime: now}, Timestamp: now}
}
