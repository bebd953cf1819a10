package domain

import (
	"maps"
	"slices"
)

const (
	// DefaultAdminPin is used until an admin changes it.
	DefaultAdminPin = "1234"
	// MaxActiveSessions caps simultaneously open tables.
	MaxActiveSessions = 25
)

// LeagueState is the aggregate root. It is persisted, exported and broadcast
// as a single document; there is no per-entity persistence.
type LeagueState struct {
	Players        []Player      `json:"players"`
	Games          []Game        `json:"games"` // newest first
	ActiveSessions []LiveSession `json:"activeSessions"`
	AdminPin       string        `json:"adminPin"`
}

// NewInitialState returns the canonical empty league.
func NewInitialState() *LeagueState {
	return &LeagueState{
		Players:        []Player{},
		Games:          []Game{},
		ActiveSessions: []LiveSession{},
		AdminPin:       DefaultAdminPin,
	}
}

// HasData reports whether the document holds any players or games.
// A document with neither is treated as empty when loading.
func (s *LeagueState) HasData() bool {
	return s != nil && (len(s.Players) > 0 || len(s.Games) > 0)
}

// Normalize fills absent collections and configuration so that two documents
// describing the same league compare equal regardless of how they were decoded.
func (s *LeagueState) Normalize() {
	if s.Players == nil {
		s.Players = []Player{}
	}
	if s.Games == nil {
		s.Games = []Game{}
	}
	if s.ActiveSessions == nil {
		s.ActiveSessions = []LiveSession{}
	}
	if s.AdminPin == "" {
		s.AdminPin = DefaultAdminPin
	}

	for i := range s.Players {
		p := &s.Players[i]
		if p.Badges == nil {
			p.Badges = []string{}
		}
		if p.Status == "" {
			p.Status = PlayerActive
		}
	}
	for i := range s.Games {
		g := &s.Games[i]
		if g.Winners == nil {
			g.Winners = []string{}
		}
		if g.Losers == nil {
			g.Losers = []string{}
		}
		if g.Scores == nil {
			g.Scores = map[string]int{}
		}
	}
	for i := range s.ActiveSessions {
		ls := &s.ActiveSessions[i]
		if ls.Players == nil {
			ls.Players = []string{}
		}
		if ls.Scores == nil {
			ls.Scores = map[string]int{}
		}
	}
}

// Clone returns a deep copy. Mutations always operate on a clone so that
// readers never observe a half-applied change.
func (s *LeagueState) Clone() *LeagueState {
	if s == nil {
		return nil
	}
	out := &LeagueState{AdminPin: s.AdminPin}
	if s.Players != nil {
		out.Players = make([]Player, len(s.Players))
		for i, p := range s.Players {
			out.Players[i] = p.Clone()
		}
	}
	if s.Games != nil {
		out.Games = make([]Game, len(s.Games))
		for i, g := range s.Games {
			out.Games[i] = g.Clone()
		}
	}
	if s.ActiveSessions != nil {
		out.ActiveSessions = make([]LiveSession, len(s.ActiveSessions))
		for i, ls := range s.ActiveSessions {
			out.ActiveSessions[i] = ls.Clone()
		}
	}
	return out
}

// Public returns a deep copy without the admin PIN, for views that leave the process.
func (s *LeagueState) Public() *LeagueState {
	out := s.Clone()
	if out != nil {
		out.AdminPin = ""
	}
	return out
}

// PlayerIndex returns the position of the player or -1.
func (s *LeagueState) PlayerIndex(id string) int {
	return slices.IndexFunc(s.Players, func(p Player) bool { return p.ID == id })
}

// Player returns a copy of the player with the given id.
func (s *LeagueState) Player(id string) (Player, bool) {
	i := s.PlayerIndex(id)
	if i < 0 {
		return Player{}, false
	}
	return s.Players[i].Clone(), true
}

// SessionIndex returns the position of the active session or -1.
func (s *LeagueState) SessionIndex(id string) int {
	return slices.IndexFunc(s.ActiveSessions, func(ls LiveSession) bool { return ls.ID == id })
}

// Equal reports whether two states hold the same document.
func (s *LeagueState) Equal(o *LeagueState) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.AdminPin == o.AdminPin &&
		slices.EqualFunc(s.Players, o.Players, playerEqual) &&
		slices.EqualFunc(s.Games, o.Games, gameEqual) &&
		slices.EqualFunc(s.ActiveSessions, o.ActiveSessions, sessionEqual)
}

func playerEqual(a, b Player) bool {
	return a.ID == b.ID && a.Name == b.Name && a.Nickname == b.Nickname &&
		a.XP == b.XP && a.Level == b.Level && a.Wins == b.Wins && a.Losses == b.Losses &&
		a.Capicuas == b.Capicuas && a.PintintinStats == b.PintintinStats &&
		a.Streak == b.Streak && a.Status == b.Status && a.IsAdmin == b.IsAdmin &&
		a.LastGameDate == b.LastGameDate && slices.Equal(a.Badges, b.Badges)
}

func gameEqual(a, b Game) bool {
	return a.ID == b.ID && a.Timestamp == b.Timestamp && a.Mode == b.Mode &&
		a.IsCapicua == b.IsCapicua && a.IsBlanqueo == b.IsBlanqueo &&
		slices.Equal(a.Winners, b.Winners) && slices.Equal(a.Losers, b.Losers) &&
		maps.Equal(a.Scores, b.Scores)
}

func sessionEqual(a, b LiveSession) bool {
	return a.ID == b.ID && a.Mode == b.Mode && a.IsActive == b.IsActive &&
		a.StartTime == b.StartTime && slices.Equal(a.Players, b.Players) &&
		maps.Equal(a.Scores, b.Scores)
}
