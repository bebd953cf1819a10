package domain

import (
	"maps"
	"slices"
)

// Mode is the game variant.
type Mode string

const (
	// ModeTeams is two pairs playing against each other.
	ModeTeams Mode = "2v2"
	// ModePintintin is a three-player free-for-all.
	ModePintintin Mode = "Pintintin"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeTeams || m == ModePintintin
}

// Seats returns how many players a session of this mode seats.
func (m Mode) Seats() int {
	switch m {
	case ModeTeams:
		return 4
	case ModePintintin:
		return 3
	default:
		return 0
	}
}

// TargetScore returns the score that ends a hand in this mode.
func (m Mode) TargetScore() int {
	if m == ModePintintin {
		return 150
	}
	return 200
}

// Game is the immutable record of a finished session.
// Winners and Losers partition the session's seated players.
type Game struct {
	ID         string         `json:"id"`
	Timestamp  int64          `json:"timestamp"` // unix milliseconds
	Mode       Mode           `json:"mode"`
	Winners    []string       `json:"winners"`
	Losers     []string       `json:"losers"`
	IsCapicua  bool           `json:"isCapicua"`
	Scores     map[string]int `json:"scores"`
	IsBlanqueo bool           `json:"isBlanqueo"`
}

// Involves reports whether the player took part in the game.
func (g *Game) Involves(playerID string) bool {
	return slices.Contains(g.Winners, playerID) || slices.Contains(g.Losers, playerID)
}

// Won reports whether the player is among the winners.
func (g *Game) Won(playerID string) bool {
	return slices.Contains(g.Winners, playerID)
}

// Clone returns a deep copy.
func (g Game) Clone() Game {
	g.Winners = slices.Clone(g.Winners)
	g.Losers = slices.Clone(g.Losers)
	g.Scores = maps.Clone(g.Scores)
	return g
}
