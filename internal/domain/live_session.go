package domain

import (
	"maps"
	"slices"
)

// LiveSession is an open scoring table. It is destroyed when finished or cancelled.
type LiveSession struct {
	ID        string         `json:"id"`
	Mode      Mode           `json:"mode"`
	Players   []string       `json:"players"` // seating order
	Scores    map[string]int `json:"scores"`
	IsActive  bool           `json:"isActive"`
	StartTime int64          `json:"startTime"` // unix milliseconds
}

// Seated reports whether the player sits at this table.
func (s *LiveSession) Seated(playerID string) bool {
	return slices.Contains(s.Players, playerID)
}

// Score returns the running score of a seated player.
func (s *LiveSession) Score(playerID string) int {
	return s.Scores[playerID]
}

// Leaders returns the seated players whose running score reached the mode's target,
// in seating order.
func (s *LiveSession) Leaders() []string {
	target := s.Mode.TargetScore()
	var leaders []string
	for _, p := range s.Players {
		if s.Scores[p] >= target {
			leaders = append(leaders, p)
		}
	}
	return leaders
}

// Clone returns a deep copy.
func (s LiveSession) Clone() LiveSession {
	s.Players = slices.Clone(s.Players)
	s.Scores = maps.Clone(s.Scores)
	return s
}
