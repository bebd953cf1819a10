// Package summary produces the league's weekly slang recap.
package summary

import (
	"cmp"
	"slices"

	"github.com/dominopro/dominopro-server/internal/domain"
)

const (
	digestTopPlayers  = 3
	digestRecentGames = 5
)

// TopPlayer is a ranked player as seen by the generator.
type TopPlayer struct {
	Name string `json:"name"`
	XP   int    `json:"xp"`
	Wins int    `json:"wins"`
}

// RecentGame is a finished game as seen by the generator.
type RecentGame struct {
	Mode        domain.Mode `json:"mode"`
	WinnerCount int         `json:"winnerCount"`
}

// Digest is the compact league view handed to a Generator.
type Digest struct {
	TopPlayers  []TopPlayer  `json:"topPlayers"`
	RecentGames []RecentGame `json:"recentGames"`
}

// NewDigest takes the three highest-XP players and the five newest games.
func NewDigest(state *domain.LeagueState) Digest {
	players := slices.Clone(state.Players)
	slices.SortStableFunc(players, func(a, b domain.Player) int {
		return cmp.Compare(b.XP, a.XP)
	})

	d := Digest{
		TopPlayers:  make([]TopPlayer, 0, digestTopPlayers),
		RecentGames: make([]RecentGame, 0, digestRecentGames),
	}
	for _, p := range players[:min(len(players), digestTopPlayers)] {
		d.TopPlayers = append(d.TopPlayers, TopPlayer{Name: p.DisplayName(), XP: p.XP, Wins: p.Wins})
	}
	for _, g := range state.Games[:min(len(state.Games), digestRecentGames)] {
		d.RecentGames = append(d.RecentGames, RecentGame{Mode: g.Mode, WinnerCount: len(g.Winners)})
	}
	return d
}
