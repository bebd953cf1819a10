package domain

import "slices"

// PlayerStatus is the roster state of a player.
type PlayerStatus string

const (
	// PlayerActive players can be seated at new sessions.
	PlayerActive PlayerStatus = "active"
	// PlayerArchived players keep their history but cannot join sessions.
	PlayerArchived PlayerStatus = "archived"
)

// Level is a rank derived from accumulated XP.
type Level string

// Ranks in ascending order.
const (
	LevelPollito      Level = "Pollito"
	LevelPrincipiante Level = "Principiante"
	LevelTiguere      Level = "Tiguere"
	LevelMaestro      Level = "Maestro"
	LevelLeyenda      Level = "Leyenda"
)

// PintintinStats tracks results specific to the three-player mode.
type PintintinStats struct {
	Wins  int `json:"wins"`
	Patos int `json:"patos"`
}

// Player is a league member and their cumulative statistics.
// XP never decreases and Level is always derived from XP.
type Player struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Nickname       string         `json:"nickname,omitempty"`
	XP             int            `json:"xp"`
	Level          Level          `json:"level"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Capicuas       int            `json:"capicuas"`
	PintintinStats PintintinStats `json:"pintintinStats"`
	Streak         int            `json:"streak"`
	Badges         []string       `json:"badges"`
	Status         PlayerStatus   `json:"status"`
	IsAdmin        bool           `json:"isAdmin"`
	LastGameDate   int64          `json:"lastGameDate"` // unix milliseconds
}

// DisplayName returns the nickname when set, otherwise the name.
func (p *Player) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.Name
}

// IsActive reports whether the player can be seated at a new session.
func (p *Player) IsActive() bool {
	return p.Status != PlayerArchived
}

// HasBadge reports whether the badge was already granted.
func (p *Player) HasBadge(badgeID string) bool {
	return slices.Contains(p.Badges, badgeID)
}

// GamesPlayed counts finished games that affected the win/loss record.
// Runner-up finishes in Pintintin are not counted.
func (p *Player) GamesPlayed() int {
	return p.Wins + p.Losses
}

// TeamWins returns wins earned in 2v2 games.
func (p *Player) TeamWins() int {
	return p.Wins - p.PintintinStats.Wins
}

// Clone returns a deep copy.
func (p Player) Clone() Player {
	p.Badges = slices.Clone(p.Badges)
	return p
}
