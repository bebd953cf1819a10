// Package rewards computes XP gains and the rank ladder.
package rewards

import "github.com/dominopro/dominopro-server/internal/domain"

// XP granted per game outcome.
const (
	XPGamePlayed    = 10
	XPWin           = 20
	XPCapicua       = 25
	XPBlanqueoBonus = 50
	// XPRunnerUp is the Pintintin consolation: a third of a win, rounded down.
	XPRunnerUp = XPWin * 33 / 100
)

// Threshold is the minimum XP for a level.
type Threshold struct {
	Level domain.Level
	MinXP int
}

// Ladder lists the ranks in ascending order.
var Ladder = []Threshold{
	{domain.LevelPollito, 0},
	{domain.LevelPrincipiante, 200},
	{domain.LevelTiguere, 800},
	{domain.LevelMaestro, 2500},
	{domain.LevelLeyenda, 6000},
}

// LevelFor returns the highest rank whose threshold xp reaches.
func LevelFor(xp int) domain.Level {
	level := Ladder[0].Level
	for _, t := range Ladder {
		if xp >= t.MinXP {
			level = t.Level
		}
	}
	return level
}

// Rank returns the position of level on the ladder, or -1 when unknown.
func Rank(level domain.Level) int {
	for i, t := range Ladder {
		if t.Level == level {
			return i
		}
	}
	return -1
}

// ApplyXP adds gain to the player's XP and recomputes the level.
// leveledUp is true when the level changed, however many thresholds were crossed.
// Negative gains are ignored; XP never decreases.
func ApplyXP(p domain.Player, gain int) (out domain.Player, leveledUp bool) {
	if gain > 0 {
		p.XP += gain
	}
	before := p.Level
	p.Level = LevelFor(p.XP)
	return p, before != p.Level
}

// Progress describes where a player stands between two ranks.
type Progress struct {
	Level     domain.Level `json:"level"`
	Next      domain.Level `json:"next,omitempty"`
	Percent   int          `json:"percent"`
	Remaining int          `json:"remaining"`
}

// ProgressFor reports progress toward the next rank. The top rank reports 100%.
func ProgressFor(xp int) Progress {
	level := LevelFor(xp)
	i := Rank(level)
	if i == len(Ladder)-1 {
		return Progress{Level: level, Percent: 100}
	}

	cur, next := Ladder[i], Ladder[i+1]
	span := next.MinXP - cur.MinXP
	return Progress{
		Level:     level,
		Next:      next.Level,
		Percent:   (xp - cur.MinXP) * 100 / span,
		Remaining: next.MinXP - xp,
	}
}
