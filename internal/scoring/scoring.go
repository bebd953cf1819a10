// Package scoring resolves the outcome of a live session at close time.
package scoring

import (
	"maps"
	"slices"

	"github.com/dominopro/dominopro-server/internal/domain"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
)

// Role is how a seated player finished.
type Role int

const (
	// RoleNone means the player was not seated.
	RoleNone Role = iota
	// RoleWinner counts a win.
	RoleWinner
	// RoleRunnerUp is the best Pintintin loser: no loss is recorded.
	RoleRunnerUp
	// RoleLoser counts a loss.
	RoleLoser
)

// Outcome is the resolved result of a session.
type Outcome struct {
	Mode       domain.Mode
	Winners    []string // as declared by the caller
	Losers     []string // seating order
	RunnerUp   string   // Pintintin only; empty otherwise
	Scores     map[string]int
	IsCapicua  bool
	IsBlanqueo bool
}

// Role classifies a player in this outcome.
func (o *Outcome) Role(playerID string) Role {
	switch {
	case slices.Contains(o.Winners, playerID):
		return RoleWinner
	case o.RunnerUp != "" && o.RunnerUp == playerID:
		return RoleRunnerUp
	case slices.Contains(o.Losers, playerID):
		return RoleLoser
	default:
		return RoleNone
	}
}

// Resolve derives losers, blanqueo and the Pintintin runner-up.
//
// winners must be a non-empty set of seated players. When scores is nil the
// session's running scores are used; seated players absent from scores count
// as zero.
//
// Blanqueo holds when every loser scored zero, which is vacuously true when
// nobody lost. The runner-up is the loser with the highest score; ties go to
// the tied loser seated first.
func Resolve(s *domain.LiveSession, winners []string, scores map[string]int, isCapicua bool) (Outcome, error) {
	if len(winners) == 0 {
		return Outcome{}, domainerrors.Validation("at least one winner is required")
	}
	seen := make(map[string]bool, len(winners))
	for _, w := range winners {
		if !s.Seated(w) {
			return Outcome{}, domainerrors.Validationf("winner %q is not seated at session %q", w, s.ID)
		}
		if seen[w] {
			return Outcome{}, domainerrors.Validationf("winner %q listed twice", w)
		}
		seen[w] = true
	}

	if scores == nil {
		scores = s.Scores
	}
	final := make(map[string]int, len(s.Players))
	for _, p := range s.Players {
		final[p] = scores[p]
	}

	out := Outcome{
		Mode:       s.Mode,
		Winners:    slices.Clone(winners),
		Scores:     final,
		IsCapicua:  isCapicua,
		IsBlanqueo: true,
	}
	for _, p := range s.Players {
		if seen[p] {
			continue
		}
		out.Losers = append(out.Losers, p)
		if final[p] != 0 {
			out.IsBlanqueo = false
		}
	}

	if s.Mode == domain.ModePintintin {
		out.RunnerUp = runnerUp(out.Losers, final)
	}
	return out, nil
}

func runnerUp(losers []string, scores map[string]int) string {
	best := ""
	for _, l := range losers {
		if best == "" || scores[l] > scores[best] {
			best = l
		}
	}
	return best
}

// Game builds the historical record for this outcome.
func (o *Outcome) Game(id string, at int64) domain.Game {
	return domain.Game{
		ID:         id,
		Timestamp:  at,
		Mode:       o.Mode,
		Winners:    slices.Clone(o.Winners),
		Losers:     slices.Clone(o.Losers),
		IsCapicua:  o.IsCapicua,
		Scores:     maps.Clone(o.Scores),
		IsBlanqueo: o.IsBlanqueo,
	}
}
