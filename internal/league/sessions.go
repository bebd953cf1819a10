package league

import (
	"context"
	"time"

	"github.com/dominopro/dominopro-server/internal/achievement"
	"github.com/dominopro/dominopro-server/internal/domain"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
	"github.com/dominopro/dominopro-server/internal/id"
	"github.com/dominopro/dominopro-server/internal/rewards"
	"github.com/dominopro/dominopro-server/internal/scoring"
)

// FinishResult is what closing a session produced.
type FinishResult struct {
	Game   domain.Game
	Events []domain.AchievementEvent
}

// StartSession opens a scoring table for the given seating.
func (l *League) StartSession(ctx context.Context, mode domain.Mode, players []string) (domain.LiveSession, error) {
	if !mode.Valid() {
		return domain.LiveSession{}, domainerrors.Validationf("unknown mode %q", mode)
	}
	if len(players) != mode.Seats() {
		return domain.LiveSession{}, domainerrors.Validationf("%s needs %d players, got %d", mode, mode.Seats(), len(players))
	}

	var session domain.LiveSession
	_, err := l.commit(ctx, "start_session", func(next *domain.LeagueState) ([]domain.AchievementEvent, error) {
		if len(next.ActiveSessions) >= domain.MaxActiveSessions {
			return nil, domainerrors.CapacityExceeded("too many active sessions")
		}

		scores := make(map[string]int, len(players))
		for _, pid := range players {
			if _, dup := scores[pid]; dup {
				return nil, domainerrors.Validationf("player %q seated twice", pid)
			}
			p, ok := next.Player(pid)
			if !ok {
				return nil, domainerrors.NotFoundf("player %q not found", pid)
			}
			if !p.IsActive() {
				return nil, domainerrors.Validationf("player %q is archived", pid)
			}
			scores[pid] = 0
		}

		session = domain.LiveSession{
			ID:        l.newID(id.Session),
			Mode:      mode,
			Players:   append([]string(nil), players...),
			Scores:    scores,
			IsActive:  true,
			StartTime: l.clock().UnixMilli(),
		}
		next.ActiveSessions = append(next.ActiveSessions, session)
		return nil, nil
	})
	if err != nil {
		return domain.LiveSession{}, err
	}
	return session.Clone(), nil
}

// UpdateScore adds delta to a seated player's running score. Negative deltas
// are corrections; the running score never drops below zero.
func (l *League) UpdateScore(ctx context.Context, sessionID, playerID string, delta int) (domain.LiveSession, error) {
	var updated domain.LiveSession
	_, err := l.commit(ctx, "update_score", func(next *domain.LeagueState) ([]domain.AchievementEvent, error) {
		i := next.SessionIndex(sessionID)
		if i < 0 {
			return nil, domainerrors.InvalidSessionReference(sessionID)
		}
		s := &next.ActiveSessions[i]
		if !s.Seated(playerID) {
			return nil, domainerrors.Validationf("player %q is not seated at session %q", playerID, sessionID)
		}
		s.Scores[playerID] = max(s.Scores[playerID]+delta, 0)
		updated = s.Clone()
		return nil, nil
	})
	if err != nil {
		return domain.LiveSession{}, err
	}
	return updated, nil
}

// CancelSession discards an open table without producing a game.
func (l *League) CancelSession(ctx context.Context, sessionID string) error {
	_, err := l.commit(ctx, "cancel_session", func(next *domain.LeagueState) ([]domain.AchievementEvent, error) {
		i := next.SessionIndex(sessionID)
		if i < 0 {
			return nil, domainerrors.InvalidSessionReference(sessionID)
		}
		next.ActiveSessions = append(next.ActiveSessions[:i], next.ActiveSessions[i+1:]...)
		return nil, nil
	})
	return err
}

// FinishSession closes a table into a game record and applies rewards.
// When scores is nil the running scores of the session are used.
//
// Participants are updated in roster order. For each one the level-up event,
// if any, precedes badge events.
func (l *League) FinishSession(ctx context.Context, sessionID string, winners []string, scores map[string]int, isCapicua bool) (FinishResult, error) {
	var result FinishResult
	_, err := l.commit(ctx, "finish_session", func(next *domain.LeagueState) ([]domain.AchievementEvent, error) {
		i := next.SessionIndex(sessionID)
		if i < 0 {
			return nil, domainerrors.InvalidSessionReference(sessionID)
		}
		session := next.ActiveSessions[i]

		outcome, err := scoring.Resolve(&session, winners, scores, isCapicua)
		if err != nil {
			return nil, err
		}

		now := l.clock()
		game := outcome.Game(l.newID(id.Game), now.UnixMilli())
		newEventID := func() string { return l.newID(id.Achievement) }

		var events []domain.AchievementEvent
		for pi := range next.Players {
			role := outcome.Role(next.Players[pi].ID)
			if role == scoring.RoleNone {
				continue
			}
			p, evs := l.reward(next.Players[pi], role, &outcome, now, newEventID)
			next.Players[pi] = p
			events = append(events, evs...)
		}

		next.Games = append([]domain.Game{game}, next.Games...)
		next.ActiveSessions = append(next.ActiveSessions[:i], next.ActiveSessions[i+1:]...)

		result = FinishResult{Game: game.Clone(), Events: events}
		return events, nil
	})
	if err != nil {
		return FinishResult{}, err
	}
	return result, nil
}

// reward applies stats, XP and badges for one participant.
func (l *League) reward(p domain.Player, role scoring.Role, o *scoring.Outcome, at time.Time, newEventID func() string) (domain.Player, []domain.AchievementEvent) {
	p = p.Clone()
	gain := rewards.XPGamePlayed

	switch role {
	case scoring.RoleWinner:
		p.Wins++
		p.Streak++
		gain += rewards.XPWin
		if o.IsCapicua {
			p.Capicuas++
			gain += rewards.XPCapicua
		}
		if o.IsBlanqueo {
			gain += rewards.XPBlanqueoBonus
		}
		if o.Mode == domain.ModePintintin {
			p.PintintinStats.Wins++
		}
	case scoring.RoleRunnerUp:
		p.Streak = 0
		gain += rewards.XPRunnerUp
	default:
		p.Streak = 0
		p.Losses++
		if o.Mode == domain.ModePintintin {
			p.PintintinStats.Patos++
		}
	}
	p.LastGameDate = at.UnixMilli()

	p, leveledUp := rewards.ApplyXP(p, gain)

	c := achievement.Context{
		Player:   p,
		Won:      role == scoring.RoleWinner,
		Blanqueo: o.IsBlanqueo,
		At:       at,
	}

	var events []domain.AchievementEvent
	if leveledUp {
		events = append(events, achievement.LevelUp(c, newEventID, l.rnd))
	}
	p, badges := achievement.Grant(c, newEventID)
	return p, append(events, badges...)
}
