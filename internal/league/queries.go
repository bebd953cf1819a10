package league

import (
	"cmp"
	"slices"

	"github.com/dominopro/dominopro-server/internal/domain"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
)

// DefaultHistoryLimit is how many games PlayerHistory returns when limit <= 0.
const DefaultHistoryLimit = 5

// Standings returns active players ranked by XP, then wins, then name.
func (l *League) Standings() []domain.Player {
	snap := l.Snapshot()
	out := make([]domain.Player, 0, len(snap.Players))
	for _, p := range snap.Players {
		if p.IsActive() {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Player) int {
		return cmp.Or(
			cmp.Compare(b.XP, a.XP),
			cmp.Compare(b.Wins, a.Wins),
			cmp.Compare(a.Name, b.Name),
		)
	})
	return out
}

// Player returns one player.
func (l *League) Player(playerID string) (domain.Player, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.state.Player(playerID)
	if !ok {
		return domain.Player{}, domainerrors.NotFoundf("player %q not found", playerID)
	}
	return p, nil
}

// PlayerHistory returns the newest games the player took part in.
func (l *League) PlayerHistory(playerID string, limit int) ([]domain.Game, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.state.PlayerIndex(playerID) < 0 {
		return nil, domainerrors.NotFoundf("player %q not found", playerID)
	}
	games := []domain.Game{}
	for i := range l.state.Games {
		if len(games) == limit {
			break
		}
		if l.state.Games[i].Involves(playerID) {
			games = append(games, l.state.Games[i].Clone())
		}
	}
	return games, nil
}

// Session returns an open table.
func (l *League) Session(sessionID string) (domain.LiveSession, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := l.state.SessionIndex(sessionID)
	if i < 0 {
		return domain.LiveSession{}, domainerrors.InvalidSessionReference(sessionID)
	}
	return l.state.ActiveSessions[i].Clone(), nil
}

// ActiveSessions returns every open table in creation order.
func (l *League) ActiveSessions() []domain.LiveSession {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.LiveSession, len(l.state.ActiveSessions))
	for i, s := range l.state.ActiveSessions {
		out[i] = s.Clone()
	}
	return out
}

// ActiveAchievement returns the notification awaiting display, if any.
func (l *League) ActiveAchievement() (domain.AchievementEvent, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.active == nil {
		return domain.AchievementEvent{}, false
	}
	return *l.active, true
}

// ClearAchievement dismisses the displayed notification.
func (l *League) ClearAchievement() {
	l.mu.Lock()
	l.active = nil
	l.mu.Unlock()
}
