package league

import (
	"context"

	"github.com/dominopro/dominopro-server/internal/domain"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
	"github.com/dominopro/dominopro-server/internal/id"
	"github.com/dominopro/dominopro-server/internal/normalize"
)

// AddPlayer registers a new active player at the lowest rank. Names are
// unique across the roster once case and accents are folded.
func (l *League) AddPlayer(ctx context.Context, name, nickname string) (domain.Player, error) {
	name = normalize.Name(name)
	if name == "" {
		return domain.Player{}, domainerrors.Validation("player name is required")
	}

	p := domain.Player{
		ID:           l.newID(id.Player),
		Name:         name,
		Nickname:     normalize.Name(nickname),
		Level:        domain.LevelPollito,
		Badges:       []string{},
		Status:       domain.PlayerActive,
		LastGameDate: l.clock().UnixMilli(),
	}
	_, err := l.commit(ctx, "add_player", func(next *domain.LeagueState) ([]domain.AchievementEvent, error) {
		for _, existing := range next.Players {
			if normalize.SameName(existing.Name, name) {
				return nil, domainerrors.Conflict("a player named " + existing.Name + " already exists")
			}
		}
		next.Players = append(next.Players, p)
		return nil, nil
	})
	if err != nil {
		return domain.Player{}, err
	}
	return p.Clone(), nil
}

// ArchivePlayer hides a player from new sessions. History is kept.
func (l *League) ArchivePlayer(ctx context.Context, playerID string) error {
	return l.updatePlayer(ctx, "archive_player", playerID, func(p *domain.Player) {
		p.Status = domain.PlayerArchived
	})
}

// UnarchivePlayer makes an archived player selectable again.
func (l *League) UnarchivePlayer(ctx context.Context, playerID string) error {
	return l.updatePlayer(ctx, "unarchive_player", playerID, func(p *domain.Player) {
		p.Status = domain.PlayerActive
	})
}

// ToggleAdmin flips the admin flag of a player.
func (l *League) ToggleAdmin(ctx context.Context, playerID string) error {
	return l.updatePlayer(ctx, "toggle_admin", playerID, func(p *domain.Player) {
		p.IsAdmin = !p.IsAdmin
	})
}

// DeletePlayer removes a player from the roster. Games that mention the
// player are historical records and stay untouched.
func (l *League) DeletePlayer(ctx context.Context, playerID string) error {
	_, err := l.commit(ctx, "delete_player", func(next *domain.LeagueState) ([]domain.AchievementEvent, error) {
		i := next.PlayerIndex(playerID)
		if i < 0 {
			return nil, domainerrors.NotFoundf("player %q not found", playerID)
		}
		next.Players = append(next.Players[:i], next.Players[i+1:]...)
		return nil, nil
	})
	return err
}

func (l *League) updatePlayer(ctx context.Context, op, playerID string, fn func(p *domain.Player)) error {
	_, err := l.commit(ctx, op, func(next *domain.LeagueState) ([]domain.AchievementEvent, error) {
		i := next.PlayerIndex(playerID)
		if i < 0 {
			return nil, domainerrors.NotFoundf("player %q not found", playerID)
		}
		fn(&next.Players[i])
		return nil, nil
	})
	return err
}
