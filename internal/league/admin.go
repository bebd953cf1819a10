package league

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dominopro/dominopro-server/internal/domain"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
	"github.com/dominopro/dominopro-server/internal/rewards"
	"github.com/dominopro/dominopro-server/internal/validation"
)

// ResetData replaces the league with the initial empty state.
func (l *League) ResetData(ctx context.Context) error {
	_, err := l.commit(ctx, "reset", func(next *domain.LeagueState) ([]domain.AchievementEvent, error) {
		*next = *domain.NewInitialState()
		return nil, nil
	})
	if err == nil {
		l.ClearAchievement()
	}
	return err
}

// ImportData replaces the league with a previously exported document.
// A document that does not decode, or has no players list, leaves the state
// untouched. Player levels are recomputed from XP.
func (l *League) ImportData(ctx context.Context, data []byte) (*domain.LeagueState, error) {
	var probe struct {
		Players json.RawMessage `json:"players"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, domainerrors.MalformedImport(err)
	}
	if len(probe.Players) == 0 || string(probe.Players) == "null" {
		return nil, domainerrors.MalformedImport(errMissingPlayers)
	}

	var imported domain.LeagueState
	if err := json.Unmarshal(data, &imported); err != nil {
		return nil, domainerrors.MalformedImport(err)
	}
	relevel(&imported)
	return l.commit(ctx, "import", func(next *domain.LeagueState) ([]domain.AchievementEvent, error) {
		*next = imported
		return nil, nil
	})
}

var errMissingPlayers = errors.New(`document has no "players" list`)

// relevel derives every player's level from their XP.
func relevel(state *domain.LeagueState) {
	for i := range state.Players {
		state.Players[i].Level = rewards.LevelFor(state.Players[i].XP)
	}
}

// ExportData serializes the current document. Importing the result
// reproduces the same state.
func (l *League) ExportData() ([]byte, error) {
	data, err := json.MarshalIndent(l.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal league state: %w", err)
	}
	return data, nil
}

// UpdateAdminPin changes the admin PIN. It must be exactly four digits.
func (l *League) UpdateAdminPin(ctx context.Context, pin string) error {
	if !validation.IsPin(pin) {
		return domainerrors.Validation("admin PIN must be exactly 4 digits")
	}
	_, err := l.commit(ctx, "update_admin_pin", func(next *domain.LeagueState) ([]domain.AchievementEvent, error) {
		next.AdminPin = pin
		return nil, nil
	})
	return err
}

// VerifyPin reports whether pin matches the admin PIN.
func (l *League) VerifyPin(pin string) bool {
	l.mu.RLock()
	want := l.state.AdminPin
	l.mu.RUnlock()
	return subtle.ConstantTimeCompare([]byte(pin), []byte(want)) == 1
}
