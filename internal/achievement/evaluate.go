package achievement

import (
	"math/rand/v2"

	"github.com/dominopro/dominopro-server/internal/domain"
)

// levelUpMessages are picked at random for rank-up notifications.
var levelUpMessages = []string{
	"¡Nivel superado! Ya no eres tan novato.",
	"¡Subiste de rango! El respeto se gana.",
	"Nuevo nivel desbloqueado. ¡Sigue así!",
	"Tu jerarquía en la liga ha aumentado.",
	"¡Felicidades! Estás haciendo historia.",
}

// Evaluate returns the ids of catalog badges the player has earned but does not
// hold yet, in catalog order. Calling it again after granting returns nothing.
func Evaluate(c Context) []string {
	var earned []string
	for i := range Catalog {
		b := &Catalog[i]
		if c.Player.HasBadge(b.ID) {
			continue
		}
		if b.Earned(c) {
			earned = append(earned, b.ID)
		}
	}
	return earned
}

// Grant evaluates the catalog and appends newly earned badges to the player.
// One event is returned per badge granted; held badges never produce events.
func Grant(c Context, newID func() string) (domain.Player, []domain.AchievementEvent) {
	p := c.Player.Clone()
	ids := Evaluate(c)
	if len(ids) == 0 {
		return p, nil
	}

	events := make([]domain.AchievementEvent, 0, len(ids))
	for _, id := range ids {
		b := byID[id]
		p.Badges = append(p.Badges, id)
		events = append(events, domain.AchievementEvent{
			ID:        newID(),
			PlayerID:  p.ID,
			Type:      domain.AchievementBadge,
			Title:     b.Name,
			Subtitle:  b.Description,
			Icon:      b.Icon,
			Timestamp: c.At.UnixMilli(),
		})
	}
	return p, events
}

// LevelUp builds the rank-up notification for a player.
// rnd picks the flavour message; nil uses the global source.
func LevelUp(c Context, newID func() string, rnd *rand.Rand) domain.AchievementEvent {
	var n int
	if rnd != nil {
		n = rnd.IntN(len(levelUpMessages))
	} else {
		n = rand.IntN(len(levelUpMessages))
	}
	return domain.AchievementEvent{
		ID:        newID(),
		PlayerID:  c.Player.ID,
		Type:      domain.AchievementLevelUp,
		Title:     "Ascenso de Rango",
		Subtitle:  string(c.Player.Level) + ": " + levelUpMessages[n],
		Icon:      "✨",
		Timestamp: c.At.UnixMilli(),
	}
}
