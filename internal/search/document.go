package search

import (
	"strings"

	"github.com/dominopro/dominopro-server/internal/domain"
	"github.com/dominopro/dominopro-server/internal/normalize"
)

// PlayerDocument is the indexed form of a player.
type PlayerDocument struct {
	ID       string
	Name     string
	Nickname string
	Folded   string
	Status   string
	Level    string
	XP       int
}

// NewPlayerDocument builds the document for p.
func NewPlayerDocument(p *domain.Player) *PlayerDocument {
	return &PlayerDocument{
		ID:       p.ID,
		Name:     p.Name,
		Nickname: p.Nickname,
		Folded:   normalize.Fold(strings.TrimSpace(p.Name + " " + p.Nickname)),
		Status:   string(p.Status),
		Level:    string(p.Level),
		XP:       p.XP,
	}
}

// ToMap converts the document to the field names used by the mapping.
func (d *PlayerDocument) ToMap() map[string]any {
	return map[string]any{
		"name":     d.Name,
		"nickname": d.Nickname,
		"folded":   d.Folded,
		"status":   d.Status,
		"level":    d.Level,
		"xp":       d.XP,
	}
}
