package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dominopro/dominopro-server/internal/achievement"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
)

func (s *Server) registerBadgeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBadges",
		Method:      http.MethodGet,
		Path:        "/api/v1/badges",
		Summary:     "List badges",
		Description: "Returns the badge catalog in display order",
		Tags:        []string{"Achievements"},
	}, s.handleListBadges)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBadge",
		Method:      http.MethodGet,
		Path:        "/api/v1/badges/{id}",
		Summary:     "Get badge",
		Tags:        []string{"Achievements"},
	}, s.handleGetBadge)
}

// BadgeView is the display metadata of one badge.
type BadgeView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Icon        string           `json:"icon"`
	Tier        achievement.Tier `json:"tier"`
}

func badgeView(b achievement.Badge) BadgeView {
	return BadgeView{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Icon:        b.Icon,
		Tier:        b.Tier,
	}
}

// BadgeListOutput wraps the catalog for Huma.
type BadgeListOutput struct {
	Body struct {
		Badges []BadgeView `json:"badges"`
	}
}

// BadgeIDInput addresses one badge.
type BadgeIDInput struct {
	ID string `path:"id" doc:"Badge ID"`
}

// BadgeOutput wraps one badge for Huma.
type BadgeOutput struct {
	Body BadgeView
}

func (s *Server) handleListBadges(_ context.Context, _ *struct{}) (*BadgeListOutput, error) {
	out := &BadgeListOutput{}
	out.Body.Badges = make([]BadgeView, 0, len(achievement.Catalog))
	for _, b := range achievement.Catalog {
		out.Body.Badges = append(out.Body.Badges, badgeView(b))
	}
	return out, nil
}

func (s *Server) handleGetBadge(_ context.Context, input *BadgeIDInput) (*BadgeOutput, error) {
	b, ok := achievement.Lookup(input.ID)
	if !ok {
		return nil, toHumaError(domainerrors.NotFoundf("badge %s not found", input.ID))
	}
	return &BadgeOutput{Body: badgeView(b)}, nil
}
