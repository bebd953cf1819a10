package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dominopro/dominopro-server/internal/domain"
)

func (s *Server) registerAchievementRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getActiveAchievement",
		Method:      http.MethodGet,
		Path:        "/api/v1/achievements/active",
		Summary:     "Get active achievement",
		Description: "Returns the first achievement of the last finished game until it is dismissed",
		Tags:        []string{"Achievements"},
	}, s.handleGetActiveAchievement)

	huma.Register(s.api, huma.Operation{
		OperationID: "dismissAchievement",
		Method:      http.MethodDelete,
		Path:        "/api/v1/achievements/active",
		Summary:     "Dismiss achievement",
		Tags:        []string{"Achievements"},
	}, s.handleDismissAchievement)
}

// ActiveAchievementResponse holds the achievement on display, if any.
type ActiveAchievementResponse struct {
	Achievement *domain.AchievementEvent `json:"achievement" doc:"Null when nothing is on display"`
}

// ActiveAchievementOutput wraps the achievement for Huma.
type ActiveAchievementOutput struct {
	Body ActiveAchievementResponse
}

func (s *Server) handleGetActiveAchievement(_ context.Context, _ *struct{}) (*ActiveAchievementOutput, error) {
	out := &ActiveAchievementOutput{}
	if evt, ok := s.services.League.ActiveAchievement(); ok {
		out.Body.Achievement = &evt
	}
	return out, nil
}

func (s *Server) handleDismissAchievement(_ context.Context, _ *struct{}) (*struct{}, error) {
	s.services.League.ClearAchievement()
	return nil, nil
}
