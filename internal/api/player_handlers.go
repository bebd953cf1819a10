package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dominopro/dominopro-server/internal/domain"
	"github.com/dominopro/dominopro-server/internal/rewards"
	"github.com/dominopro/dominopro-server/internal/summary"
)

func (s *Server) registerPlayerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createPlayer",
		Method:        http.MethodPost,
		Path:          "/api/v1/players",
		Summary:       "Add player",
		Description:   "Registers a new active player at the bottom rank",
		Tags:          []string{"Players"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePlayer)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPlayer",
		Method:      http.MethodGet,
		Path:        "/api/v1/players/{id}",
		Summary:     "Get player",
		Tags:        []string{"Players"},
	}, s.handleGetPlayer)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPlayerHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/players/{id}/history",
		Summary:     "Get player history",
		Description: "Returns the latest games the player took part in, newest first",
		Tags:        []string{"Players"},
	}, s.handleGetPlayerHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPlayerProgress",
		Method:      http.MethodGet,
		Path:        "/api/v1/players/{id}/progress",
		Summary:     "Get player progress",
		Description: "Returns the player's rank and distance to the next one",
		Tags:        []string{"Players"},
	}, s.handleGetPlayerProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "archivePlayer",
		Method:      http.MethodPost,
		Path:        "/api/v1/players/{id}/archive",
		Summary:     "Archive player",
		Description: "Hides the player from standings and new sessions. Requires the admin PIN.",
		Tags:        []string{"Players", "Admin"},
		Security:    adminSecurity,
	}, s.handleArchivePlayer)

	huma.Register(s.api, huma.Operation{
		OperationID: "unarchivePlayer",
		Method:      http.MethodPost,
		Path:        "/api/v1/players/{id}/unarchive",
		Summary:     "Unarchive player",
		Tags:        []string{"Players", "Admin"},
		Security:    adminSecurity,
	}, s.handleUnarchivePlayer)

	huma.Register(s.api, huma.Operation{
		OperationID: "togglePlayerAdmin",
		Method:      http.MethodPost,
		Path:        "/api/v1/players/{id}/toggle-admin",
		Summary:     "Toggle admin flag",
		Tags:        []string{"Players", "Admin"},
		Security:    adminSecurity,
	}, s.handleTogglePlayerAdmin)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePlayer",
		Method:      http.MethodDelete,
		Path:        "/api/v1/players/{id}",
		Summary:     "Delete player",
		Description: "Removes the player. Past games keep their ids.",
		Tags:        []string{"Players", "Admin"},
		Security:    adminSecurity,
	}, s.handleDeletePlayer)
}

// === DTOs ===

// CreatePlayerRequest is the request body for adding a player.
type CreatePlayerRequest struct {
	Name             string `json:"name" validate:"required,max=40" doc:"Player name"`
	Nickname         string `json:"nickname,omitempty" validate:"max=40" doc:"Optional nickname"`
	GenerateNickname bool   `json:"generateNickname,omitempty" doc:"Suggest a nickname when none is given"`
}

// CreatePlayerInput wraps the create request for Huma.
type CreatePlayerInput struct {
	Body CreatePlayerRequest
}

// PlayerOutput wraps one player for Huma.
type PlayerOutput struct {
	Body PlayerView
}

// PlayerIDInput addresses one player.
type PlayerIDInput struct {
	ID string `path:"id" doc:"Player ID"`
}

// AdminPlayerInput addresses one player behind the admin gate.
type AdminPlayerInput struct {
	AdminPin string `header:"X-Admin-Pin" doc:"Admin PIN"`
	ID       string `path:"id" doc:"Player ID"`
}

// PlayerHistoryInput contains history parameters.
type PlayerHistoryInput struct {
	ID    string `path:"id" doc:"Player ID"`
	Limit int    `query:"limit" default:"5" minimum:"1" maximum:"100" doc:"Maximum games"`
}

// PlayerHistoryResponse lists games.
type PlayerHistoryResponse struct {
	Games []domain.Game `json:"games"`
}

// PlayerHistoryOutput wraps the history for Huma.
type PlayerHistoryOutput struct {
	Body PlayerHistoryResponse
}

// ProgressOutput wraps rank progress for Huma.
type ProgressOutput struct {
	Body rewards.Progress
}

// === Handlers ===

func (s *Server) handleCreatePlayer(ctx context.Context, input *CreatePlayerInput) (*PlayerOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, toHumaError(err)
	}

	nickname := input.Body.Nickname
	if nickname == "" && input.Body.GenerateNickname {
		nickname = summary.Nickname(input.Body.Name, nil)
	}

	p, err := s.services.League.AddPlayer(ctx, input.Body.Name, nickname)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &PlayerOutput{Body: newPlayerView(p)}, nil
}

func (s *Server) handleGetPlayer(_ context.Context, input *PlayerIDInput) (*PlayerOutput, error) {
	p, err := s.services.League.Player(input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &PlayerOutput{Body: newPlayerView(p)}, nil
}

func (s *Server) handleGetPlayerHistory(_ context.Context, input *PlayerHistoryInput) (*PlayerHistoryOutput, error) {
	games, err := s.services.League.PlayerHistory(input.ID, input.Limit)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &PlayerHistoryOutput{Body: PlayerHistoryResponse{Games: games}}, nil
}

func (s *Server) handleGetPlayerProgress(_ context.Context, input *PlayerIDInput) (*ProgressOutput, error) {
	p, err := s.services.League.Player(input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &ProgressOutput{Body: rewards.ProgressFor(p.XP)}, nil
}

func (s *Server) handleArchivePlayer(ctx context.Context, input *AdminPlayerInput) (*PlayerOutput, error) {
	return s.adminPlayerOp(ctx, input, s.services.League.ArchivePlayer)
}

func (s *Server) handleUnarchivePlayer(ctx context.Context, input *AdminPlayerInput) (*PlayerOutput, error) {
	return s.adminPlayerOp(ctx, input, s.services.League.UnarchivePlayer)
}

func (s *Server) handleTogglePlayerAdmin(ctx context.Context, input *AdminPlayerInput) (*PlayerOutput, error) {
	return s.adminPlayerOp(ctx, input, s.services.League.ToggleAdmin)
}

func (s *Server) handleDeletePlayer(ctx context.Context, input *AdminPlayerInput) (*struct{}, error) {
	if err := s.requireAdmin(input.AdminPin); err != nil {
		return nil, err
	}
	if err := s.services.League.DeletePlayer(ctx, input.ID); err != nil {
		return nil, toHumaError(err)
	}
	return nil, nil
}

// adminPlayerOp runs a PIN-gated player mutation and returns the updated player.
func (s *Server) adminPlayerOp(ctx context.Context, input *AdminPlayerInput, op func(context.Context, string) error) (*PlayerOutput, error) {
	if err := s.requireAdmin(input.AdminPin); err != nil {
		return nil, err
	}
	if err := op(ctx, input.ID); err != nil {
		return nil, toHumaError(err)
	}
	p, err := s.services.League.Player(input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &PlayerOutput{Body: newPlayerView(p)}, nil
}
