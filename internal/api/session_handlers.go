package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dominopro/dominopro-server/internal/domain"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSessions",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions",
		Summary:     "List live sessions",
		Tags:        []string{"Sessions"},
	}, s.handleListSessions)

	huma.Register(s.api, huma.Operation{
		OperationID:   "startSession",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions",
		Summary:       "Start session",
		Description:   "Opens a scoring table: four players for 2v2, three for Pintintin",
		Tags:          []string{"Sessions"},
		DefaultStatus: http.StatusCreated,
	}, s.handleStartSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get session",
		Tags:        []string{"Sessions"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateScore",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/score",
		Summary:     "Update score",
		Description: "Adds delta to a seated player's running score; negative deltas clamp at zero",
		Tags:        []string{"Sessions"},
	}, s.handleUpdateScore)

	huma.Register(s.api, huma.Operation{
		OperationID: "finishSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/finish",
		Summary:     "Finish session",
		Description: "Records the game, awards XP and badges, and closes the table",
		Tags:        []string{"Sessions"},
	}, s.handleFinishSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelSession",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Cancel session",
		Description: "Discards the table without recording a game",
		Tags:        []string{"Sessions"},
	}, s.handleCancelSession)
}

// === DTOs ===

// SessionView is a live session with the players at or over the target score.
type SessionView struct {
	domain.LiveSession
	Leaders     []string `json:"leaders" doc:"Players at or over the target score"`
	TargetScore int      `json:"targetScore" doc:"Score that ends the game in this mode"`
}

func newSessionView(ls domain.LiveSession) SessionView {
	leaders := ls.Leaders()
	if leaders == nil {
		leaders = []string{}
	}
	return SessionView{LiveSession: ls, Leaders: leaders, TargetScore: ls.Mode.TargetScore()}
}

// SessionOutput wraps one session for Huma.
type SessionOutput struct {
	Body SessionView
}

// SessionListResponse lists live sessions.
type SessionListResponse struct {
	Sessions []SessionView `json:"sessions"`
}

// SessionListOutput wraps the session list for Huma.
type SessionListOutput struct {
	Body SessionListResponse
}

// StartSessionRequest is the request body for opening a table.
type StartSessionRequest struct {
	Mode    domain.Mode `json:"mode" validate:"required,gamemode" enum:"2v2,Pintintin" doc:"Game mode"`
	Players []string    `json:"players" validate:"required,unique,seats,dive,required" doc:"Player IDs in seating order"`
}

// StartSessionInput wraps the start request for Huma.
type StartSessionInput struct {
	Body StartSessionRequest
}

// SessionIDInput addresses one session.
type SessionIDInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// UpdateScoreRequest is the request body for a score change.
type UpdateScoreRequest struct {
	PlayerID string `json:"playerId" validate:"required" doc:"Seated player"`
	Delta    int    `json:"delta" doc:"Points to add; negative to correct"`
}

// UpdateScoreInput wraps the score request for Huma.
type UpdateScoreInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body UpdateScoreRequest
}

// FinishSessionRequest is the request body for closing a table.
type FinishSessionRequest struct {
	Winners   []string       `json:"winners" validate:"required,min=1,unique,dive,required" doc:"Winning player IDs"`
	Scores    map[string]int `json:"scores,omitempty" doc:"Final scores; defaults to the running scores"`
	IsCapicua bool           `json:"isCapicua,omitempty" doc:"The game closed with a capicua"`
}

// FinishSessionInput wraps the finish request for Huma.
type FinishSessionInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body FinishSessionRequest
}

// FinishSessionResponse is the recorded game and the achievements it produced.
type FinishSessionResponse struct {
	Game   domain.Game               `json:"game"`
	Events []domain.AchievementEvent `json:"events"`
}

// FinishSessionOutput wraps the finish response for Huma.
type FinishSessionOutput struct {
	Body FinishSessionResponse
}

// === Handlers ===

func (s *Server) handleListSessions(_ context.Context, _ *struct{}) (*SessionListOutput, error) {
	sessions := s.services.League.ActiveSessions()
	views := make([]SessionView, len(sessions))
	for i, ls := range sessions {
		views[i] = newSessionView(ls)
	}
	return &SessionListOutput{Body: SessionListResponse{Sessions: views}}, nil
}

func (s *Server) handleStartSession(ctx context.Context, input *StartSessionInput) (*SessionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, toHumaError(err)
	}
	ls, err := s.services.League.StartSession(ctx, input.Body.Mode, input.Body.Players)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &SessionOutput{Body: newSessionView(ls)}, nil
}

func (s *Server) handleGetSession(_ context.Context, input *SessionIDInput) (*SessionOutput, error) {
	ls, err := s.services.League.Session(input.ID)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &SessionOutput{Body: newSessionView(ls)}, nil
}

func (s *Server) handleUpdateScore(ctx context.Context, input *UpdateScoreInput) (*SessionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, toHumaError(err)
	}
	ls, err := s.services.League.UpdateScore(ctx, input.ID, input.Body.PlayerID, input.Body.Delta)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &SessionOutput{Body: newSessionView(ls)}, nil
}

func (s *Server) handleFinishSession(ctx context.Context, input *FinishSessionInput) (*FinishSessionOutput, error) {
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, toHumaError(err)
	}

	res, err := s.services.League.FinishSession(ctx, input.ID, input.Body.Winners, input.Body.Scores, input.Body.IsCapicua)
	if err != nil {
		return nil, toHumaError(err)
	}
	events := res.Events
	if events == nil {
		events = []domain.AchievementEvent{}
	}
	return &FinishSessionOutput{Body: FinishSessionResponse{Game: res.Game, Events: events}}, nil
}

func (s *Server) handleCancelSession(ctx context.Context, input *SessionIDInput) (*struct{}, error) {
	if err := s.services.League.CancelSession(ctx, input.ID); err != nil {
		return nil, toHumaError(err)
	}
	return nil, nil
}
