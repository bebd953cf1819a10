package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dominopro/dominopro-server/internal/color"
	"github.com/dominopro/dominopro-server/internal/domain"
	"github.com/dominopro/dominopro-server/internal/rewards"
	"github.com/dominopro/dominopro-server/internal/search"
)

func (s *Server) registerStateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getState",
		Method:      http.MethodGet,
		Path:        "/api/v1/state",
		Summary:     "Get league state",
		Description: "Returns the whole league document without the admin PIN",
		Tags:        []string{"League"},
	}, s.handleGetState)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStandings",
		Method:      http.MethodGet,
		Path:        "/api/v1/standings",
		Summary:     "Get standings",
		Description: "Returns active players ranked by XP, then wins, then name",
		Tags:        []string{"League"},
	}, s.handleGetStandings)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchPlayers",
		Method:      http.MethodGet,
		Path:        "/api/v1/players/search",
		Summary:     "Search players",
		Description: "Accent- and case-insensitive search over names and nicknames",
		Tags:        []string{"Players"},
	}, s.handleSearchPlayers)
}

// StateOutput wraps the league document.
type StateOutput struct {
	Body *domain.LeagueState
}

// PlayerView is a player with their progress toward the next rank.
type PlayerView struct {
	domain.Player
	Progress    rewards.Progress `json:"progress" doc:"Progress toward the next rank"`
	AvatarColor string           `json:"avatarColor" doc:"Stable #RRGGBB avatar color"`
	Initials    string           `json:"initials" doc:"Avatar initials from the display name"`
}

func newPlayerView(p domain.Player) PlayerView {
	return PlayerView{
		Player:      p,
		Progress:    rewards.ProgressFor(p.XP),
		AvatarColor: color.ForPlayer(p.ID),
		Initials:    color.Initials(p.DisplayName()),
	}
}

// StandingEntry is one row of the leaderboard.
type StandingEntry struct {
	Rank   int        `json:"rank" doc:"1-based position"`
	Player PlayerView `json:"player"`
}

// StandingsResponse contains the leaderboard.
type StandingsResponse struct {
	Standings []StandingEntry `json:"standings"`
}

// StandingsOutput wraps the leaderboard for Huma.
type StandingsOutput struct {
	Body StandingsResponse
}

// SearchPlayersInput contains search parameters.
type SearchPlayersInput struct {
	Query           string `query:"q" maxLength:"60" doc:"Text to match against names and nicknames"`
	Limit           int    `query:"limit" default:"10" minimum:"1" maximum:"50" doc:"Maximum hits"`
	IncludeArchived bool   `query:"archived" doc:"Include archived players"`
}

// SearchPlayersResponse contains search hits.
type SearchPlayersResponse struct {
	Players []search.Hit `json:"players"`
}

// SearchPlayersOutput wraps search hits for Huma.
type SearchPlayersOutput struct {
	Body SearchPlayersResponse
}

func (s *Server) handleGetState(_ context.Context, _ *struct{}) (*StateOutput, error) {
	return &StateOutput{Body: s.services.League.Snapshot().Public()}, nil
}

func (s *Server) handleGetStandings(_ context.Context, _ *struct{}) (*StandingsOutput, error) {
	players := s.services.League.Standings()
	entries := make([]StandingEntry, len(players))
	for i, p := range players {
		entries[i] = StandingEntry{Rank: i + 1, Player: newPlayerView(p)}
	}
	return &StandingsOutput{Body: StandingsResponse{Standings: entries}}, nil
}

func (s *Server) handleSearchPlayers(ctx context.Context, input *SearchPlayersInput) (*SearchPlayersOutput, error) {
	if s.services.Search == nil {
		return nil, huma.Error503ServiceUnavailable("search is not available")
	}
	hits, err := s.services.Search.Search(ctx, search.Params{
		Query:           input.Query,
		Limit:           input.Limit,
		IncludeArchived: input.IncludeArchived,
	})
	if err != nil {
		return nil, toHumaError(err)
	}
	if hits == nil {
		hits = []search.Hit{}
	}
	return &SearchPlayersOutput{Body: SearchPlayersResponse{Players: hits}}, nil
}
