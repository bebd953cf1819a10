package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominopro/dominopro-server/internal/achievement"
	"github.com/dominopro/dominopro-server/internal/backup"
	"github.com/dominopro/dominopro-server/internal/broadcast"
	"github.com/dominopro/dominopro-server/internal/domain"
	"github.com/dominopro/dominopro-server/internal/league"
	"github.com/dominopro/dominopro-server/internal/search"
	"github.com/dominopro/dominopro-server/internal/sse"
	"github.com/dominopro/dominopro-server/internal/store"
	"github.com/dominopro/dominopro-server/internal/store/sqlite"
	"github.com/dominopro/dominopro-server/internal/summary"
)

const defaultPinHeader = "X-Admin-Pin: " + domain.DefaultAdminPin

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api    humatest.TestAPI
	league *league.League
}

type testEnvelope[T any] struct {
	Data    T               `json:"data"`
	Details json.RawMessage `json:"details"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Version int             `json:"v"`
	Success bool            `json:"success"`
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	durable, err := store.New(filepath.Join(dir, "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = durable.Close() })

	cache, err := sqlite.Open(ctx, filepath.Join(dir, "cache.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	hub := broadcast.NewHub(nil, 16)
	t.Cleanup(func() { _ = hub.Shutdown(context.Background()) })

	lg := league.New(league.Options{
		Store:    store.NewChain(durable, cache, nil),
		Endpoint: hub.Join(broadcast.DefaultChannel),
	})
	t.Cleanup(lg.Close)
	lg.Load(ctx)

	index, err := search.NewPlayerIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	lg.Subscribe(func(c league.Change) { _ = index.Rebuild(c.State.Players) })

	manager := sse.NewManager(hub, broadcast.DefaultChannel, nil)
	t.Cleanup(func() { _ = manager.Shutdown(context.Background()) })

	services := &Services{
		League:  lg,
		Search:  index,
		Summary: summary.NewService(summary.NewLocalGenerator(nil), time.Second, nil),
		Backups: backup.NewService(filepath.Join(dir, "backups"), nil, nil),
		Durable: durable,
	}
	s := NewServer(services, manager, sse.NewHandler(manager, lg.Snapshot, nil), opts, nil)
	t.Cleanup(s.Close)

	return &testServer{Server: s, api: humatest.Wrap(t, s.API()), league: lg}
}

func (ts *testServer) addPlayer(t *testing.T, name string) domain.Player {
	t.Helper()
	resp := ts.api.Post("/api/v1/players", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[domain.Player](t, resp).Data
}

func (ts *testServer) addPlayers(t *testing.T, names ...string) []string {
	t.Helper()
	ids := make([]string, len(names))
	for i, n := range names {
		ids[i] = ts.addPlayer(t, n).ID
	}
	return ids
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.Version)
	assert.Equal(t, statusHealthy, env.Data.Status)
	assert.Equal(t, statusHealthy, env.Data.Components["storage"].Status)
	assert.Equal(t, "0 players indexed", env.Data.Components["search"].Message)
	assert.Equal(t, "0 connected clients", env.Data.Components["sse"].Message)
}

func TestCreatePlayer(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/players", map[string]any{"name": "  José   Pérez ", "nickname": "Pepe"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[PlayerView](t, resp)
	assert.Equal(t, "José Pérez", env.Data.Name)
	assert.Equal(t, "Pepe", env.Data.Nickname)
	assert.Equal(t, "P", env.Data.Initials)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, env.Data.AvatarColor)
	assert.Equal(t, domain.LevelPollito, env.Data.Level)
	assert.Equal(t, 0, env.Data.Progress.Percent)
	assert.NotEmpty(t, env.Data.Progress.Next)

	resp = ts.api.Post("/api/v1/players", map[string]any{"name": "Ana", "generateNickname": true})
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, decode[PlayerView](t, resp).Data.Nickname, "Ana")
}

func TestCreatePlayer_Validation(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Post("/api/v1/players", map[string]any{"name": ""})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	env := decode[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Contains(t, string(env.Details), "name")

	resp = ts.api.Post("/api/v1/players", map[string]any{"name": "   "})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	assert.Empty(t, ts.league.Snapshot().Players)
}

func TestCreatePlayer_DuplicateName(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.addPlayer(t, "José Pérez")

	resp := ts.api.Post("/api/v1/players", map[string]any{"name": "jose  perez"})
	require.Equal(t, http.StatusConflict, resp.Code, resp.Body.String())
	assert.Equal(t, "CONFLICT", decode[any](t, resp).Code)
	assert.Len(t, ts.league.Snapshot().Players, 1)
}

func TestBadges(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/api/v1/badges")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	list := decode[struct {
		Badges []BadgeView `json:"badges"`
	}](t, resp).Data.Badges
	require.Len(t, list, len(achievement.Catalog))
	assert.Equal(t, "bautizo", list[0].ID)

	resp = ts.api.Get("/api/v1/badges/bautizo")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	badge := decode[BadgeView](t, resp).Data
	assert.Equal(t, "El Bautizo", badge.Name)
	assert.Equal(t, achievement.TierBronze, badge.Tier)

	resp = ts.api.Get("/api/v1/badges/no-such-badge")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, resp).Code)
}

func TestStateHidesAdminPin(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.addPlayer(t, "Ana")

	resp := ts.api.Get("/api/v1/state")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[map[string]any](t, resp)
	assert.Equal(t, "", env.Data["adminPin"])
	assert.Len(t, env.Data["players"], 1)
}

func TestStandingsAndSearch(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.addPlayers(t, "José", "Beto", "Carla")

	resp := ts.api.Get("/api/v1/standings")
	require.Equal(t, http.StatusOK, resp.Code)
	standings := decode[StandingsResponse](t, resp).Data.Standings
	require.Len(t, standings, 3)
	assert.Equal(t, 1, standings[0].Rank)

	resp = ts.api.Get("/api/v1/players/search?q=jose")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	hits := decode[SearchPlayersResponse](t, resp).Data.Players
	require.NotEmpty(t, hits)
	assert.Equal(t, "José", hits[0].Name)
}

func TestSessionLifecycle(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ids := ts.addPlayers(t, "Ana", "Beto", "Carla", "Dani")

	resp := ts.api.Post("/api/v1/sessions", map[string]any{"mode": "2v2", "players": ids})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	session := decode[SessionView](t, resp).Data
	assert.Equal(t, 200, session.TargetScore)
	assert.Empty(t, session.Leaders)

	resp = ts.api.Post("/api/v1/sessions/"+session.ID+"/score", map[string]any{"playerId": ids[0], "delta": 205})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	scored := decode[SessionView](t, resp).Data
	assert.Equal(t, 205, scored.Scores[ids[0]])
	assert.Equal(t, []string{ids[0]}, scored.Leaders)

	resp = ts.api.Get("/api/v1/sessions")
	require.Len(t, decode[SessionListResponse](t, resp).Data.Sessions, 1)

	resp = ts.api.Post("/api/v1/sessions/"+session.ID+"/finish", map[string]any{
		"winners": []string{ids[0], ids[1]},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	finished := decode[FinishSessionResponse](t, resp).Data
	assert.ElementsMatch(t, []string{ids[2], ids[3]}, finished.Game.Losers)
	assert.Equal(t, 205, finished.Game.Scores[ids[0]])
	require.NotEmpty(t, finished.Events)

	resp = ts.api.Get("/api/v1/achievements/active")
	active := decode[ActiveAchievementResponse](t, resp).Data.Achievement
	require.NotNil(t, active)
	assert.Equal(t, finished.Events[0].ID, active.ID)

	resp = ts.api.Delete("/api/v1/achievements/active")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	resp = ts.api.Get("/api/v1/achievements/active")
	assert.Nil(t, decode[ActiveAchievementResponse](t, resp).Data.Achievement)

	resp = ts.api.Get("/api/v1/players/" + ids[0] + "/history")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[PlayerHistoryResponse](t, resp).Data.Games, 1)

	resp = ts.api.Get("/api/v1/players/" + ids[0] + "/progress")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Positive(t, decode[map[string]any](t, resp).Data["percent"])

	resp = ts.api.Get("/api/v1/sessions/" + session.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "INVALID_SESSION_REFERENCE", decode[any](t, resp).Code)
}

func TestStartSession_Errors(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ids := ts.addPlayers(t, "Ana", "Beto", "Carla", "Dani")

	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
		wantErr  string
	}{
		{"unknown mode", map[string]any{"mode": "1v1", "players": ids[:2]}, http.StatusUnprocessableEntity, "VALIDATION"},
		{"wrong seat count", map[string]any{"mode": "Pintintin", "players": ids}, http.StatusBadRequest, "VALIDATION"},
		{"duplicate player", map[string]any{"mode": "Pintintin", "players": []string{ids[0], ids[0], ids[1]}}, http.StatusBadRequest, "VALIDATION"},
		{"unknown player", map[string]any{"mode": "Pintintin", "players": []string{ids[0], ids[1], "player-x"}}, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/sessions", tt.body)
			require.Equal(t, tt.wantCode, resp.Code, resp.Body.String())
			assert.Equal(t, tt.wantErr, decode[any](t, resp).Code)
		})
	}
	assert.Empty(t, ts.league.ActiveSessions())
}

func TestCancelSession(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ids := ts.addPlayers(t, "Ana", "Beto", "Carla")

	resp := ts.api.Post("/api/v1/sessions", map[string]any{"mode": "Pintintin", "players": ids})
	require.Equal(t, http.StatusCreated, resp.Code)
	sessionID := decode[SessionView](t, resp).Data.ID

	resp = ts.api.Delete("/api/v1/sessions/" + sessionID)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Delete("/api/v1/sessions/" + sessionID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Empty(t, ts.league.Snapshot().Games)
}

func TestAdminGate(t *testing.T) {
	ts := setupTestServer(t, Options{})
	p := ts.addPlayer(t, "Ana")

	resp := ts.api.Post("/api/v1/players/" + p.ID + "/archive")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "UNAUTHORIZED", decode[any](t, resp).Code)

	resp = ts.api.Post("/api/v1/players/"+p.ID+"/archive", "X-Admin-Pin: 9999")
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/players/"+p.ID+"/archive", defaultPinHeader)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, domain.PlayerArchived, decode[PlayerView](t, resp).Data.Status)

	resp = ts.api.Post("/api/v1/players/"+p.ID+"/unarchive", defaultPinHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, domain.PlayerActive, decode[PlayerView](t, resp).Data.Status)

	resp = ts.api.Post("/api/v1/players/"+p.ID+"/toggle-admin", defaultPinHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, decode[PlayerView](t, resp).Data.IsAdmin)

	resp = ts.api.Delete("/api/v1/players/"+p.ID, defaultPinHeader)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Delete("/api/v1/players/"+p.ID, defaultPinHeader)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateAdminPin(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Put("/api/v1/admin/pin", defaultPinHeader, map[string]any{"pin": "12a4"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, string(decode[any](t, resp).Details), "pin")

	resp = ts.api.Put("/api/v1/admin/pin", defaultPinHeader, map[string]any{"pin": "4321"})
	require.Equal(t, http.StatusNoContent, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/admin/verify", defaultPinHeader)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/admin/verify", "X-Admin-Pin: 4321")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, decode[VerifyPinResponse](t, resp).Data.Valid)
}

func TestExportResetImport(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.addPlayers(t, "Ana", "Beto")

	resp := ts.api.Get("/api/v1/admin/export", defaultPinHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "domino-pro-")
	exported := resp.Body.Bytes()
	assert.Equal(t, domain.DefaultAdminPin, decode[map[string]any](t, resp).Data["adminPin"])

	resp = ts.api.Post("/api/v1/admin/reset", defaultPinHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, ts.league.Snapshot().Players)

	resp = ts.api.Post("/api/v1/admin/import", defaultPinHeader, "Content-Type: application/json", bytes.NewReader(exported))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 2, decode[ImportResponse](t, resp).Data.Counts.Players)
	assert.Len(t, ts.league.Snapshot().Players, 2)
}

func TestImport_Malformed(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.addPlayer(t, "Ana")

	resp := ts.api.Post("/api/v1/admin/import", defaultPinHeader, "Content-Type: application/json", bytes.NewReader([]byte(`{"players": [`)))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "MALFORMED_IMPORT", decode[any](t, resp).Code)
	assert.Len(t, ts.league.Snapshot().Players, 1)

	for _, doc := range []string{`{}`, `null`} {
		resp = ts.api.Post("/api/v1/admin/import", defaultPinHeader, "Content-Type: application/json", bytes.NewReader([]byte(doc)))
		require.Equal(t, http.StatusBadRequest, resp.Code, doc)
		assert.Equal(t, "MALFORMED_IMPORT", decode[any](t, resp).Code, doc)
	}
	assert.Len(t, ts.league.Snapshot().Players, 1)
}

func TestBackups(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ts.addPlayer(t, "Ana")

	resp := ts.api.Post("/api/v1/admin/backups", defaultPinHeader)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decode[backup.Result](t, resp).Data
	assert.Equal(t, 1, created.Counts.Players)

	resp = ts.api.Get("/api/v1/admin/backups", defaultPinHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[BackupListResponse](t, resp).Data.Backups
	require.Len(t, list, 1)
	assert.Equal(t, created.Name, list[0].Name)

	ts.addPlayer(t, "Beto")
	resp = ts.api.Post("/api/v1/admin/backups/"+created.Name+"/restore", defaultPinHeader)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Len(t, ts.league.Snapshot().Players, 1)

	resp = ts.api.Post("/api/v1/admin/backups/nope.json/restore", defaultPinHeader)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Delete("/api/v1/admin/backups/"+created.Name, defaultPinHeader)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Delete("/api/v1/admin/backups/"+created.Name, defaultPinHeader)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSummary_RateLimited(t *testing.T) {
	ts := setupTestServer(t, Options{SummaryPerMinute: 2})
	ts.addPlayer(t, "Ana")

	for i := 0; i < 2; i++ {
		resp := ts.api.Post("/api/v1/summary")
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.NotEmpty(t, decode[SummaryResponse](t, resp).Data.Summary)
	}

	resp := ts.api.Post("/api/v1/summary")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	env := decode[any](t, resp)
	assert.Equal(t, "RATE_LIMITED", env.Code)
	assert.Contains(t, string(env.Details), "retryAfterSeconds")
}

func TestUnwrapEnvelope(t *testing.T) {
	doc := []byte(`{"players":[],"games":[]}`)
	assert.Equal(t, doc, unwrapEnvelope(doc))
	assert.JSONEq(t, string(doc), string(unwrapEnvelope([]byte(`{"v":1,"success":true,"data":{"players":[],"games":[]}}`))))
	assert.Equal(t, []byte("not json"), unwrapEnvelope([]byte("not json")))
}

func TestEnvelopeTransformer(t *testing.T) {
	out, err := EnvelopeTransformer(nil, "200", map[string]string{"id": "player-1"})
	require.NoError(t, err)
	env := out.(Envelope)
	assert.True(t, env.Success)
	assert.Equal(t, envelopeVersion, env.Version)

	out, err = EnvelopeTransformer(nil, "404", &APIError{status: 404, Code: "NOT_FOUND", Message: "player not found"})
	require.NoError(t, err)
	env = out.(Envelope)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Equal(t, "player not found", env.Error)
}
