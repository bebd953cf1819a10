package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dominopro/dominopro-server/internal/domain"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
)

func teams(scores map[string]int) *domain.LiveSession {
	return &domain.LiveSession{ID: "session-t", Mode: domain.ModeTeams, Players: []string{"a", "b", "c", "d"}, Scores: scores}
}

func pintintin(scores map[string]int) *domain.LiveSession {
	return &domain.LiveSession{ID: "session-p", Mode: domain.ModePintintin, Players: []string{"x", "y", "z"}, Scores: scores}
}

func TestResolve_LosersArePlayersMinusWinners(t *testing.T) {
	out, err := Resolve(teams(map[string]int{"a": 120, "c": 80, "b": 30}), []string{"c", "a"}, nil, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"c", "a"}, out.Winners)
	assert.Equal(t, []string{"b", "d"}, out.Losers)
	assert.False(t, out.IsBlanqueo)
	assert.Empty(t, out.RunnerUp)
	assert.Equal(t, 0, out.Scores["d"])
}

func TestResolve_Blanqueo(t *testing.T) {
	tests := []struct {
		name   string
		scores map[string]int
		want   bool
	}{
		{"all losers at zero", map[string]int{"a": 200, "b": 0, "c": 0, "d": 0}, true},
		{"missing loser scores count as zero", map[string]int{"a": 200}, true},
		{"one loser scored", map[string]int{"a": 200, "b": 0, "c": 5, "d": 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Resolve(teams(nil), []string{"a", "b"}, tt.scores, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.IsBlanqueo)
		})
	}
}

func TestResolve_ExplicitScoresOverrideRunningScores(t *testing.T) {
	s := teams(map[string]int{"a": 10, "b": 10, "c": 10, "d": 10})
	out, err := Resolve(s, []string{"a", "c"}, map[string]int{"a": 200, "c": 0}, true)
	require.NoError(t, err)

	assert.True(t, out.IsBlanqueo)
	assert.True(t, out.IsCapicua)
	assert.Equal(t, 200, out.Scores["a"])
}

func TestResolve_PintintinRunnerUp(t *testing.T) {
	out, err := Resolve(pintintin(map[string]int{"x": 150, "y": 40, "z": 90}), []string{"x"}, nil, false)
	require.NoError(t, err)

	assert.Equal(t, "z", out.RunnerUp)
	assert.Equal(t, RoleWinner, out.Role("x"))
	assert.Equal(t, RoleRunnerUp, out.Role("z"))
	assert.Equal(t, RoleLoser, out.Role("y"))
	assert.Equal(t, RoleNone, out.Role("w"))
}

func TestResolve_PintintinRunnerUpTieGoesToFirstSeated(t *testing.T) {
	out, err := Resolve(pintintin(map[string]int{"x": 30, "y": 30, "z": 150}), []string{"z"}, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "x", out.RunnerUp)

	out, err = Resolve(pintintin(map[string]int{"x": 150}), []string{"x"}, nil, false)
	require.NoError(t, err)
	assert.Equal(t, "y", out.RunnerUp)
	assert.True(t, out.IsBlanqueo)
}

func TestResolve_Validation(t *testing.T) {
	tests := []struct {
		name    string
		winners []string
	}{
		{"no winners", nil},
		{"winner not seated", []string{"a", "q"}},
		{"duplicate winner", []string{"a", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(teams(nil), tt.winners, nil, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestResolve_AllSeatedWinners(t *testing.T) {
	out, err := Resolve(pintintin(map[string]int{"x": 150, "y": 150, "z": 150}), []string{"x", "y", "z"}, nil, false)
	require.NoError(t, err)
	assert.Empty(t, out.Losers)
	assert.Empty(t, out.RunnerUp)
	assert.True(t, out.IsBlanqueo)
}

func TestOutcome_Game(t *testing.T) {
	out, err := Resolve(teams(map[string]int{"a": 200}), []string{"a", "c"}, nil, false)
	require.NoError(t, err)

	g := out.Game("game-1", 1700000000000)
	assert.Equal(t, "game-1", g.ID)
	assert.Equal(t, domain.ModeTeams, g.Mode)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, append(append([]string{}, g.Winners...), g.Losers...))

	g.Scores["a"] = 0
	assert.Equal(t, 200, out.Scores["a"])
}
