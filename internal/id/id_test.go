package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		v, err := Generate(Game)
		require.NoError(t, err)
		assert.False(t, ids[v], "ID should be unique: %s", v)
		ids[v] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{Player, Game, Session, Achievement} {
		t.Run(prefix, func(t *testing.T) {
			v, err := Generate(prefix)
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(v, prefix+"-"))
			nano := strings.TrimPrefix(v, prefix+"-")
			assert.Len(t, nano, 21)

			for _, char := range nano {
				assert.True(t,
					(char >= 'A' && char <= 'Z') ||
						(char >= 'a' && char <= 'z') ||
						(char >= '0' && char <= '9') ||
						char == '_' || char == '-',
					"Character %c should be URL-safe", char)
			}
		})
	}
}

func TestMustGenerate(t *testing.T) {
	v := MustGenerate(Session)
	assert.True(t, strings.HasPrefix(v, "session-"))
	assert.Len(t, v, len("session")+1+21)
}

func TestSequence(t *testing.T) {
	next := Sequence()

	assert.Equal(t, "player-1", next(Player))
	assert.Equal(t, "player-2", next(Player))
	assert.Equal(t, "game-1", next(Game))
	assert.Equal(t, "player-3", next(Player))
}

func BenchmarkGenerate(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Generate(Game)
	}
}
