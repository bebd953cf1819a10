package summary

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// Generator turns a digest into prose.
type Generator interface {
	Generate(ctx context.Context, d Digest) (string, error)
}

var templates = []func(top, bottom string, total int) string{
	func(top, bottom string, total int) string {
		return fmt.Sprintf("¡KLK mi gente! Aquí dándole el dato real de la liga. %s está en altísima, no cree en nadie y anda repartiendo mangu con salami en cada mesa. Por otro lado, %s está pidiendo cacao y dando una pena terrible, parece que se le olvidó cómo se cuentan las fichas. Llevamos %d partidas de puro fuego. ¡Sigan jugando que esto está picante!", top, bottom, total)
	},
	func(top, bottom string, total int) string {
		return fmt.Sprintf("Atención tigueraje: %s se coronó como el papá de la mesa esta semana. Tiene a todo el mundo a monte. Mientras tanto, %s anda como un pollito mojado, no gana ni una partida de práctica. Ya van %d juegos y la calle está que arde. ¡Dique que hay revancha mañana!", top, bottom, total)
	},
	func(top, bottom string, total int) string {
		return fmt.Sprintf("Dímelo cantando, el ranking no miente: %s es el que tiene la grasa ahora mismo. %s está en el suelo, pidiendo un tiempo fuera porque no aguanta la presión. Con %d juegos encima, la liga está más dura que un coco. ¡El que tenga miedo que se compre un perro!", top, bottom, total)
	},
}

var (
	nicknamePrefixes = []string{"El Rubio", "Neno", "Pocho", "Bulin", "Montro", "Don", "Papi", "El Fuerte", "Tito", "Mangu", "Salami", "Klk", "Dato", "Pilo", "Chacho"}
	nicknameSuffixes = []string{"Flow", "Vip", "Calle", "Platino", "27", "Real", "05", "Duro", "Activo", "En Alta", "Grasa", "Popi", "Wawawa"}
)

// LocalGenerator fills one of the built-in slang templates. It needs no network.
type LocalGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLocalGenerator creates a generator. A nil rnd uses the global source.
func NewLocalGenerator(rnd *rand.Rand) *LocalGenerator {
	return &LocalGenerator{rnd: rnd}
}

// Generate implements Generator.
func (g *LocalGenerator) Generate(ctx context.Context, d Digest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	top := "Nadie"
	if len(d.TopPlayers) > 0 {
		top = d.TopPlayers[0].Name
	}
	bottom := "El que no juega"
	if len(d.TopPlayers) > 1 {
		bottom = d.TopPlayers[len(d.TopPlayers)-1].Name
	}

	g.mu.Lock()
	n := intN(g.rnd, len(templates))
	g.mu.Unlock()

	return templates[n](top, bottom, len(d.RecentGames)), nil
}

// Nickname suggests a nickname from the first word of a real name.
func Nickname(name string, rnd *rand.Rand) string {
	first, _, _ := strings.Cut(strings.TrimSpace(name), " ")
	if intN(rnd, 2) == 0 {
		return nicknamePrefixes[intN(rnd, len(nicknamePrefixes))] + " " + first
	}
	return first + " " + nicknameSuffixes[intN(rnd, len(nicknameSuffixes))]
}

func intN(rnd *rand.Rand, n int) int {
	if rnd == nil {
		return rand.IntN(n)
	}
	return rnd.IntN(n)
}
