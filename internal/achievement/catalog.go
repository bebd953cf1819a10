// Package achievement holds the badge catalog and grants badges after each game.
//
// Every badge is a declarative entry pairing display metadata with a predicate
// over the player's post-game statistics. Adding a badge means adding an entry;
// evaluation never changes.
package achievement

import (
	"time"

	"github.com/dominopro/dominopro-server/internal/domain"
	"github.com/dominopro/dominopro-server/internal/rewards"
)

// Tier is the rarity of a badge.
type Tier string

// Badge tiers, least to most prestigious.
const (
	TierBronze  Tier = "Bronze"
	TierSilver  Tier = "Silver"
	TierGold    Tier = "Gold"
	TierPlatino Tier = "Platino"
)

// Context is what a predicate sees: the player after the game's counters,
// XP and level have been applied, plus facts about the game itself.
type Context struct {
	Player   domain.Player
	Won      bool
	Blanqueo bool
	At       time.Time // grant time, in the league's local zone
}

// Badge is a catalog entry.
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Tier        Tier   `json:"tier"`

	Earned func(Context) bool `json:"-"`
}

func gamesAtLeast(n int) func(Context) bool {
	return func(c Context) bool { return c.Player.GamesPlayed() >= n }
}

func winsAtLeast(n int) func(Context) bool {
	return func(c Context) bool { return c.Player.Wins >= n }
}

func lossesAtLeast(n int) func(Context) bool {
	return func(c Context) bool { return c.Player.Losses >= n }
}

func capicuasAtLeast(n int) func(Context) bool {
	return func(c Context) bool { return c.Player.Capicuas >= n }
}

func streakAtLeast(n int) func(Context) bool {
	return func(c Context) bool { return c.Player.Streak >= n }
}

func pintintinWinsAtLeast(n int) func(Context) bool {
	return func(c Context) bool { return c.Player.PintintinStats.Wins >= n }
}

func patosAtLeast(n int) func(Context) bool {
	return func(c Context) bool { return c.Player.PintintinStats.Patos >= n }
}

func levelAtLeast(l domain.Level) func(Context) bool {
	return func(c Context) bool { return rewards.Rank(c.Player.Level) >= rewards.Rank(l) }
}

func wonWhen(cond func(time.Time) bool) func(Context) bool {
	return func(c Context) bool { return c.Won && cond(c.At) }
}

// Catalog is the fixed, ordered badge list. Evaluation follows this order.
var Catalog = []Badge{
	// Participation
	{"bautizo", "El Bautizo", "Completar tu primera partida", "👶", TierBronze, func(Context) bool { return true }},
	{"iniciado", "Iniciado", "Jugar 5 partidas totales", "🎲", TierBronze, gamesAtLeast(5)},
	{"veterano", "Veterano", "Jugar 50 partidas totales", "🎖️", TierSilver, gamesAtLeast(50)},
	{"vicioso", "Vicioso", "Jugar 200 partidas totales", "🔋", TierGold, gamesAtLeast(200)},
	{"guerrero", "Guerrero", "Acumular 20 derrotas (Se aprende perdiendo)", "⚔️", TierBronze, lossesAtLeast(20)},

	// Wins
	{"matador", "Matador", "Ganar 10 partidas", "🔫", TierBronze, winsAtLeast(10)},
	{"jefe", "El Jefe", "Ganar 25 partidas", "👔", TierBronze, winsAtLeast(25)},
	{"verdugo", "El Verdugo", "Ganar 50 partidas", "🪓", TierSilver, winsAtLeast(50)},
	{"papaupa", "El Papaupa", "Ganar 100 partidas", "🦁", TierGold, winsAtLeast(100)},
	{"inmortal", "Inmortal", "Ganar 200 partidas", "🏛️", TierPlatino, winsAtLeast(200)},

	// Skill
	{"ojo-aguila", "Ojo de Águila", "Realizar tu primer Capicúa", "👁️", TierBronze, capicuasAtLeast(1)},
	{"capicuero", "Capicuero", "Realizar 5 Capicúas totales", "🎯", TierBronze, capicuasAtLeast(5)},
	{"francotirador", "Francotirador", "Realizar 10 Capicúas totales", "🔭", TierSilver, capicuasAtLeast(10)},
	{"rey-capicua", "Rey Capicúa", "Realizar 25 Capicúas totales", "🤴", TierGold, capicuasAtLeast(25)},
	{"manos-seda", "Manos de Seda", "Realizar 50 Capicúas totales", "🎩", TierPlatino, capicuasAtLeast(50)},
	{"zapatero", "Zapatero", "Ganar por Blanqueo (0 puntos al rival)", "👞", TierGold, func(c Context) bool { return c.Won && c.Blanqueo }},
	{"arquitecto", "El Arquitecto", "Ganar 100 partidas en Parejas (2v2)", "📐", TierGold, func(c Context) bool { return c.Player.TeamWins() >= 100 }},

	// Streaks
	{"racha-fuego", "En Su Agua", "Racha de 3 victorias seguidas", "🔥", TierSilver, streakAtLeast(3)},
	{"calenton", "Calentón", "Racha de 5 victorias seguidas", "🌋", TierSilver, streakAtLeast(5)},
	{"invicto", "Invicto", "Racha de 7 victorias seguidas", "🛡️", TierGold, streakAtLeast(7)},
	{"intocable", "Intocable", "Racha de 10 victorias seguidas", "👻", TierPlatino, streakAtLeast(10)},
	{"imparable", "Imparable", "Racha de 15 victorias seguidas", "🚀", TierPlatino, streakAtLeast(15)},
	{"invencible", "Invencible", "Racha de 20 victorias seguidas", "☄️", TierPlatino, streakAtLeast(20)},

	// Pintintin
	{"pintintin-pro", "Rey del Patio", "Ganar 5 partidas de Pintintín", "🍀", TierBronze, pintintinWinsAtLeast(5)},
	{"dueno-patio", "Dueño del Patio", "Ganar 20 partidas de Pintintín", "🏰", TierGold, pintintinWinsAtLeast(20)},
	{"lobo-solitario", "Lobo Solitario", "Ganar 50 partidas de Pintintín", "🐺", TierPlatino, pintintinWinsAtLeast(50)},
	{"pato-mayor", "Pato Mayor", "Perder 10 veces en Pintintín", "🦆", TierBronze, patosAtLeast(10)},
	{"pato-feo", "El Patito Feo", "Perder 25 veces en Pintintín", "🦢", TierSilver, patosAtLeast(25)},

	// Career
	{"domino-oro", "Dominó de Oro", "Jugar 500 partidas totales", "🏆", TierPlatino, gamesAtLeast(500)},
	{"muralla", "La Muralla", "Acumular 100 derrotas (Resiliencia)", "🧱", TierSilver, lossesAtLeast(100)},
	{"profesor", "El Profesor", "Alcanzar el nivel Maestro", "🎓", TierGold, levelAtLeast(domain.LevelMaestro)},
	{"padrino", "El Padrino", "Acumular 10,000 XP", "🕴️", TierPlatino, func(c Context) bool { return c.Player.XP >= 10000 }},
	{"leyenda-viva", "Leyenda Viva", "Alcanzar el nivel Leyenda", "👑", TierPlatino, levelAtLeast(domain.LevelLeyenda)},

	// Calendar
	{"fiebre-sabado", "Fiebre de Sábado", "Ganar una partida un Sábado", "🕺", TierSilver, wonWhen(func(t time.Time) bool { return t.Weekday() == time.Saturday })},
	{"domingo-asado", "Domingo de Asado", "Ganar una partida un Domingo", "🍖", TierSilver, wonWhen(func(t time.Time) bool { return t.Weekday() == time.Sunday })},
	{"trasnochador", "Trasnochador", "Ganar entre las 8 PM y 12 AM", "🍸", TierSilver, wonWhen(func(t time.Time) bool { return t.Hour() >= 20 })},
	{"nocturno", "Sereno", "Ganar de madrugada (12 AM - 5 AM)", "🌙", TierPlatino, wonWhen(func(t time.Time) bool { return t.Hour() < 5 })},
}

var byID = func() map[string]*Badge {
	m := make(map[string]*Badge, len(Catalog))
	for i := range Catalog {
		m[Catalog[i].ID] = &Catalog[i]
	}
	return m
}()

// Lookup returns display metadata for a badge id.
func Lookup(id string) (Badge, bool) {
	b, ok := byID[id]
	if !ok {
		return Badge{}, false
	}
	return *b, true
}
