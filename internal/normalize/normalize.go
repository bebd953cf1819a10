// Package normalize cleans up player-entered text and folds it for matching.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name trims a display name, drops control characters and collapses inner
// whitespace to single spaces. Accents and case are kept.
func Name(raw string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	return strings.Join(strings.Fields(s), " ")
}

// Fold returns a lower-case, accent-free form of s for comparisons.
// "José  Peña" and "jose pena" fold to the same value.
func Fold(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, Name(raw))
	if err != nil {
		s = Name(raw)
	}
	return strings.ToLower(s)
}

// SameName reports whether two names are equal once folded.
func SameName(a, b string) bool {
	return Fold(a) == Fold(b)
}
