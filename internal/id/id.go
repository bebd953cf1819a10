// Package id mints the prefixed identifiers used for league records.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for each kind of league record.
const (
	Player      = "player"
	Game        = "game"
	Session     = "session"
	Achievement = "evt"
)

// Generate returns prefix-<nanoid>, for example "game-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	nano, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nano, nil
}

// MustGenerate is like Generate but panics when the entropy source fails.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}

// Func mints identifiers for a record kind.
type Func func(prefix string) string

// Sequence returns a Func that yields prefix-1, prefix-2, ... per prefix.
// Tests use it to get stable identifiers.
func Sequence() Func {
	counters := make(map[string]int)
	return func(prefix string) string {
		counters[prefix]++
		return fmt.Sprintf("%s-%d", prefix, counters[prefix])
	}
}
