package api

import (
	"github.com/dominopro/dominopro-server/internal/backup"
	"github.com/dominopro/dominopro-server/internal/league"
	"github.com/dominopro/dominopro-server/internal/search"
	"github.com/dominopro/dominopro-server/internal/summary"
)

// Pinger reports whether a storage backend answers.
type Pinger interface {
	Ping() error
}

// Services groups what the handlers call into. Only League is required.
type Services struct {
	League  *league.League
	Search  *search.PlayerIndex
	Summary *summary.Service
	Backups *backup.Service
	Durable Pinger
}
