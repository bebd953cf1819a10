package store

import (
	"context"

	"github.com/dominopro/dominopro-server/internal/domain"
	domainerrors "github.com/dominopro/dominopro-server/internal/errors"
)

// Backend is a load/save capability over one persisted league document.
// Swapping the durable engine only requires another Backend.
type Backend interface {
	Name() string
	Load(ctx context.Context) (*domain.LeagueState, error)
	Save(ctx context.Context, state *domain.LeagueState) error
}

// Unavailable stands in for a backend that could not be opened.
// Every call fails with a StorageUnavailable error.
type Unavailable struct {
	name  string
	cause error
}

// NewUnavailable returns a Backend that always reports cause.
func NewUnavailable(name string, cause error) *Unavailable {
	return &Unavailable{name: name, cause: cause}
}

// Name implements Backend.
func (u *Unavailable) Name() string { return u.name }

// Load implements Backend.
func (u *Unavailable) Load(context.Context) (*domain.LeagueState, error) {
	return nil, domainerrors.StorageUnavailable(u.name, u.cause)
}

// Save implements Backend.
func (u *Unavailable) Save(context.Context, *domain.LeagueState) error {
	return domainerrors.StorageUnavailable(u.name, u.cause)
}
