// Package service holds the use cases behind the REST handlers. Every call
// authorizes through policy, validates, performs one store operation and
// hands back *apperr.Error values the transport can render directly.
package service

import (
	"context"

	"github.com/geocoder89/agenda/internal/domain/event"
	"github.com/geocoder89/agenda/internal/domain/unit"
	"github.com/geocoder89/agenda/internal/domain/user"
)

type UnitStore interface {
	List(ctx context.Context) ([]unit.Unit, error)
	GetByID(ctx context.Context, id string) (unit.Unit, error)
	Create(ctx context.Context, u unit.Unit) (unit.Unit, error)
	Rename(ctx context.Context, id, name string) (unit.Unit, error)
	Delete(ctx context.Context, id string) error
}

// UserStore lists with a nil unit meaning every unit. The Taken checks skip
// the account with excludeID so an update does not collide with itself.
type UserStore interface {
	List(ctx context.Context, unitID *string) ([]user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	ExternalIDTaken(ctx context.Context, externalID, excludeID string) (bool, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	Update(ctx context.Context, u user.User) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type EventStore interface {
	List(ctx context.Context, f event.ListFilter) ([]event.Event, error)
	GetByID(ctx context.Context, id string) (event.Event, error)
	Create(ctx context.Context, e event.Event) (event.Event, error)
	Update(ctx context.Context, e event.Event) (event.Event, error)
	Delete(ctx context.Context, id string) error
}
