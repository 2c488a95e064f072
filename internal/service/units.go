package service

import (
	"context"
	"errors"

	"github.com/geocoder89/agenda/internal/apperr"
	"github.com/geocoder89/agenda/internal/domain/unit"
	"github.com/geocoder89/agenda/internal/policy"
)

type Units struct {
	store UnitStore
}

func NewUnits(store UnitStore) *Units {
	return &Units{store: store}
}

func (s *Units) List(ctx context.Context, a policy.Actor) ([]unit.Unit, error) {
	if err := policy.Authorize(a, policy.ResourceUnit, policy.OpList, nil); err != nil {
		return nil, err
	}

	units, err := s.store.List(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to list units", err)
	}
	return units, nil
}

func (s *Units) Create(ctx context.Context, a policy.Actor, req unit.UnitRequest) (unit.Unit, error) {
	if err := policy.Authorize(a, policy.ResourceUnit, policy.OpCreate, nil); err != nil {
		return unit.Unit{}, err
	}

	name := unit.NormalizeName(req.Name)
	if name == "" {
		return unit.Unit{}, apperr.InvalidField("name", "Unit name is required")
	}

	created, err := s.store.Create(ctx, unit.New(name))
	if err != nil {
		return unit.Unit{}, mapUnitErr(err, "Failed to create unit")
	}
	return created, nil
}

func (s *Units) Rename(ctx context.Context, a policy.Actor, id string, req unit.UnitRequest) (unit.Unit, error) {
	if err := policy.Authorize(a, policy.ResourceUnit, policy.OpUpdate, nil); err != nil {
		return unit.Unit{}, err
	}

	name := unit.NormalizeName(req.Name)
	if name == "" {
		return unit.Unit{}, apperr.InvalidField("name", "Unit name is required")
	}

	updated, err := s.store.Rename(ctx, id, name)
	if err != nil {
		return unit.Unit{}, mapUnitErr(err, "Failed to update unit")
	}
	return updated, nil
}

func (s *Units) Delete(ctx context.Context, a policy.Actor, id string) error {
	if err := policy.Authorize(a, policy.ResourceUnit, policy.OpDelete, nil); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return mapUnitErr(err, "Failed to delete unit")
	}
	return nil
}

func mapUnitErr(err error, msg string) error {
	switch {
	case errors.Is(err, unit.ErrNotFound):
		return apperr.NotFound("Unit not found")
	case errors.Is(err, unit.ErrNameTaken):
		return apperr.Conflict("unit_name_taken", "name", "A unit with this name already exists")
	case errors.Is(err, unit.ErrInUse):
		return apperr.Conflict("unit_in_use", "", "The unit still has users assigned; move or delete them first")
	default:
		return apperr.Internal(msg, err)
	}
}
