package service

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/agenda/internal/apperr"
	"github.com/geocoder89/agenda/internal/domain/unit"
	"github.com/geocoder89/agenda/internal/domain/user"
	"github.com/geocoder89/agenda/internal/policy"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Check(hash, plain string) error
}

type Users struct {
	store  UserStore
	units  UnitStore
	hasher PasswordHasher
}

func NewUsers(store UserStore, units UnitStore, hasher PasswordHasher) *Users {
	return &Users{store: store, units: units, hasher: hasher}
}

func (s *Users) List(ctx context.Context, a policy.Actor) ([]user.User, error) {
	scope, err := policy.UserScope(a)
	if err != nil {
		return nil, err
	}

	users, err := s.store.List(ctx, scope)
	if err != nil {
		return nil, apperr.Internal("Failed to list users", err)
	}
	return users, nil
}

func (s *Users) ListByUnit(ctx context.Context, a policy.Actor, unitID string) ([]user.User, error) {
	if err := policy.Authorize(a, policy.ResourceUser, policy.OpList, &unitID); err != nil {
		return nil, err
	}

	if a.IsGlobal() {
		if _, err := s.units.GetByID(ctx, unitID); err != nil {
			if errors.Is(err, unit.ErrNotFound) {
				return nil, apperr.NotFound("Unit not found")
			}
			return nil, apperr.Internal("Failed to load unit", err)
		}
	}

	users, err := s.store.List(ctx, &unitID)
	if err != nil {
		return nil, apperr.Internal("Failed to list users", err)
	}
	return users, nil
}

func (s *Users) Create(ctx context.Context, a policy.Actor, req user.CreateUserRequest) (user.User, error) {
	role := normalizeRole(req.Role)

	unitID, err := policy.AuthorizeUserCreate(a, role, req.UnitID)
	if err != nil {
		return user.User{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return user.User{}, apperr.InvalidField("name", "Name is required")
	}
	externalID := strings.TrimSpace(req.ExternalID)
	if externalID == "" {
		return user.User{}, apperr.InvalidField("externalId", "externalId is required")
	}

	email := user.NormalizeEmail(req.Email)
	if err := s.checkUnique(ctx, email, externalID, ""); err != nil {
		return user.User{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, apperr.Internal("Failed to create user", err)
	}

	u := user.New(externalID, name, email, hash, role, unitID)
	if err := u.CheckRoleUnit(); err != nil {
		return user.User{}, apperr.InvalidField("unitId", err.Error())
	}

	created, err := s.store.Create(ctx, u)
	if err != nil {
		return user.User{}, mapUserErr(err, "Failed to create user")
	}
	return created, nil
}

func (s *Users) Update(ctx context.Context, a policy.Actor, id string, req user.UpdateUserRequest) (user.User, error) {
	target, err := s.load(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	role := normalizeRole(req.Role)
	unitID, err := policy.AuthorizeUserUpdate(a, target, role, req.UnitID)
	if err != nil {
		return user.User{}, err
	}

	next := *target
	next.Name = strings.TrimSpace(req.Name)
	next.Email = user.NormalizeEmail(req.Email)
	next.Role = role
	next.UnitID = unitID
	next.UnitName = nil
	if req.ExternalID != nil {
		next.ExternalID = strings.TrimSpace(*req.ExternalID)
	}

	if next.Name == "" {
		return user.User{}, apperr.InvalidField("name", "Name is required")
	}
	if next.ExternalID == "" {
		return user.User{}, apperr.InvalidField("externalId", "externalId is required")
	}

	if err := s.checkUnique(ctx, next.Email, next.ExternalID, next.ID); err != nil {
		return user.User{}, err
	}

	if req.Password != nil && *req.Password != "" {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return user.User{}, apperr.Internal("Failed to update user", err)
		}
		next.PasswordHash = hash
	}

	if err := next.CheckRoleUnit(); err != nil {
		return user.User{}, apperr.InvalidField("unitId", err.Error())
	}

	updated, err := s.store.Update(ctx, next)
	if err != nil {
		return user.User{}, mapUserErr(err, "Failed to update user")
	}
	return updated, nil
}

func (s *Users) Delete(ctx context.Context, a policy.Actor, id string) error {
	target, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := policy.AuthorizeUserDelete(a, target); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return mapUserErr(err, "Failed to delete user")
	}
	return nil
}

// CheckExternalID reports whether externalID is free, ignoring the account
// excludeID (the one being edited).
func (s *Users) CheckExternalID(ctx context.Context, a policy.Actor, externalID, excludeID string) (bool, error) {
	if err := policy.Authorize(a, policy.ResourceUser, policy.OpCreate, a.UnitID); err != nil {
		return false, err
	}

	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return false, apperr.InvalidField("externalId", "externalId is required")
	}

	taken, err := s.store.ExternalIDTaken(ctx, externalID, excludeID)
	if err != nil {
		return false, apperr.Internal("Failed to check external id", err)
	}
	return !taken, nil
}

// checkUnique is the explicit pre-write query. The store constraint still
// catches a concurrent duplicate and mapUserErr reports it the same way.
func (s *Users) checkUnique(ctx context.Context, email, externalID, excludeID string) error {
	taken, err := s.store.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return apperr.Internal("Failed to check email", err)
	}
	if taken {
		return mapUserErr(user.ErrEmailTaken, "")
	}

	taken, err = s.store.ExternalIDTaken(ctx, externalID, excludeID)
	if err != nil {
		return apperr.Internal("Failed to check external id", err)
	}
	if taken {
		return mapUserErr(user.ErrExternalIDTaken, "")
	}

	return nil
}

func (s *Users) load(ctx context.Context, id string) (*user.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal("Failed to load user", err)
	}
	return &u, nil
}

// normalizeRole keeps unknown values as-is so the policy can reject them
// after the permission check.
func normalizeRole(raw string) user.Role {
	if r, err := user.ParseRole(raw); err == nil {
		return r
	}
	return user.Role(raw)
}

func mapUserErr(err error, msg string) error {
	switch {
	case errors.Is(err, user.ErrNotFound):
		return apperr.NotFound("User not found")
	case errors.Is(err, user.ErrEmailTaken):
		return apperr.Conflict("email_taken", "email", "This email is already registered")
	case errors.Is(err, user.ErrExternalIDTaken):
		return apperr.Conflict("external_id_taken", "externalId", "This external id is already registered")
	case errors.Is(err, user.ErrUnitNotFound):
		return apperr.InvalidField("unitId", "The selected unit does not exist")
	case errors.Is(err, user.ErrRoleUnitMismatch):
		return apperr.InvalidField("unitId", user.ErrRoleUnitMismatch.Error())
	default:
		return apperr.Internal(msg, err)
	}
}
