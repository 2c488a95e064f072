// Package policy decides what an authenticated actor may do. Every function
// is pure: callers load the resource, ask the policy, then act.
//
// Unit-scoped actors (UNIT_ADMIN, VIEWER) get the same AuthorizationError for
// a resource in another unit and for a resource that does not exist, so ids
// cannot be probed across units. Only GLOBAL_ADMIN ever sees NotFound.
package policy

import (
	"github.com/geocoder89/agenda/internal/apperr"
	"github.com/geocoder89/agenda/internal/domain/user"
)

type Resource string

const (
	ResourceUnit  Resource = "unit"
	ResourceEvent Resource = "event"
	ResourceUser  Resource = "user"
)

type Operation string

const (
	OpList   Operation = "list"
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Actor is the identity carried by the session token.
type Actor struct {
	UserID string
	Role   user.Role
	UnitID *string
}

func (a Actor) IsGlobal() bool {
	return a.Role == user.RoleGlobalAdmin
}

func (a Actor) owns(unitID *string) bool {
	return a.UnitID != nil && unitID != nil && *a.UnitID == *unitID
}

// Authorize evaluates the role table for one operation. ownerUnit is the unit
// of the addressed resource, or nil for collection-level checks.
func Authorize(a Actor, res Resource, op Operation, ownerUnit *string) error {
	if !a.Role.Valid() {
		return apperr.Forbidden("Unknown role")
	}

	if a.IsGlobal() {
		return nil
	}

	// every other role is bound to a unit
	if a.UnitID == nil {
		return apperr.Forbidden("Account is not assigned to a unit")
	}

	switch res {
	case ResourceUnit:
		return apperr.Forbidden("Only global administrators can manage units")

	case ResourceEvent:
		switch op {
		case OpList, OpRead:
			if ownerUnit != nil && !a.owns(ownerUnit) {
				return apperr.Forbidden("You can only access events of your unit")
			}
			return nil
		case OpCreate:
			if a.Role != user.RoleUnitAdmin {
				return apperr.Forbidden("You do not have permission to create events")
			}
			return nil
		case OpUpdate, OpDelete:
			if a.Role != user.RoleUnitAdmin {
				return apperr.Forbidden("You do not have permission to modify events")
			}
			if !a.owns(ownerUnit) {
				return apperr.Forbidden("You can only modify events of your unit")
			}
			return nil
		}

	case ResourceUser:
		if a.Role != user.RoleUnitAdmin {
			return apperr.Forbidden("You do not have permission to manage users")
		}
		if op == OpList && ownerUnit == nil {
			return nil
		}
		if !a.owns(ownerUnit) {
			return apperr.Forbidden("You can only manage users of your unit")
		}
		return nil
	}

	return apperr.Forbidden("Operation not permitted")
}

// Missing is the outcome when the addressed resource does not exist.
func Missing(a Actor, res Resource) error {
	if a.IsGlobal() {
		return apperr.NotFound(notFoundMessage(res))
	}
	return apperr.Forbidden("You do not have access to this " + string(res))
}

func notFoundMessage(res Resource) string {
	switch res {
	case ResourceEvent:
		return "Event not found"
	case ResourceUser:
		return "User not found"
	case ResourceUnit:
		return "Unit not found"
	default:
		return "Resource not found"
	}
}
