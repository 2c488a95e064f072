package policy

import (
	"github.com/geocoder89/agenda/internal/apperr"
	"github.com/geocoder89/agenda/internal/domain/event"
	"github.com/geocoder89/agenda/internal/domain/user"
)

// EventScope returns the unit filter for an event listing. Global admins may
// pass an optional filter; everyone else is pinned to their own unit and a
// filter naming another unit is refused.
func EventScope(a Actor, requested *string) (*string, error) {
	if err := Authorize(a, ResourceEvent, OpList, requested); err != nil {
		return nil, err
	}
	if a.IsGlobal() {
		return requested, nil
	}
	return a.UnitID, nil
}

// UserScope returns the unit filter for a user listing.
func UserScope(a Actor) (*string, error) {
	if err := Authorize(a, ResourceUser, OpList, nil); err != nil {
		return nil, err
	}
	if a.IsGlobal() {
		return nil, nil
	}
	return a.UnitID, nil
}

// ReadEvent checks access to a loaded event; pass nil when it was not found.
func ReadEvent(a Actor, e *event.Event) error {
	if e == nil {
		return Missing(a, ResourceEvent)
	}
	return Authorize(a, ResourceEvent, OpRead, &e.UnitID)
}

// MutateEvent checks update/delete on a loaded event; pass nil when it was
// not found.
func MutateEvent(a Actor, op Operation, e *event.Event) error {
	if e == nil {
		return Missing(a, ResourceEvent)
	}
	return Authorize(a, ResourceEvent, op, &e.UnitID)
}

// ResolveEventUnit picks the owning unit of a new event. Global admins must
// name it; unit admins always get their own, whatever they sent.
func ResolveEventUnit(a Actor, requested *string) (string, error) {
	if err := Authorize(a, ResourceEvent, OpCreate, nil); err != nil {
		return "", err
	}

	if a.IsGlobal() {
		if requested == nil || *requested == "" {
			return "", apperr.InvalidField("unitId", "unitId is required when a global administrator creates an event")
		}
		return *requested, nil
	}

	return *a.UnitID, nil
}

// AuthorizeUserCreate validates the role a new account may receive and
// returns the unit it must be stored with.
func AuthorizeUserCreate(a Actor, role user.Role, requested *string) (*string, error) {
	if err := Authorize(a, ResourceUser, OpCreate, a.UnitID); err != nil {
		return nil, err
	}

	if !role.Valid() {
		return nil, apperr.InvalidField("role", user.ErrInvalidRole.Error())
	}

	if !a.IsGlobal() {
		if role != user.RoleViewer {
			return nil, apperr.Forbidden("Unit administrators can only create VIEWER accounts")
		}
		// the body's unitId is ignored for unit admins
		return copyID(a.UnitID), nil
	}

	return unitForRole(role, requested, nil)
}

// AuthorizeUserUpdate checks an update of target to newRole and returns the
// unit the account must end up with.
func AuthorizeUserUpdate(a Actor, target *user.User, newRole user.Role, requested *string) (*string, error) {
	if target == nil {
		if err := Authorize(a, ResourceUser, OpUpdate, a.UnitID); err != nil {
			return nil, err
		}
		return nil, Missing(a, ResourceUser)
	}

	if err := Authorize(a, ResourceUser, OpUpdate, target.UnitID); err != nil {
		return nil, err
	}

	if !newRole.Valid() {
		return nil, apperr.InvalidField("role", user.ErrInvalidRole.Error())
	}

	if !a.IsGlobal() {
		if target.Role != user.RoleViewer {
			return nil, apperr.Forbidden("Unit administrators can only manage VIEWER accounts")
		}
		if newRole != user.RoleViewer {
			return nil, apperr.Forbidden("Unit administrators can only manage VIEWER accounts")
		}
		return copyID(a.UnitID), nil
	}

	return unitForRole(newRole, requested, target.UnitID)
}

// AuthorizeUserDelete refuses self-deletion and deletion of any global admin,
// whoever asks.
func AuthorizeUserDelete(a Actor, target *user.User) error {
	if target == nil {
		if err := Authorize(a, ResourceUser, OpDelete, a.UnitID); err != nil {
			return err
		}
		return Missing(a, ResourceUser)
	}

	if target.ID == a.UserID {
		return apperr.Forbidden("You cannot delete your own account")
	}

	if err := Authorize(a, ResourceUser, OpDelete, target.UnitID); err != nil {
		return err
	}

	if target.Role == user.RoleGlobalAdmin {
		return apperr.Forbidden("Global administrator accounts cannot be deleted")
	}

	if !a.IsGlobal() && target.Role != user.RoleViewer {
		return apperr.Forbidden("Unit administrators can only delete VIEWER accounts")
	}

	return nil
}

// unitForRole applies role = GLOBAL_ADMIN <=> unit = nil. current is the
// unit the account already has, kept when no new one is supplied.
func unitForRole(role user.Role, requested, current *string) (*string, error) {
	if role == user.RoleGlobalAdmin {
		return nil, nil
	}

	if requested != nil && *requested != "" {
		return copyID(requested), nil
	}

	if current != nil {
		return copyID(current), nil
	}

	return nil, apperr.InvalidField("unitId", "unitId is required for UNIT_ADMIN and VIEWER accounts")
}

func copyID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
