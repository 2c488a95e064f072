package memory

import (
	"context"
	"sort"
	"time"

	"github.com/geocoder89/agenda/internal/domain/user"
)

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) List(ctx context.Context, unitID *string) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if unitID != nil && !u.InUnit(unitID) {
			continue
		}
		out = append(out, r.withUnitName(u))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.withUnitName(u), nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return r.withUnitName(u), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.taken(func(u user.User) bool { return u.Email == email }, excludeID), nil
}

func (r *UsersRepo) ExternalIDTaken(ctx context.Context, externalID, excludeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.taken(func(u user.User) bool { return u.ExternalID == externalID }, excludeID), nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.check(u); err != nil {
		return user.User{}, err
	}

	u.UnitName = nil
	r.s.users[u.ID] = u
	return r.withUnitName(u), nil
}

func (r *UsersRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[u.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if err := r.check(u); err != nil {
		return user.User{}, err
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	u.UnitName = nil
	r.s.users[u.ID] = u
	return r.withUnitName(u), nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

// check mirrors the table constraints. Caller holds the write lock.
func (r *UsersRepo) check(u user.User) error {
	if err := u.CheckRoleUnit(); err != nil {
		return err
	}
	if u.UnitID != nil {
		if _, ok := r.s.units[*u.UnitID]; !ok {
			return user.ErrUnitNotFound
		}
	}
	if r.taken(func(o user.User) bool { return o.Email == u.Email }, u.ID) {
		return user.ErrEmailTaken
	}
	if r.taken(func(o user.User) bool { return o.ExternalID == u.ExternalID }, u.ID) {
		return user.ErrExternalIDTaken
	}
	return nil
}

func (r *UsersRepo) taken(match func(user.User) bool, excludeID string) bool {
	for _, o := range r.s.users {
		if o.ID != excludeID && match(o) {
			return true
		}
	}
	return false
}

func (r *UsersRepo) withUnitName(u user.User) user.User {
	u.UnitName = r.s.unitName(u.UnitID)
	return u
}
