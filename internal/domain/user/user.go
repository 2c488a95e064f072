package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of privilege tiers. Any other value is rejected at
// the boundary by ParseRole.
type Role string

const (
	RoleGlobalAdmin Role = "GLOBAL_ADMIN"
	RoleUnitAdmin   Role = "UNIT_ADMIN"
	RoleViewer      Role = "VIEWER"
)

var ErrInvalidRole = errors.New("role must be one of GLOBAL_ADMIN, UNIT_ADMIN, VIEWER")

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleGlobalAdmin, RoleUnitAdmin, RoleViewer:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

type User struct {
	ID           string    `json:"id"`
	ExternalID   string    `json:"externalId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	UnitID       *string   `json:"unitId"`
	UnitName     *string   `json:"unitName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var (
	ErrNotFound         = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already in use")
	ErrExternalIDTaken  = errors.New("external id already registered")
	ErrUnitNotFound     = errors.New("unit does not exist")
	ErrRoleUnitMismatch = errors.New("GLOBAL_ADMIN must not have a unit and every other role requires one")
)

// CheckRoleUnit enforces role = GLOBAL_ADMIN <=> unitId = null.
func (u User) CheckRoleUnit() error {
	if (u.Role == RoleGlobalAdmin) != (u.UnitID == nil) {
		return ErrRoleUnitMismatch
	}
	return nil
}

func (u User) InUnit(unitID *string) bool {
	return u.UnitID != nil && unitID != nil && *u.UnitID == *unitID
}

type CreateUserRequest struct {
	ExternalID string  `json:"externalId" binding:"required,max=32"`
	Name       string  `json:"name" binding:"required,max=120"`
	Email      string  `json:"email" binding:"required,email,max=254"`
	Password   string  `json:"password" binding:"required,min=6,max=72"`
	Role       string  `json:"role" binding:"required"`
	UnitID     *string `json:"unitId" binding:"omitempty,uuid"`
}

// UpdateUserRequest leaves ExternalID and Password untouched when omitted.
type UpdateUserRequest struct {
	ExternalID *string `json:"externalId" binding:"omitempty,max=32"`
	Name       string  `json:"name" binding:"required,max=120"`
	Email      string  `json:"email" binding:"required,email,max=254"`
	Password   *string `json:"password" binding:"omitempty,min=6,max=72"`
	Role       string  `json:"role" binding:"required"`
	UnitID     *string `json:"unitId" binding:"omitempty,uuid"`
}

func New(externalID, name, email, passwordHash string, role Role, unitID *string) User {
	now := time.Now().UTC()

	return User{
		ID:           uuid.NewString(),
		ExternalID:   strings.TrimSpace(externalID),
		Name:         strings.TrimSpace(name),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		UnitID:       unitID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
