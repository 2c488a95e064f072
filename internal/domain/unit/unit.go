package unit

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Unit struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound  = errors.New("unit not found")
	ErrNameTaken = errors.New("unit name already exists")
	// ErrInUse is returned when users still belong to the unit being deleted.
	ErrInUse = errors.New("unit still has users")
)

type UnitRequest struct {
	Name string `json:"name" binding:"required,max=120"`
}

func New(name string) Unit {
	now := time.Now().UTC()

	return Unit{
		ID:        uuid.NewString(),
		Name:      NormalizeName(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}
