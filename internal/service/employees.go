package service

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/agenda/internal/apperr"
	"github.com/geocoder89/agenda/internal/directory"
	"github.com/geocoder89/agenda/internal/policy"
)

type ValidateEmployeeRequest struct {
	ExternalID string `json:"externalId" binding:"required,max=32"`
}

type Employees struct {
	dir directory.Directory
}

// NewEmployees accepts a nil directory; lookups then report the directory
// as unavailable.
func NewEmployees(dir directory.Directory) *Employees {
	return &Employees{dir: dir}
}

func (s *Employees) Validate(ctx context.Context, a policy.Actor, externalID string) (directory.Employee, error) {
	if err := policy.Authorize(a, policy.ResourceUser, policy.OpCreate, a.UnitID); err != nil {
		return directory.Employee{}, err
	}

	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return directory.Employee{}, apperr.InvalidField("externalId", "externalId is required")
	}

	if s.dir == nil {
		return directory.Employee{}, apperr.Unavailable("HR directory is not configured", nil)
	}

	emp, err := s.dir.Lookup(ctx, externalID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return directory.Employee{}, apperr.NotFound("The external id is not registered in the HR directory")
		}
		return directory.Employee{}, apperr.Unavailable("Could not reach the HR directory", err)
	}
	return emp, nil
}
