package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/geocoder89/agenda/internal/domain/unit"
	"github.com/geocoder89/agenda/internal/domain/user"
	"gopkg.in/yaml.v3"
)

type Hasher interface {
	Hash(plain string) (string, error)
}

type UnitSeeder interface {
	List(ctx context.Context) ([]unit.Unit, error)
	Create(ctx context.Context, u unit.Unit) (unit.Unit, error)
}

type UserSeeder interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// Admin describes the bootstrap account created on startup.
type Admin struct {
	Email      string
	Password   string
	Name       string
	ExternalID string
}

// EnsureGlobalAdmin creates the bootstrap GLOBAL_ADMIN when it is configured
// and missing. It reports whether an account was created.
func EnsureGlobalAdmin(ctx context.Context, users UserSeeder, hasher Hasher, a Admin) (bool, error) {
	if a.Email == "" || a.Password == "" {
		return false, nil
	}

	email := user.NormalizeEmail(a.Email)

	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := hasher.Hash(a.Password)
	if err != nil {
		return false, err
	}

	name := a.Name
	if name == "" {
		name = "Administrator"
	}
	externalID := a.ExternalID
	if externalID == "" {
		externalID = "ADMIN"
	}

	if _, err := users.Create(ctx, user.New(externalID, name, email, hash, user.RoleGlobalAdmin, nil)); err != nil {
		return false, err
	}

	return true, nil
}

// SeedFile is the YAML document read by `agendactl seed`.
//
//	units:
//	  - Cultura
//	users:
//	  - externalId: "1234567"
//	    name: Ana
//	    email: ana@example.bo
//	    password: secret
//	    role: UNIT_ADMIN
//	    unit: Cultura
type SeedFile struct {
	Units []string   `yaml:"units"`
	Users []SeedUser `yaml:"users"`
}

type SeedUser struct {
	ExternalID string `yaml:"externalId"`
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	Role       string `yaml:"role"`
	Unit       string `yaml:"unit"`
}

type SeedReport struct {
	UnitsCreated int
	UnitsSkipped int
	UsersCreated int
	UsersSkipped int
}

func LoadSeedFile(path string) (SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, err
	}

	var f SeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return SeedFile{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return f, nil
}

// Seed creates what is missing. Units are matched by name and users by
// email; anything already present is skipped, so the file can be re-applied.
func Seed(ctx context.Context, units UnitSeeder, users UserSeeder, hasher Hasher, f SeedFile) (SeedReport, error) {
	var report SeedReport

	existing, err := units.List(ctx)
	if err != nil {
		return report, err
	}

	byName := make(map[string]string, len(existing))
	for _, u := range existing {
		byName[strings.ToLower(u.Name)] = u.ID
	}

	for _, name := range f.Units {
		name = unit.NormalizeName(name)
		if name == "" {
			continue
		}
		if _, ok := byName[strings.ToLower(name)]; ok {
			report.UnitsSkipped++
			continue
		}

		created, err := units.Create(ctx, unit.New(name))
		if err != nil {
			return report, fmt.Errorf("unit %q: %w", name, err)
		}
		byName[strings.ToLower(created.Name)] = created.ID
		report.UnitsCreated++
	}

	for _, su := range f.Users {
		email := user.NormalizeEmail(su.Email)

		_, err := users.GetByEmail(ctx, email)
		if err == nil {
			report.UsersSkipped++
			continue
		}
		if !errors.Is(err, user.ErrNotFound) {
			return report, err
		}

		role, err := user.ParseRole(su.Role)
		if err != nil {
			return report, fmt.Errorf("user %q: %w", email, err)
		}

		var unitID *string
		if role != user.RoleGlobalAdmin {
			id, ok := byName[strings.ToLower(strings.TrimSpace(su.Unit))]
			if !ok {
				return report, fmt.Errorf("user %q: unknown unit %q", email, su.Unit)
			}
			unitID = &id
		}

		hash, err := hasher.Hash(su.Password)
		if err != nil {
			return report, err
		}

		if _, err := users.Create(ctx, user.New(su.ExternalID, su.Name, email, hash, role, unitID)); err != nil {
			return report, fmt.Errorf("user %q: %w", email, err)
		}
		report.UsersCreated++
	}

	return report, nil
}
