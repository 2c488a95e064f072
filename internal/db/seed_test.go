package db

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geocoder89/agenda/internal/domain/user"
	"github.com/geocoder89/agenda/internal/repo/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func TestEnsureGlobalAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	created, err := EnsureGlobalAdmin(ctx, store.Users(), plainHasher{}, Admin{})
	if err != nil || created {
		t.Fatalf("unconfigured admin must be a no-op, created=%v err=%v", created, err)
	}

	admin := Admin{Email: "Root@Agenda.bo", Password: "pw"}
	created, err = EnsureGlobalAdmin(ctx, store.Users(), plainHasher{}, admin)
	if err != nil || !created {
		t.Fatalf("expected admin to be created, created=%v err=%v", created, err)
	}

	u, err := store.Users().GetByEmail(ctx, "root@agenda.bo")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if u.Role != user.RoleGlobalAdmin || u.UnitID != nil || u.PasswordHash != "hashed:pw" {
		t.Fatalf("unexpected admin %+v", u)
	}

	created, err = EnsureGlobalAdmin(ctx, store.Users(), plainHasher{}, admin)
	if err != nil || created {
		t.Fatalf("second run must be a no-op, created=%v err=%v", created, err)
	}
}

const seedYAML = `
units:
  - Cultura
  - Deportes
users:
  - externalId: "100"
    name: Ana
    email: ana@agenda.bo
    password: secret
    role: unit_admin
    unit: cultura
  - externalId: "101"
    name: Root
    email: root@agenda.bo
    password: secret
    role: GLOBAL_ADMIN
`

func TestSeed_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(seedYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	report, err := Seed(ctx, store.Units(), store.Users(), plainHasher{}, f)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if report.UnitsCreated != 2 || report.UsersCreated != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	ana, err := store.Users().GetByEmail(ctx, "ana@agenda.bo")
	if err != nil {
		t.Fatalf("get ana: %v", err)
	}
	if ana.UnitName == nil || *ana.UnitName != "Cultura" || ana.Role != user.RoleUnitAdmin {
		t.Fatalf("unexpected user %+v", ana)
	}

	report, err = Seed(ctx, store.Units(), store.Users(), plainHasher{}, f)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if report.UnitsSkipped != 2 || report.UsersSkipped != 2 || report.UnitsCreated+report.UsersCreated != 0 {
		t.Fatalf("expected everything skipped, got %+v", report)
	}
}

func TestSeed_UnknownUnit(t *testing.T) {
	f := SeedFile{Users: []SeedUser{{ExternalID: "1", Name: "X", Email: "x@a.bo", Password: "p", Role: "VIEWER", Unit: "Nope"}}}

	_, err := Seed(context.Background(), memory.NewStore().Units(), memory.NewStore().Users(), plainHasher{}, f)
	if err == nil || !strings.Contains(err.Error(), "unknown unit") {
		t.Fatalf("expected unknown unit error, got %v", err)
	}
}

func TestSchemaDeclaresConstraints(t *testing.T) {
	for _, want := range []string{
		"units_name_key",
		"users_email_key",
		"users_external_id_key",
		"users_role_unit_check",
		"ON DELETE CASCADE",
		"ON DELETE RESTRICT",
	} {
		if !strings.Contains(Schema(), want) {
			t.Fatalf("schema is missing %q", want)
		}
	}
}
