package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/geocoder89/agenda/internal/auth"
	"github.com/geocoder89/agenda/internal/db"
	"github.com/geocoder89/agenda/internal/domain/unit"
	"github.com/geocoder89/agenda/internal/domain/user"
	apphttp "github.com/geocoder89/agenda/internal/http"
	"github.com/geocoder89/agenda/internal/http/handlers"
	"github.com/geocoder89/agenda/internal/observability"
	"github.com/geocoder89/agenda/internal/repo/postgres"
	"github.com/geocoder89/agenda/internal/security"
	"github.com/geocoder89/agenda/internal/service"
)

const password = "secret123"

type harness struct {
	t      *testing.T
	router *gin.Engine
	pool   *pgxpool.Pool
	unitA  unit.Unit
	unitB  unit.Unit
}

func setup(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping Postgres integration tests")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, dsn, 4)
	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE events, users, units CASCADE`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	units := postgres.NewUnitsRepo(pool, prom)
	users := postgres.NewUsersRepo(pool, prom)
	events := postgres.NewEventsRepo(pool, prom)
	hasher := security.Hasher{Cost: bcrypt.MinCost}

	unitA, err := units.Create(ctx, unit.New("Cultura"))
	if err != nil {
		t.Fatalf("unit: %v", err)
	}
	unitB, err := units.Create(ctx, unit.New("Deportes"))
	if err != nil {
		t.Fatalf("unit: %v", err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	for _, u := range []user.User{
		user.New("G1", "Global", "global@agenda.test", hash, user.RoleGlobalAdmin, nil),
		user.New("A1", "Admin A", "admin.a@agenda.test", hash, user.RoleUnitAdmin, &unitA.ID),
		user.New("B1", "Admin B", "admin.b@agenda.test", hash, user.RoleUnitAdmin, &unitB.ID),
	} {
		if _, err := users.Create(ctx, u); err != nil {
			t.Fatalf("user %s: %v", u.Email, err)
		}
	}

	tokens := auth.NewManager("integration-secret-123", time.Hour)

	router := apphttp.NewRouter(apphttp.Deps{
		Log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Env:       "test",
		Prom:      prom,
		Gatherer:  reg,
		Tokens:    tokens,
		Auth:      service.NewAuth(users, hasher, tokens, nil),
		Units:     service.NewUnits(units),
		Events:    service.NewEvents(events),
		Users:     service.NewUsers(users, units, hasher),
		Employees: service.NewEmployees(nil),
		Location:  time.UTC,
		Ready: map[string]handlers.Pinger{
			"db": pool.Ping,
		},
	})

	return &harness{t: t, router: router, pool: pool, unitA: unitA, unitB: unitB}
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()

	buf := &bytes.Buffer{}
	if body != nil {
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			h.t.Fatalf("encode: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) login(email string) string {
	h.t.Helper()

	w := h.do(http.MethodPost, "/auth/login", "", gin.H{"email": email, "password": password})
	if w.Code != http.StatusOK {
		h.t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var res struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		h.t.Fatalf("decode: %v", err)
	}
	return res.Token
}

func expect(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, status, w.Body.String())
	}
}

func TestEventsLifecycle(t *testing.T) {
	h := setup(t)
	adminA := h.login("admin.a@agenda.test")
	adminB := h.login("admin.b@agenda.test")
	global := h.login("global@agenda.test")

	w := h.do(http.MethodPost, "/events", adminA, gin.H{
		"title":      "Año nuevo",
		"start_date": "2024-12-31",
		"end_date":   "2025-01-01",
		"start_time": "20:00",
		"end_time":   "23:30",
	})
	expect(t, w, http.StatusCreated)

	var created struct {
		ID               string `json:"id"`
		UnitName         string `json:"unitName"`
		EndDateExclusive string `json:"end_date_exclusive"`
		Color            string `json:"color"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.EndDateExclusive != "2025-01-02" || created.UnitName != "Cultura" || created.Color == "" {
		t.Fatalf("unexpected event %s", w.Body.String())
	}

	var list struct {
		Count int `json:"count"`
	}

	w = h.do(http.MethodGet, "/events?start_date=2025-01-01&end_date=2025-01-31", global, nil)
	expect(t, w, http.StatusOK)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 1 {
		t.Fatalf("expected the event on its last day, got %d", list.Count)
	}

	w = h.do(http.MethodGet, "/events?start_date=2025-01-02&end_date=2025-01-31", global, nil)
	expect(t, w, http.StatusOK)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Count != 0 {
		t.Fatalf("exclusive end must not overlap, got %d", list.Count)
	}

	expect(t, h.do(http.MethodGet, "/events/"+created.ID, adminB, nil), http.StatusForbidden)
	expect(t, h.do(http.MethodGet, "/events/not-a-uuid", global, nil), http.StatusNotFound)

	expect(t, h.do(http.MethodDelete, "/events/"+created.ID, adminA, nil), http.StatusNoContent)
}

func TestConstraintsSurfaceAsConflicts(t *testing.T) {
	h := setup(t)
	global := h.login("global@agenda.test")

	expect(t, h.do(http.MethodPost, "/units", global, gin.H{"name": "CULTURA"}), http.StatusConflict)

	w := h.do(http.MethodPost, "/users", global, gin.H{
		"externalId": "A1",
		"name":       "Dup",
		"email":      "dup@agenda.test",
		"password":   "secret123",
		"role":       "VIEWER",
		"unitId":     h.unitA.ID,
	})
	expect(t, w, http.StatusConflict)

	// users still belong to unit A
	expect(t, h.do(http.MethodDelete, "/units/"+h.unitA.ID, global, nil), http.StatusConflict)

	expect(t, h.do(http.MethodGet, "/readyz", "", nil), http.StatusOK)
}
