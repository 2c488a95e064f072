package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/agenda/internal/actorctx"
	"github.com/geocoder89/agenda/internal/auth"
	"github.com/geocoder89/agenda/internal/policy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRevocations struct {
	isRevokedFn func(ctx context.Context, jti string) (bool, error)
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if f.isRevokedFn != nil {
		return f.isRevokedFn(ctx, jti)
	}
	return false, nil
}

func strPtr(s string) *string { return &s }

func TestRequireAuth(t *testing.T) {
	mgr := auth.NewManager("test-secret-0123456789", time.Hour)

	token, _, err := mgr.Issue("u-1", "UNIT_ADMIN", strPtr("unit-a"))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	badRole, _, err := mgr.Issue("u-2", "SUPERUSER", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		revoked    func(ctx context.Context, jti string) (bool, error)
		wantStatus int
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "unknown role", header: "Bearer " + badRole, wantStatus: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token, wantStatus: http.StatusOK},
		{
			name:   "revoked",
			header: "Bearer " + token,
			revoked: func(ctx context.Context, jti string) (bool, error) {
				return true, nil
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "denylist down",
			header: "Bearer " + token,
			revoked: func(ctx context.Context, jti string) (bool, error) {
				return false, errors.New("connection refused")
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(mgr, &fakeRevocations{isRevokedFn: tt.revoked})

			var got policy.Actor
			var session actorctx.Session

			r := gin.New()
			r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
				got, _ = actorctx.ActorFrom(c.Request.Context())
				session, _ = actorctx.SessionFrom(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				if got.UserID != "u-1" || got.UnitID == nil || *got.UnitID != "unit-a" {
					t.Fatalf("unexpected actor %+v", got)
				}
				if session.JTI == "" || session.ExpiresAt.IsZero() {
					t.Fatalf("expected session to be populated, got %+v", session)
				}
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	mgr := auth.NewManager("test-secret-0123456789", time.Hour)
	m := NewAuthMiddleware(mgr, nil)

	viewer, _, _ := mgr.Issue("u-v", "VIEWER", strPtr("unit-a"))
	unitAdmin, _, _ := mgr.Issue("u-a", "UNIT_ADMIN", strPtr("unit-a"))
	global, _, _ := mgr.Issue("u-g", "GLOBAL_ADMIN", nil)

	r := gin.New()
	r.POST("/events", m.RequireAuth(), m.RequirePermission(policy.ResourceEvent, policy.OpCreate), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	r.GET("/units", m.RequireAuth(), m.RequirePermission(policy.ResourceUnit, policy.OpList), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"viewer cannot create events", http.MethodPost, "/events", viewer, http.StatusForbidden},
		{"unit admin creates events", http.MethodPost, "/events", unitAdmin, http.StatusCreated},
		{"global admin creates events", http.MethodPost, "/events", global, http.StatusCreated},
		{"unit admin cannot list units", http.MethodGet, "/units", unitAdmin, http.StatusForbidden},
		{"global admin lists units", http.MethodGet, "/units", global, http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusForbidden && !strings.Contains(w.Body.String(), `"forbidden"`) {
				t.Fatalf("expected forbidden code, body=%s", w.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	limited := 0
	rl.OnLimited = func() { limited++ }

	r := gin.New()
	r.POST("/auth/login", rl.RateLimiterMiddleware(KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := do(); w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i, w.Code)
		}
	}

	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Fatalf("unexpected Retry-After %q", w.Header().Get("Retry-After"))
	}
	if limited != 1 {
		t.Fatalf("expected OnLimited once, got %d", limited)
	}

	now = now.Add(time.Minute + time.Second)
	if w := do(); w.Code != http.StatusOK {
		t.Fatalf("expected window reset, got %d", w.Code)
	}
}

func TestWritesOnlyKeysByUser(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(CtxActor, policy.Actor{UserID: id})
		}
		c.Next()
	})
	r.Use(WritesOnly(rl.RateLimiterMiddleware(KeyByUserOrIP)))
	r.GET("/events", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/events", func(c *gin.Context) { c.Status(http.StatusCreated) })

	do := func(method, userID string) int {
		req := httptest.NewRequest(method, "/events", nil)
		req.RemoteAddr = "10.0.0.9:4000"
		if userID != "" {
			req.Header.Set("X-Test-User", userID)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	tests := []struct {
		name   string
		method string
		user   string
		want   int
	}{
		{name: "first write for u1", method: http.MethodPost, user: "u1", want: http.StatusCreated},
		{name: "second write for u1", method: http.MethodPost, user: "u1", want: http.StatusTooManyRequests},
		{name: "reads pass", method: http.MethodGet, user: "u1", want: http.StatusOK},
		{name: "u2 has its own bucket", method: http.MethodPost, user: "u2", want: http.StatusCreated},
		{name: "anonymous falls back to ip", method: http.MethodPost, want: http.StatusCreated},
		{name: "same ip again", method: http.MethodPost, want: http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		if got := do(tt.method, tt.user); got != tt.want {
			t.Fatalf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())

	var fromCtx string
	r.GET("/x", func(c *gin.Context) {
		fromCtx, _ = actorctx.RequestIDFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-Id") != "abc-123" || fromCtx != "abc-123" {
		t.Fatalf("request id not propagated: header=%q ctx=%q", w.Header().Get("X-Request-Id"), fromCtx)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(RequireJSON())
	r.POST("/units", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodPost, "/units", strings.NewReader("name=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/units", strings.NewReader(`{"name":"x"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
}
