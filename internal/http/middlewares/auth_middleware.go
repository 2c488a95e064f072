package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/agenda/internal/actorctx"
	"github.com/geocoder89/agenda/internal/apperr"
	"github.com/geocoder89/agenda/internal/auth"
	"github.com/geocoder89/agenda/internal/domain/user"
	"github.com/geocoder89/agenda/internal/policy"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RevocationChecker reports whether a token id was logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthMiddleware struct {
	jwt     TokenVerifier
	revoked RevocationChecker
}

// NewAuthMiddleware builds the bearer-token gate. revoked may be nil when no
// denylist is configured.
func NewAuthMiddleware(jwt TokenVerifier, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, revoked: revoked}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid access token")
			return
		}

		claims, err := m.jwt.Verify(raw)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token")
			return
		}

		role, err := user.ParseRole(claims.Role)
		if err != nil || claims.UserID == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token")
			return
		}

		if m.revoked != nil {
			revoked, err := m.revoked.IsRevoked(c.Request.Context(), claims.JTI)
			if err != nil {
				slog.Default().ErrorContext(c.Request.Context(), "revocation check failed", "err", err)
				abortJSON(c, http.StatusServiceUnavailable, "service_unavailable", "Could not verify session")
				return
			}
			if revoked {
				abortJSON(c, http.StatusUnauthorized, "unauthorized", "Session has been closed")
				return
			}
		}

		actor := policy.Actor{UserID: claims.UserID, Role: role, UnitID: claims.UnitID}

		var expiresAt time.Time
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}

		ctx := actorctx.WithActor(c.Request.Context(), actor)
		ctx = actorctx.WithSession(ctx, actorctx.Session{JTI: claims.JTI, ExpiresAt: expiresAt})
		c.Request = c.Request.WithContext(ctx)
		c.Set(CtxActor, actor)

		c.Next()
	}
}

// RequirePermission rejects a request before its body is read when the
// actor's role could never perform op on res, even inside their own unit.
// Unit ownership of the addressed resource is checked again by the service.
func (m *AuthMiddleware) RequirePermission(res policy.Resource, op policy.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, ok := ActorFromContext(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}

		if err := policy.Authorize(a, res, op, a.UnitID); err != nil {
			msg := "Operation not permitted"
			if e, ok := apperr.As(err); ok {
				msg = e.Message
			}
			abortJSON(c, http.StatusForbidden, "forbidden", msg)
			return
		}
		c.Next()
	}
}

func ActorFromContext(c *gin.Context) (policy.Actor, bool) {
	v, ok := c.Get(CtxActor)
	if !ok {
		return policy.Actor{}, false
	}
	a, ok := v.(policy.Actor)
	return a, ok && a.UserID != ""
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(c *gin.Context) (string, bool) {
	a, ok := ActorFromContext(c)
	if !ok {
		return "", false
	}
	return a.UserID, true
}
