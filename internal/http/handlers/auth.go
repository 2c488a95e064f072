package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/agenda/internal/actorctx"
	"github.com/geocoder89/agenda/internal/domain/user"
	"github.com/geocoder89/agenda/internal/policy"
	"github.com/geocoder89/agenda/internal/service"
)

// requestTimeout bounds every store round trip made for one request.
const requestTimeout = 3 * time.Second

func withTimeout(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), requestTimeout)
}

type AuthService interface {
	Login(ctx context.Context, req service.LoginRequest) (service.LoginResult, error)
	Me(ctx context.Context, a policy.Actor) (user.User, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req service.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := h.svc.Login(cctx, req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := h.svc.Me(cctx, a)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// Logout closes the session that authenticated this request.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	if _, ok := actor(ctx); !ok {
		return
	}

	s, _ := actorctx.SessionFrom(ctx.Request.Context())

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := h.svc.Logout(cctx, s.JTI, s.ExpiresAt); err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
