package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/agenda/internal/domain/unit"
	"github.com/geocoder89/agenda/internal/policy"
)

type UnitsService interface {
	List(ctx context.Context, a policy.Actor) ([]unit.Unit, error)
	Create(ctx context.Context, a policy.Actor, req unit.UnitRequest) (unit.Unit, error)
	Rename(ctx context.Context, a policy.Actor, id string, req unit.UnitRequest) (unit.Unit, error)
	Delete(ctx context.Context, a policy.Actor, id string) error
}

type UnitsHandler struct {
	svc UnitsService
}

func NewUnitsHandler(svc UnitsService) *UnitsHandler {
	return &UnitsHandler{svc: svc}
}

func (h *UnitsHandler) List(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	units, err := h.svc.List(cctx, a)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": units,
		"count": len(units),
	})
}

func (h *UnitsHandler) Create(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	var req unit.UnitRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := h.svc.Create(cctx, a, req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *UnitsHandler) Rename(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	var req unit.UnitRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := h.svc.Rename(cctx, a, ctx.Param("id"), req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UnitsHandler) Delete(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	if err := h.svc.Delete(cctx, a, ctx.Param("id")); err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
