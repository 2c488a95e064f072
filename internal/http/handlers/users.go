package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/agenda/internal/directory"
	"github.com/geocoder89/agenda/internal/domain/user"
	"github.com/geocoder89/agenda/internal/policy"
	"github.com/geocoder89/agenda/internal/service"
)

type UsersService interface {
	List(ctx context.Context, a policy.Actor) ([]user.User, error)
	ListByUnit(ctx context.Context, a policy.Actor, unitID string) ([]user.User, error)
	Create(ctx context.Context, a policy.Actor, req user.CreateUserRequest) (user.User, error)
	Update(ctx context.Context, a policy.Actor, id string, req user.UpdateUserRequest) (user.User, error)
	Delete(ctx context.Context, a policy.Actor, id string) error
	CheckExternalID(ctx context.Context, a policy.Actor, externalID, excludeID string) (bool, error)
}

type EmployeeValidator interface {
	Validate(ctx context.Context, a policy.Actor, externalID string) (directory.Employee, error)
}

type UsersHandler struct {
	svc       UsersService
	employees EmployeeValidator
}

func NewUsersHandler(svc UsersService, employees EmployeeValidator) *UsersHandler {
	return &UsersHandler{svc: svc, employees: employees}
}

func respondUsers(ctx *gin.Context, users []user.User) {
	if users == nil {
		users = []user.User{}
	}
	ctx.JSON(http.StatusOK, gin.H{
		"items": users,
		"count": len(users),
	})
}

func (h *UsersHandler) List(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	users, err := h.svc.List(cctx, a)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	respondUsers(ctx, users)
}

func (h *UsersHandler) ListByUnit(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	users, err := h.svc.ListByUnit(cctx, a, ctx.Param("unitId"))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	respondUsers(ctx, users)
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	var req user.CreateUserRequest
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

func (h *UsersHandler) Update(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	var req user.UpdateUserRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := h.svc.Update(cctx, a, ctx.Param("id"), req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
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

// CheckExternalID reports whether an external id is still free, optionally
// ignoring the user being edited.
func (h *UsersHandler) CheckExternalID(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	externalID := strings.TrimSpace(ctx.Param("id"))

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	available, err := h.svc.CheckExternalID(cctx, a, externalID, strings.TrimSpace(ctx.Query("excludeUserId")))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"available":  available,
		"externalId": externalID,
	})
}

func (h *UsersHandler) ValidateEmployee(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	var req service.ValidateEmployeeRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	emp, err := h.employees.Validate(cctx, a, req.ExternalID)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"found":      true,
		"name":       emp.Name,
		"externalId": emp.ExternalID,
	})
}
