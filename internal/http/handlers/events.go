package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/agenda/internal/domain/event"
	"github.com/geocoder89/agenda/internal/export"
	"github.com/geocoder89/agenda/internal/policy"
	"github.com/geocoder89/agenda/internal/service"
)

type EventsService interface {
	List(ctx context.Context, a policy.Actor, q service.ListQuery) ([]event.Event, error)
	Get(ctx context.Context, a policy.Actor, id string) (event.Event, error)
	Create(ctx context.Context, a policy.Actor, req event.EventRequest) (event.Event, error)
	Update(ctx context.Context, a policy.Actor, id string, req event.EventRequest) (event.Event, error)
	Delete(ctx context.Context, a policy.Actor, id string) error
}

type EventsHandler struct {
	svc EventsService
	loc *time.Location
	now func() time.Time
}

// NewEventsHandler renders calendar exports in loc, the municipality's zone.
func NewEventsHandler(svc EventsService, loc *time.Location) *EventsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &EventsHandler{svc: svc, loc: loc, now: time.Now}
}

func listQueryFrom(ctx *gin.Context) service.ListQuery {
	q := service.ListQuery{
		StartDate: strings.TrimSpace(ctx.Query("start_date")),
		EndDate:   strings.TrimSpace(ctx.Query("end_date")),
	}
	if unitID := strings.TrimSpace(ctx.Query("unitId")); unitID != "" {
		q.UnitID = &unitID
	}
	return q
}

func (h *EventsHandler) ListEvents(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	events, err := h.svc.List(cctx, a, listQueryFrom(ctx))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	if events == nil {
		events = []event.Event{}
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": events,
		"count": len(events),
	})
}

func (h *EventsHandler) GetEventByID(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	e, err := h.svc.Get(cctx, a, ctx.Param("id"))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, e)
}

func (h *EventsHandler) CreateEvent(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	var req event.EventRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	e, err := h.svc.Create(cctx, a, req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, e)
}

func (h *EventsHandler) UpdateEvent(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	var req event.EventRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	e, err := h.svc.Update(cctx, a, ctx.Param("id"), req)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, e)
}

func (h *EventsHandler) DeleteEvent(ctx *gin.Context) {
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

// ExportICS serves the same listing as ListEvents as an iCalendar file.
func (h *EventsHandler) ExportICS(ctx *gin.Context) {
	a, ok := actor(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx)
	defer cancel()

	events, err := h.svc.List(cctx, a, listQueryFrom(ctx))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	body := export.Calendar("Agenda", events, h.loc, h.now())

	ctx.Header("Content-Disposition", `attachment; filename="agenda.ics"`)
	ctx.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
