package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/credenciamento/event-api/internal/api/handler/v1/request"
	"github.com/credenciamento/event-api/internal/api/handler/v1/response"
	"github.com/credenciamento/event-api/internal/api/middleware"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/service"
)

type EventService interface {
	CreateEvent(ctx context.Context, actor domain.Actor, event domain.Event) (domain.Event, error)
	GetEvent(ctx context.Context, id uint) (domain.Event, error)
	ListEvents(ctx context.Context, filter domain.EventFilter, allowed []uint) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, actor domain.Actor, event domain.Event) (domain.Event, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id uint, status domain.EventStatus) (domain.Event, error)
	UpdateStaff(ctx context.Context, actor domain.Actor, id uint, managers, staff []domain.StaffMember) (domain.Event, error)
	DeleteEvent(ctx context.Context, actor domain.Actor, id uint) error
}

type StatsService interface {
	EventStats(ctx context.Context, eventID uint) (domain.EventStats, error)
}

type EventHandler struct {
	svc       EventService
	stats     StatsService
	operators middleware.OperatorFinder
}

func NewEventHandler(svc EventService, stats StatsService, operators middleware.OperatorFinder) *EventHandler {
	return &EventHandler{
		svc:       svc,
		stats:     stats,
		operators: operators,
	}
}

// HandleListEvents godoc
// @Summary      List events
// @Description  Operators only see the events they are assigned to.
// @Tags         events
// @Produce      json
// @Param        status      query     string  false  "active, inactive, finished or canceled"
// @Param        visibility  query     string  false  "public or private"
// @Param        q           query     string  false  "name search"
// @Success      200  {array}   domain.Event
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	filter := domain.EventFilter{
		Status:     domain.EventStatus(ctx.Query("status")),
		Visibility: domain.EventVisibility(ctx.Query("visibility")),
		Search:     ctx.Query("q"),
	}

	var allowed []uint
	if middleware.Role(ctx) == domain.RoleOperator {
		operator, err := h.operators.GetOperator(ctx.Request.Context(), middleware.UserID(ctx))
		if err != nil {
			if errors.Is(err, service.ErrOperatorNotFound) {
				response.RenderErr(ctx, response.ErrUnauthorized(err))
				return
			}
			renderServiceErr(ctx, "v1.HandleListEvents -> h.operators.GetOperator", err)
			return
		}
		allowed = append([]uint{}, operator.EventIDs...)
	}

	events, err := h.svc.ListEvents(ctx.Request.Context(), filter, allowed)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListEvents -> h.svc.ListEvents", err)
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.EventRequest  true  "event"
// @Success      201  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [post]
// @Security     BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	var req request.EventRequest
	if !bindJSON(ctx, &req) {
		return
	}

	event, err := req.ToDomain()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateEvent(ctx.Request.Context(), middleware.ActorFrom(ctx), event)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateEvent -> h.svc.CreateEvent", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID} [get]
// @Security     BearerAuth
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}
		renderServiceErr(ctx, "v1.HandleGetEvent -> h.svc.GetEvent", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Description  Replaces the editable fields. Status and staff have their own routes.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                   true  "Event ID"
// @Param        request  body      request.EventRequest  true  "event"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID} [put]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.EventRequest
	if !bindJSON(ctx, &req) {
		return
	}

	event, err := req.ToDomain()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	event.ID = eventID

	updated, err := h.svc.UpdateEvent(ctx.Request.Context(), middleware.ActorFrom(ctx), event)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateEvent -> h.svc.UpdateEvent", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleUpdateEventStatus godoc
// @Summary      Change the status of an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                         true  "Event ID"
// @Param        request  body      request.EventStatusRequest  true  "status"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/status [patch]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEventStatus(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.EventStatusRequest
	if !bindJSON(ctx, &req) {
		return
	}

	event, err := h.svc.UpdateStatus(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, domain.EventStatus(req.Status))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateEventStatus -> h.svc.UpdateStatus", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleUpdateEventStaff godoc
// @Summary      Replace the managers and staff of an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                        true  "Event ID"
// @Param        request  body      request.EventStaffRequest  true  "staff"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/staff [put]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEventStaff(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.EventStaffRequest
	if !bindJSON(ctx, &req) {
		return
	}

	managers, staff := req.ToDomain()
	event, err := h.svc.UpdateStaff(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, managers, staff)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateEventStaff -> h.svc.UpdateStaff", err)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Tags         events
// @Param        eventID  path      int  true  "Event ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID} [delete]
// @Security     BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteEvent(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteEvent -> h.svc.DeleteEvent", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetEventStats godoc
// @Summary      Dashboard statistics of an event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200  {object}  domain.EventStats
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/stats [get]
// @Security     BearerAuth
func (h *EventHandler) HandleGetEventStats(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stats, err := h.stats.EventStats(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleGetEventStats -> h.stats.EventStats", err)
		return
	}

	ctx.JSON(http.StatusOK, stats)
}
