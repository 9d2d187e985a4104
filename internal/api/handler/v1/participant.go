package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/credenciamento/event-api/internal/api/handler/v1/request"
	"github.com/credenciamento/event-api/internal/api/handler/v1/response"
	"github.com/credenciamento/event-api/internal/api/middleware"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/service"
)

type ParticipantService interface {
	CreateParticipant(ctx context.Context, actor domain.Actor, p domain.Participant) (domain.Participant, error)
	GetParticipant(ctx context.Context, eventID, id uint) (domain.Participant, error)
	UpdateParticipant(ctx context.Context, actor domain.Actor, p domain.Participant) (domain.Participant, error)
	DeleteParticipant(ctx context.Context, actor domain.Actor, eventID, id uint) error
	ListParticipants(ctx context.Context, eventID uint, filter domain.ParticipantFilter) (domain.Page[domain.Participant], error)
}

type ParticipantHandler struct {
	svc ParticipantService
}

func NewParticipantHandler(svc ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{
		svc: svc,
	}
}

// statusParams maps the public status filter values to attendance states.
var statusParams = map[string]domain.AttendanceStatus{
	"checked_in":  domain.StatusPresent,
	"present":     domain.StatusPresent,
	"checked_out": domain.StatusCheckedOut,
	"absent":      domain.StatusAbsent,
}

func participantFilter(ctx *gin.Context) (domain.ParticipantFilter, *response.Err) {
	filter := domain.ParticipantFilter{
		Search:  ctx.Query("q"),
		Company: ctx.Query("company"),
		WorkDay: ctx.Query("work_day"),
	}

	if raw := ctx.Query("credential_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid credential_id %q", raw))
		}
		credentialID := uint(id)
		filter.CredentialID = &credentialID
	}

	if raw := ctx.Query("status"); raw != "" {
		status, ok := statusParams[raw]
		if !ok {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid status %q", raw))
		}
		filter.Status = status
	}

	var err error
	if filter.Page, err = queryInt(ctx, "page"); err != nil {
		return filter, response.ErrBadRequest(err)
	}
	if filter.PageSize, err = queryInt(ctx, "page_size"); err != nil {
		return filter, response.ErrBadRequest(err)
	}

	return filter, nil
}

func queryInt(ctx *gin.Context, key string) (int, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}

// HandleListParticipants godoc
// @Summary      List the participants of an event
// @Description  Filters combine with AND. q uses the participant search index.
// @Tags         participants
// @Produce      json
// @Param        eventID        path   int     true   "Event ID"
// @Param        q              query  string  false  "search terms"
// @Param        credential_id  query  int     false  "credential"
// @Param        company        query  string  false  "company"
// @Param        status         query  string  false  "checked_in, checked_out or absent"
// @Param        work_day       query  string  false  "YYYY-MM-DD"
// @Param        page           query  int     false  "page, default 1"
// @Param        page_size      query  int     false  "page size, default 50, max 500"
// @Success      200  {object}  domain.Page[domain.Participant]
// @Failure      400  {object}  response.Err
// @Router       /events/{eventID}/participants [get]
// @Security     BearerAuth
func (h *ParticipantHandler) HandleListParticipants(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter, respErr := participantFilter(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	page, err := h.svc.ListParticipants(ctx.Request.Context(), eventID, filter)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListParticipants -> h.svc.ListParticipants", err)
		return
	}

	ctx.JSON(http.StatusOK, page)
}

// HandleCreateParticipant godoc
// @Summary      Register a participant
// @Tags         participants
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                         true  "Event ID"
// @Param        request  body      request.ParticipantRequest  true  "participant"
// @Success      201  {object}  domain.Participant
// @Failure      400  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Router       /events/{eventID}/participants [post]
// @Security     BearerAuth
func (h *ParticipantHandler) HandleCreateParticipant(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ParticipantRequest
	if !bindJSON(ctx, &req) {
		return
	}

	created, err := h.svc.CreateParticipant(ctx.Request.Context(), middleware.ActorFrom(ctx), req.ToDomain(eventID))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateParticipant -> h.svc.CreateParticipant", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetParticipant godoc
// @Summary      Get a participant
// @Tags         participants
// @Produce      json
// @Param        eventID        path  int  true  "Event ID"
// @Param        participantID  path  int  true  "Participant ID"
// @Success      200  {object}  domain.Participant
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/participants/{participantID} [get]
// @Security     BearerAuth
func (h *ParticipantHandler) HandleGetParticipant(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	participantID, respErr := parseID(ctx, "participantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	p, err := h.svc.GetParticipant(ctx.Request.Context(), eventID, participantID)
	if err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("participant", "ID", participantID))
			return
		}
		renderServiceErr(ctx, "v1.HandleGetParticipant -> h.svc.GetParticipant", err)
		return
	}

	ctx.JSON(http.StatusOK, p)
}

// HandleUpdateParticipant godoc
// @Summary      Update a participant
// @Description  Attendance fields are only changed by check-in and check-out.
// @Tags         participants
// @Accept       json
// @Produce      json
// @Param        eventID        path  int                         true  "Event ID"
// @Param        participantID  path  int                         true  "Participant ID"
// @Param        request        body  request.ParticipantRequest  true  "participant"
// @Success      200  {object}  domain.Participant
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /events/{eventID}/participants/{participantID} [put]
// @Security     BearerAuth
func (h *ParticipantHandler) HandleUpdateParticipant(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	participantID, respErr := parseID(ctx, "participantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ParticipantRequest
	if !bindJSON(ctx, &req) {
		return
	}

	p := req.ToDomain(eventID)
	p.ID = participantID

	updated, err := h.svc.UpdateParticipant(ctx.Request.Context(), middleware.ActorFrom(ctx), p)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateParticipant -> h.svc.UpdateParticipant", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteParticipant godoc
// @Summary      Delete a participant
// @Tags         participants
// @Param        eventID        path  int  true  "Event ID"
// @Param        participantID  path  int  true  "Participant ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/participants/{participantID} [delete]
// @Security     BearerAuth
func (h *ParticipantHandler) HandleDeleteParticipant(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	participantID, respErr := parseID(ctx, "participantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteParticipant(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, participantID); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteParticipant -> h.svc.DeleteParticipant", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
