package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/credenciamento/event-api/internal/api/handler/v1/request"
	"github.com/credenciamento/event-api/internal/api/handler/v1/response"
	"github.com/credenciamento/event-api/internal/api/middleware"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/service"
)

type MovementService interface {
	AssignCode(ctx context.Context, actor domain.Actor, eventID, participantID uint, code string) (domain.MovementCredential, error)
	GetMovement(ctx context.Context, eventID, participantID uint) (domain.MovementCredential, error)
	FindHolder(ctx context.Context, eventID uint, code string) (domain.Participant, domain.MovementCredential, error)
	ListMovements(ctx context.Context, eventID uint) ([]domain.MovementCredential, error)
}

type MovementHandler struct {
	svc MovementService
}

func NewMovementHandler(svc MovementService) *MovementHandler {
	return &MovementHandler{
		svc: svc,
	}
}

// HandleAssignCode godoc
// @Summary      Give a wristband code to a participant
// @Description  The previous code moves to the history. Assigning the current code again changes nothing.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        eventID        path  int                        true  "Event ID"
// @Param        participantID  path  int                        true  "Participant ID"
// @Param        request        body  request.AssignCodeRequest  true  "code"
// @Success      200  {object}  domain.MovementCredential
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /events/{eventID}/participants/{participantID}/movement [put]
// @Security     BearerAuth
func (h *MovementHandler) HandleAssignCode(ctx *gin.Context) {
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

	var req request.AssignCodeRequest
	if !bindJSON(ctx, &req) {
		return
	}

	m, err := h.svc.AssignCode(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, participantID, req.Code)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleAssignCode -> h.svc.AssignCode", err)
		return
	}

	ctx.JSON(http.StatusOK, m)
}

// HandleGetMovement godoc
// @Summary      Get the wristband code of a participant
// @Tags         movements
// @Produce      json
// @Param        eventID        path  int  true  "Event ID"
// @Param        participantID  path  int  true  "Participant ID"
// @Success      200  {object}  domain.MovementCredential
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/participants/{participantID}/movement [get]
// @Security     BearerAuth
func (h *MovementHandler) HandleGetMovement(ctx *gin.Context) {
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

	m, err := h.svc.GetMovement(ctx.Request.Context(), eventID, participantID)
	if err != nil {
		if errors.Is(err, service.ErrMovementNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("movement credential", "participantID", participantID))
			return
		}
		renderServiceErr(ctx, "v1.HandleGetMovement -> h.svc.GetMovement", err)
		return
	}

	ctx.JSON(http.StatusOK, m)
}

// HandleListMovements godoc
// @Summary      List the wristband codes of an event
// @Tags         movements
// @Produce      json
// @Param        eventID  path   int     true   "Event ID"
// @Success      200  {array}   domain.MovementCredential
// @Router       /events/{eventID}/movements [get]
// @Security     BearerAuth
func (h *MovementHandler) HandleListMovements(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	movements, err := h.svc.ListMovements(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListMovements -> h.svc.ListMovements", err)
		return
	}

	ctx.JSON(http.StatusOK, movements)
}

// HandleFindHolder godoc
// @Summary      Find who holds a wristband code
// @Tags         movements
// @Produce      json
// @Param        eventID  path   int     true  "Event ID"
// @Param        code     query  string  true  "wristband code"
// @Success      200  {object}  response.MovementHolder
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/movements/holder [get]
// @Security     BearerAuth
func (h *MovementHandler) HandleFindHolder(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	code := strings.TrimSpace(ctx.Query("code"))
	if code == "" {
		response.RenderErr(ctx, response.ErrBadRequest(service.ErrEmptyCredentialCode))
		return
	}

	p, m, err := h.svc.FindHolder(ctx.Request.Context(), eventID, code)
	if err != nil {
		if errors.Is(err, service.ErrMovementNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("movement credential", "code", code))
			return
		}
		renderServiceErr(ctx, "v1.HandleFindHolder -> h.svc.FindHolder", err)
		return
	}

	ctx.JSON(http.StatusOK, response.MovementHolder{Participant: p, Movement: m})
}
