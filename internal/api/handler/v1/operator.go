package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/credenciamento/event-api/internal/api/handler/v1/request"
	"github.com/credenciamento/event-api/internal/api/handler/v1/response"
	"github.com/credenciamento/event-api/internal/api/middleware"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/service"
)

type OperatorService interface {
	CreateOperator(ctx context.Context, actor domain.Actor, op domain.Operator) (domain.Operator, error)
	GetOperator(ctx context.Context, id uint) (domain.Operator, error)
	ListOperators(ctx context.Context, search string) ([]domain.Operator, error)
	UpdateOperator(ctx context.Context, actor domain.Actor, op domain.Operator) (domain.Operator, error)
	SyncOperator(ctx context.Context, actor domain.Actor, incoming domain.Operator) (domain.Operator, error)
	DeleteOperator(ctx context.Context, actor domain.Actor, id uint) error
}

type OperatorHandler struct {
	svc OperatorService
}

func NewOperatorHandler(svc OperatorService) *OperatorHandler {
	return &OperatorHandler{
		svc: svc,
	}
}

// HandleListOperators godoc
// @Summary      List operators
// @Tags         operators
// @Produce      json
// @Param        q  query  string  false  "name or CPF"
// @Success      200  {array}   domain.Operator
// @Router       /operators [get]
// @Security     BearerAuth
func (h *OperatorHandler) HandleListOperators(ctx *gin.Context) {
	ops, err := h.svc.ListOperators(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListOperators -> h.svc.ListOperators", err)
		return
	}

	ctx.JSON(http.StatusOK, ops)
}

// HandleCreateOperator godoc
// @Summary      Create an operator
// @Tags         operators
// @Accept       json
// @Produce      json
// @Param        request  body  request.OperatorRequest  true  "operator"
// @Success      201  {object}  domain.Operator
// @Failure      400  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /operators [post]
// @Security     BearerAuth
func (h *OperatorHandler) HandleCreateOperator(ctx *gin.Context) {
	var req request.OperatorRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.ValidateCreate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateOperator(ctx.Request.Context(), middleware.ActorFrom(ctx), req.ToDomain())
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateOperator -> h.svc.CreateOperator", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetOperator godoc
// @Summary      Get an operator
// @Tags         operators
// @Produce      json
// @Param        operatorID  path  int  true  "Operator ID"
// @Success      200  {object}  domain.Operator
// @Failure      404  {object}  response.Err
// @Router       /operators/{operatorID} [get]
// @Security     BearerAuth
func (h *OperatorHandler) HandleGetOperator(ctx *gin.Context) {
	id, respErr := h.operatorID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	op, err := h.svc.GetOperator(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOperatorNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("operator", "ID", id))
			return
		}
		renderServiceErr(ctx, "v1.HandleGetOperator -> h.svc.GetOperator", err)
		return
	}

	ctx.JSON(http.StatusOK, op)
}

// HandleUpdateOperator godoc
// @Summary      Update an operator
// @Description  An empty password keeps the current one.
// @Tags         operators
// @Accept       json
// @Produce      json
// @Param        operatorID  path  int                      true  "Operator ID"
// @Param        request     body  request.OperatorRequest  true  "operator"
// @Success      200  {object}  domain.Operator
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /operators/{operatorID} [put]
// @Security     BearerAuth
func (h *OperatorHandler) HandleUpdateOperator(ctx *gin.Context) {
	id, respErr := h.operatorID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.OperatorRequest
	if !bindJSON(ctx, &req) {
		return
	}

	op := req.ToDomain()
	op.ID = id

	updated, err := h.svc.UpdateOperator(ctx.Request.Context(), middleware.ActorFrom(ctx), op)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateOperator -> h.svc.UpdateOperator", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleSyncOperator godoc
// @Summary      Reconcile an operator record edited offline
// @Description  Name and events follow the newest updated_at. Actions are merged by ID and capped at the latest 500.
// @Tags         operators
// @Accept       json
// @Produce      json
// @Param        operatorID  path  int                          true  "Operator ID"
// @Param        request     body  request.OperatorSyncRequest  true  "client copy"
// @Success      200  {object}  domain.Operator
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /operators/{operatorID}/sync [put]
// @Security     BearerAuth
func (h *OperatorHandler) HandleSyncOperator(ctx *gin.Context) {
	id, respErr := h.operatorID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	// Operators may only sync their own record.
	if middleware.Role(ctx) == domain.RoleOperator && middleware.UserID(ctx) != id {
		response.RenderErr(ctx, response.ErrPermissionDenied(fmt.Errorf("operator %d cannot sync operator %d", middleware.UserID(ctx), id)))
		return
	}

	var req request.OperatorSyncRequest
	if !bindJSON(ctx, &req) {
		return
	}

	merged, err := h.svc.SyncOperator(ctx.Request.Context(), middleware.ActorFrom(ctx), req.ToDomain(id))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleSyncOperator -> h.svc.SyncOperator", err)
		return
	}

	ctx.JSON(http.StatusOK, merged)
}

// HandleDeleteOperator godoc
// @Summary      Delete an operator
// @Tags         operators
// @Param        operatorID  path  int  true  "Operator ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /operators/{operatorID} [delete]
// @Security     BearerAuth
func (h *OperatorHandler) HandleDeleteOperator(ctx *gin.Context) {
	id, respErr := h.operatorID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteOperator(ctx.Request.Context(), middleware.ActorFrom(ctx), id); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteOperator -> h.svc.DeleteOperator", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *OperatorHandler) operatorID(ctx *gin.Context) (uint, *response.Err) {
	return parseID(ctx, "operatorID")
}
