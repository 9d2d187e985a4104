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

type CredentialService interface {
	CreateCredential(ctx context.Context, actor domain.Actor, c domain.Credential) (domain.Credential, error)
	GetCredential(ctx context.Context, eventID, id uint) (domain.Credential, error)
	ListCredentials(ctx context.Context, eventID uint) ([]domain.Credential, error)
	UpdateCredential(ctx context.Context, actor domain.Actor, c domain.Credential) (domain.Credential, error)
	ToggleActive(ctx context.Context, actor domain.Actor, eventID, id uint) (domain.Credential, error)
	ToggleDistributed(ctx context.Context, actor domain.Actor, eventID, id uint) (domain.Credential, error)
	DeleteCredential(ctx context.Context, actor domain.Actor, eventID, id uint) error
}

type CredentialHandler struct {
	svc CredentialService
}

func NewCredentialHandler(svc CredentialService) *CredentialHandler {
	return &CredentialHandler{
		svc: svc,
	}
}

func credentialPath(ctx *gin.Context) (eventID, credentialID uint, respErr *response.Err) {
	if eventID, respErr = parseEventID(ctx); respErr != nil {
		return 0, 0, respErr
	}
	if credentialID, respErr = parseID(ctx, "credentialID"); respErr != nil {
		return 0, 0, respErr
	}
	return eventID, credentialID, nil
}

// HandleListCredentials godoc
// @Summary      List the credentials of an event
// @Tags         credentials
// @Produce      json
// @Param        eventID  path  int  true  "Event ID"
// @Success      200  {array}   domain.Credential
// @Router       /events/{eventID}/credentials [get]
// @Security     BearerAuth
func (h *CredentialHandler) HandleListCredentials(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	credentials, err := h.svc.ListCredentials(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListCredentials -> h.svc.ListCredentials", err)
		return
	}

	ctx.JSON(http.StatusOK, credentials)
}

// HandleCreateCredential godoc
// @Summary      Create a credential
// @Tags         credentials
// @Accept       json
// @Produce      json
// @Param        eventID  path  int                        true  "Event ID"
// @Param        request  body  request.CredentialRequest  true  "credential"
// @Success      201  {object}  domain.Credential
// @Failure      400  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /events/{eventID}/credentials [post]
// @Security     BearerAuth
func (h *CredentialHandler) HandleCreateCredential(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CredentialRequest
	if !bindJSON(ctx, &req) {
		return
	}

	created, err := h.svc.CreateCredential(ctx.Request.Context(), middleware.ActorFrom(ctx), req.ToDomain(eventID))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateCredential -> h.svc.CreateCredential", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleGetCredential godoc
// @Summary      Get a credential
// @Tags         credentials
// @Produce      json
// @Param        eventID       path  int  true  "Event ID"
// @Param        credentialID  path  int  true  "Credential ID"
// @Success      200  {object}  domain.Credential
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/credentials/{credentialID} [get]
// @Security     BearerAuth
func (h *CredentialHandler) HandleGetCredential(ctx *gin.Context) {
	eventID, credentialID, respErr := credentialPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	c, err := h.svc.GetCredential(ctx.Request.Context(), eventID, credentialID)
	if err != nil {
		if errors.Is(err, service.ErrCredentialNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("credential", "ID", credentialID))
			return
		}
		renderServiceErr(ctx, "v1.HandleGetCredential -> h.svc.GetCredential", err)
		return
	}

	ctx.JSON(http.StatusOK, c)
}

// HandleUpdateCredential godoc
// @Summary      Update a credential
// @Description  The distribution flag is kept, use the toggle route to change it.
// @Tags         credentials
// @Accept       json
// @Produce      json
// @Param        eventID       path  int                        true  "Event ID"
// @Param        credentialID  path  int                        true  "Credential ID"
// @Param        request       body  request.CredentialRequest  true  "credential"
// @Success      200  {object}  domain.Credential
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /events/{eventID}/credentials/{credentialID} [put]
// @Security     BearerAuth
func (h *CredentialHandler) HandleUpdateCredential(ctx *gin.Context) {
	eventID, credentialID, respErr := credentialPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CredentialRequest
	if !bindJSON(ctx, &req) {
		return
	}

	existing, err := h.svc.GetCredential(ctx.Request.Context(), eventID, credentialID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateCredential -> h.svc.GetCredential", err)
		return
	}

	c := req.ToDomain(eventID)
	c.ID = credentialID
	c.Distributed = existing.Distributed
	if req.Active == nil {
		c.Active = existing.Active
	}

	updated, err := h.svc.UpdateCredential(ctx.Request.Context(), middleware.ActorFrom(ctx), c)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleUpdateCredential -> h.svc.UpdateCredential", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleToggleCredentialActive godoc
// @Summary      Activate or deactivate a credential
// @Tags         credentials
// @Produce      json
// @Param        eventID       path  int  true  "Event ID"
// @Param        credentialID  path  int  true  "Credential ID"
// @Success      200  {object}  domain.Credential
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/credentials/{credentialID}/toggle-active [patch]
// @Security     BearerAuth
func (h *CredentialHandler) HandleToggleCredentialActive(ctx *gin.Context) {
	eventID, credentialID, respErr := credentialPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	c, err := h.svc.ToggleActive(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, credentialID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleToggleCredentialActive -> h.svc.ToggleActive", err)
		return
	}

	ctx.JSON(http.StatusOK, c)
}

// HandleToggleCredentialDistributed godoc
// @Summary      Flip the distribution flag of a credential
// @Tags         credentials
// @Produce      json
// @Param        eventID       path  int  true  "Event ID"
// @Param        credentialID  path  int  true  "Credential ID"
// @Success      200  {object}  domain.Credential
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/credentials/{credentialID}/toggle-distributed [patch]
// @Security     BearerAuth
func (h *CredentialHandler) HandleToggleCredentialDistributed(ctx *gin.Context) {
	eventID, credentialID, respErr := credentialPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	c, err := h.svc.ToggleDistributed(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, credentialID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleToggleCredentialDistributed -> h.svc.ToggleDistributed", err)
		return
	}

	ctx.JSON(http.StatusOK, c)
}

// HandleDeleteCredential godoc
// @Summary      Delete a credential
// @Description  Refused with 409 while participants still hold the credential.
// @Tags         credentials
// @Param        eventID       path  int  true  "Event ID"
// @Param        credentialID  path  int  true  "Credential ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /events/{eventID}/credentials/{credentialID} [delete]
// @Security     BearerAuth
func (h *CredentialHandler) HandleDeleteCredential(ctx *gin.Context) {
	eventID, credentialID, respErr := credentialPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteCredential(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, credentialID); err != nil {
		renderServiceErr(ctx, "v1.HandleDeleteCredential -> h.svc.DeleteCredential", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
