package v1

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/credenciamento/event-api/internal/api/handler/v1/response"
	"github.com/credenciamento/event-api/internal/domain"
)

type AuditService interface {
	List(ctx context.Context, filter domain.AuditFilter) (domain.Page[domain.AuditEntry], error)
}

type AuditHandler struct {
	svc AuditService
}

func NewAuditHandler(svc AuditService) *AuditHandler {
	return &AuditHandler{
		svc: svc,
	}
}

func auditFilter(ctx *gin.Context) (domain.AuditFilter, *response.Err) {
	filter := domain.AuditFilter{
		Entity: ctx.Query("entity"),
		Action: ctx.Query("action"),
	}

	if raw := ctx.Param("eventID"); raw != "" {
		id, respErr := parseEventID(ctx)
		if respErr != nil {
			return filter, respErr
		}
		filter.EventID = &id
	} else if raw := ctx.Query("event_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid event_id %q", raw))
		}
		eventID := uint(id)
		filter.EventID = &eventID
	}

	if raw := ctx.Query("actor_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid actor_id %q", raw))
		}
		actorID := uint(id)
		filter.ActorID = &actorID
	}

	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := ctx.Query(key)
		if raw == "" {
			continue
		}
		t, err := parseInstant(raw)
		if err != nil {
			return filter, response.ErrBadRequest(fmt.Errorf("invalid %s %q", key, raw))
		}
		*dst = &t
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

// parseInstant accepts RFC 3339 timestamps and plain days.
func parseInstant(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse(domain.DayLayout, raw)
}

// HandleListAudit godoc
// @Summary      List audit entries
// @Tags         audit
// @Produce      json
// @Param        event_id   query  int     false  "event"
// @Param        entity     query  string  false  "entity name, e.g. participant"
// @Param        actor_id   query  int     false  "actor"
// @Param        action     query  string  false  "action, e.g. check_in"
// @Param        from       query  string  false  "RFC 3339 or YYYY-MM-DD"
// @Param        to         query  string  false  "RFC 3339 or YYYY-MM-DD"
// @Param        page       query  int     false  "page"
// @Param        page_size  query  int     false  "page size"
// @Success      200  {object}  domain.Page[domain.AuditEntry]
// @Failure      400  {object}  response.Err
// @Router       /audit [get]
// @Security     BearerAuth
func (h *AuditHandler) HandleListAudit(ctx *gin.Context) {
	filter, respErr := auditFilter(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	page, err := h.svc.List(ctx.Request.Context(), filter)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListAudit -> h.svc.List", err)
		return
	}

	ctx.JSON(http.StatusOK, page)
}
