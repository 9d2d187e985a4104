package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/credenciamento/event-api/internal/api/handler/v1/request"
	"github.com/credenciamento/event-api/internal/api/handler/v1/response"
	"github.com/credenciamento/event-api/internal/api/middleware"
	"github.com/credenciamento/event-api/internal/domain"
	"github.com/credenciamento/event-api/internal/service"
)

type RadioService interface {
	CreateLoan(ctx context.Context, actor domain.Actor, loan domain.RadioLoan) (domain.RadioLoan, error)
	GetLoan(ctx context.Context, eventID, id uint) (domain.RadioLoan, error)
	ListLoans(ctx context.Context, eventID uint, filter domain.RadioLoanFilter) ([]domain.RadioLoan, error)
	ExchangeRadio(ctx context.Context, actor domain.Actor, eventID, loanID uint, oldCode, newCode, reason string) (domain.RadioLoan, error)
	ReturnRadios(ctx context.Context, actor domain.Actor, eventID, loanID uint, codes []string, at *time.Time) (domain.RadioLoan, error)
	OutstandingCount(ctx context.Context, eventID uint) (int64, error)
}

type RadioHandler struct {
	svc RadioService
}

func NewRadioHandler(svc RadioService) *RadioHandler {
	return &RadioHandler{
		svc: svc,
	}
}

func loanPath(ctx *gin.Context) (eventID, loanID uint, respErr *response.Err) {
	if eventID, respErr = parseEventID(ctx); respErr != nil {
		return 0, 0, respErr
	}
	if loanID, respErr = parseID(ctx, "loanID"); respErr != nil {
		return 0, 0, respErr
	}
	return eventID, loanID, nil
}

// HandleListLoans godoc
// @Summary      List the radio loans of an event
// @Tags         radios
// @Produce      json
// @Param        eventID  path   int     true   "Event ID"
// @Param        status   query  string  false  "active, partial or returned"
// @Param        q        query  string  false  "borrower, company or radio code"
// @Success      200  {array}   domain.RadioLoan
// @Failure      400  {object}  response.Err
// @Router       /events/{eventID}/radio-loans [get]
// @Security     BearerAuth
func (h *RadioHandler) HandleListLoans(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter := domain.RadioLoanFilter{
		Status: domain.LoanStatus(ctx.Query("status")),
		Search: ctx.Query("q"),
	}
	switch filter.Status {
	case "", domain.LoanActive, domain.LoanPartial, domain.LoanReturned:
	default:
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("status must be active, partial or returned")))
		return
	}

	loans, err := h.svc.ListLoans(ctx.Request.Context(), eventID, filter)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleListLoans -> h.svc.ListLoans", err)
		return
	}

	ctx.JSON(http.StatusOK, loans)
}

// HandleCreateLoan godoc
// @Summary      Lend radios
// @Tags         radios
// @Accept       json
// @Produce      json
// @Param        eventID  path  int                       true  "Event ID"
// @Param        request  body  request.RadioLoanRequest  true  "loan"
// @Success      201  {object}  domain.RadioLoan
// @Failure      400  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /events/{eventID}/radio-loans [post]
// @Security     BearerAuth
func (h *RadioHandler) HandleCreateLoan(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RadioLoanRequest
	if !bindJSON(ctx, &req) {
		return
	}

	loan, err := h.svc.CreateLoan(ctx.Request.Context(), middleware.ActorFrom(ctx), req.ToDomain(eventID))
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCreateLoan -> h.svc.CreateLoan", err)
		return
	}

	ctx.JSON(http.StatusCreated, loan)
}

// HandleGetLoan godoc
// @Summary      Get a radio loan
// @Tags         radios
// @Produce      json
// @Param        eventID  path  int  true  "Event ID"
// @Param        loanID   path  int  true  "Loan ID"
// @Success      200  {object}  domain.RadioLoan
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/radio-loans/{loanID} [get]
// @Security     BearerAuth
func (h *RadioHandler) HandleGetLoan(ctx *gin.Context) {
	eventID, loanID, respErr := loanPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	loan, err := h.svc.GetLoan(ctx.Request.Context(), eventID, loanID)
	if err != nil {
		if errors.Is(err, service.ErrRadioLoanNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("radio loan", "ID", loanID))
			return
		}
		renderServiceErr(ctx, "v1.HandleGetLoan -> h.svc.GetLoan", err)
		return
	}

	ctx.JSON(http.StatusOK, loan)
}

// HandleExchangeRadio godoc
// @Summary      Swap a lent radio for another one
// @Tags         radios
// @Accept       json
// @Produce      json
// @Param        eventID  path  int                           true  "Event ID"
// @Param        loanID   path  int                           true  "Loan ID"
// @Param        request  body  request.RadioExchangeRequest  true  "exchange"
// @Success      200  {object}  domain.RadioLoan
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Router       /events/{eventID}/radio-loans/{loanID}/exchange [post]
// @Security     BearerAuth
func (h *RadioHandler) HandleExchangeRadio(ctx *gin.Context) {
	eventID, loanID, respErr := loanPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RadioExchangeRequest
	if !bindJSON(ctx, &req) {
		return
	}

	loan, err := h.svc.ExchangeRadio(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, loanID, req.OldCode, req.NewCode, req.Reason)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleExchangeRadio -> h.svc.ExchangeRadio", err)
		return
	}

	ctx.JSON(http.StatusOK, loan)
}

// HandleReturnRadios godoc
// @Summary      Return some or all radios of a loan
// @Tags         radios
// @Accept       json
// @Produce      json
// @Param        eventID  path  int                         true  "Event ID"
// @Param        loanID   path  int                         true  "Loan ID"
// @Param        request  body  request.RadioReturnRequest  true  "returned codes"
// @Success      200  {object}  domain.RadioLoan
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Router       /events/{eventID}/radio-loans/{loanID}/return [post]
// @Security     BearerAuth
func (h *RadioHandler) HandleReturnRadios(ctx *gin.Context) {
	eventID, loanID, respErr := loanPath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RadioReturnRequest
	if !bindJSON(ctx, &req) {
		return
	}

	loan, err := h.svc.ReturnRadios(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, loanID, req.Codes, req.At)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleReturnRadios -> h.svc.ReturnRadios", err)
		return
	}

	ctx.JSON(http.StatusOK, loan)
}

// HandleOutstanding godoc
// @Summary      Number of radios still out
// @Tags         radios
// @Produce      json
// @Param        eventID  path  int  true  "Event ID"
// @Success      200  {object}  response.Outstanding
// @Router       /events/{eventID}/radio-loans/outstanding [get]
// @Security     BearerAuth
func (h *RadioHandler) HandleOutstanding(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	count, err := h.svc.OutstandingCount(ctx.Request.Context(), eventID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleOutstanding -> h.svc.OutstandingCount", err)
		return
	}

	ctx.JSON(http.StatusOK, response.Outstanding{EventID: eventID, Outstanding: count})
}
