package v1

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/credenciamento/event-api/internal/api/handler/v1/response"
	"github.com/credenciamento/event-api/internal/service"
)

// HandleHealthcheck godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200
// @Router       / [get]
func HandleHealthcheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseID(ctx *gin.Context, param string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s %q", param, ctx.Param(param)))
	}

	return uint(id), nil
}

func parseEventID(ctx *gin.Context) (uint, *response.Err) {
	return parseID(ctx, "eventID")
}

var (
	notFoundErrs = map[error]string{
		service.ErrEventNotFound:       "event",
		service.ErrParticipantNotFound: "participant",
		service.ErrCredentialNotFound:  "credential",
		service.ErrMovementNotFound:    "movement credential",
		service.ErrOperatorNotFound:    "operator",
		service.ErrAttendanceNotFound:  "attendance record",
		service.ErrRadioLoanNotFound:   "radio loan",
		service.ErrUserNotFound:        "user",
	}

	badRequestErrs = []error{
		service.ErrInvalidCPF,
		service.ErrInvalidColor,
		service.ErrInvalidEventDates,
		service.ErrInvalidEventDay,
		service.ErrInvalidEventStatus,
		service.ErrInvalidDay,
		service.ErrInvalidUserRole,
		service.ErrEmptyCredentialCode,
		service.ErrNoRadios,
		service.ErrDuplicateRadio,
		service.ErrInvalidImportMode,
		service.ErrUnsupportedSpreadsheet,
		service.ErrMissingColumn,
		service.ErrEmptySpreadsheet,
		service.ErrTooManyRows,
	}

	conflictErrs = []error{
		service.ErrUserEmailExists,
		service.ErrParticipantCPFExists,
		service.ErrCredentialNameExists,
		service.ErrCredentialInUse,
		service.ErrOperatorCPFExists,
		service.ErrCredentialCodeInUse,
		service.ErrAlreadyCheckedIn,
		service.ErrRadioUnavailable,
	}

	unprocessableErrs = []error{
		service.ErrCredentialNotInEvent,
		service.ErrInvalidWorkDays,
		service.ErrNotCheckedIn,
		service.ErrCheckOutBeforeCheckIn,
		service.ErrNotAWorkDay,
		service.ErrRadioNotOnLoan,
		service.ErrLoanClosed,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// renderServiceErr maps a service error to its HTTP response. where names
// the failing call for the server log.
func renderServiceErr(ctx *gin.Context, where string, err error) {
	for sentinel, resource := range notFoundErrs {
		if errors.Is(err, sentinel) {
			response.RenderErr(ctx, &response.Err{
				HTTPStatusCode: http.StatusNotFound,
				Err:            err,
				StatusText:     http.StatusText(http.StatusNotFound),
				ErrorMsg:       resource + " not found",
			})
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrPermissionDenied), errors.Is(err, service.ErrOperatorNotAllowed):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case isAny(err, badRequestErrs):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case isAny(err, conflictErrs):
		response.RenderErr(ctx, response.ErrConflict(err))
	case isAny(err, unprocessableErrs):
		response.RenderErr(ctx, response.ErrUnprocessable(err))
	default:
		response.RenderErr(ctx, response.ErrInternalServerError(fmt.Errorf("%s -> %w", where, err)))
	}
}

func bindJSON(ctx *gin.Context, req interface{ Validate() error }) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return false
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return false
	}

	return true
}
