package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/credenciamento/event-api/internal/api/handler/v1/request"
	"github.com/credenciamento/event-api/internal/api/handler/v1/response"
	"github.com/credenciamento/event-api/internal/api/middleware"
	"github.com/credenciamento/event-api/internal/domain"
)

type AttendanceService interface {
	Day(t time.Time) string
	CheckIn(ctx context.Context, actor domain.Actor, eventID, participantID uint, at *time.Time, notes string) (domain.AttendanceRecord, error)
	CheckOut(ctx context.Context, actor domain.Actor, eventID, participantID uint, at *time.Time) (domain.AttendanceRecord, error)
	Undo(ctx context.Context, actor domain.Actor, eventID, recordID uint) error
	History(ctx context.Context, eventID, participantID uint) ([]domain.AttendanceRecord, []domain.AttendanceDay, error)
	DayReport(ctx context.Context, eventID uint, day string) ([]domain.AttendanceReportRow, error)
}

type AttendanceHandler struct {
	svc AttendanceService
}

func NewAttendanceHandler(svc AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		svc: svc,
	}
}

func attendancePath(ctx *gin.Context) (eventID, participantID uint, respErr *response.Err) {
	if eventID, respErr = parseEventID(ctx); respErr != nil {
		return 0, 0, respErr
	}
	if participantID, respErr = parseID(ctx, "participantID"); respErr != nil {
		return 0, 0, respErr
	}
	return eventID, participantID, nil
}

// bindOptionalJSON accepts an empty body for requests whose fields are all
// optional.
func bindOptionalJSON(ctx *gin.Context, req *request.AttendanceRequest) bool {
	if ctx.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(ctx, req)
}

// HandleCheckIn godoc
// @Summary      Check a participant in
// @Description  Opens the attendance record of the day. A second check-in on the same day is refused.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Param        eventID        path  int                        true   "Event ID"
// @Param        participantID  path  int                        true   "Participant ID"
// @Param        request        body  request.AttendanceRequest  false  "instant and notes"
// @Success      201  {object}  domain.AttendanceRecord
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Router       /events/{eventID}/participants/{participantID}/check-in [post]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleCheckIn(ctx *gin.Context) {
	eventID, participantID, respErr := attendancePath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.AttendanceRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	record, err := h.svc.CheckIn(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, participantID, req.At, req.Notes)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCheckIn -> h.svc.CheckIn", err)
		return
	}

	ctx.JSON(http.StatusCreated, record)
}

// HandleCheckOut godoc
// @Summary      Check a participant out
// @Description  Closes the open record of the day of the check-out instant.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Param        eventID        path  int                        true   "Event ID"
// @Param        participantID  path  int                        true   "Participant ID"
// @Param        request        body  request.AttendanceRequest  false  "instant"
// @Success      200  {object}  domain.AttendanceRecord
// @Failure      404  {object}  response.Err
// @Failure      422  {object}  response.Err
// @Router       /events/{eventID}/participants/{participantID}/check-out [post]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleCheckOut(ctx *gin.Context) {
	eventID, participantID, respErr := attendancePath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.AttendanceRequest
	if !bindOptionalJSON(ctx, &req) {
		return
	}

	record, err := h.svc.CheckOut(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, participantID, req.At)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleCheckOut -> h.svc.CheckOut", err)
		return
	}

	ctx.JSON(http.StatusOK, record)
}

// HandleUndoAttendance godoc
// @Summary      Remove an attendance record
// @Description  The base check-in and check-out of the participant are recomputed from the remaining records.
// @Tags         attendance
// @Param        eventID   path  int  true  "Event ID"
// @Param        recordID  path  int  true  "Attendance record ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/attendance/{recordID} [delete]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleUndoAttendance(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	recordID, respErr := parseID(ctx, "recordID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Undo(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, recordID); err != nil {
		renderServiceErr(ctx, "v1.HandleUndoAttendance -> h.svc.Undo", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleAttendanceHistory godoc
// @Summary      Attendance history of a participant
// @Description  Raw records plus the per-day reconciliation with the base check-in fields.
// @Tags         attendance
// @Produce      json
// @Param        eventID        path  int  true  "Event ID"
// @Param        participantID  path  int  true  "Participant ID"
// @Success      200  {object}  response.AttendanceHistory
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/participants/{participantID}/attendance [get]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleAttendanceHistory(ctx *gin.Context) {
	eventID, participantID, respErr := attendancePath(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	records, days, err := h.svc.History(ctx.Request.Context(), eventID, participantID)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleAttendanceHistory -> h.svc.History", err)
		return
	}

	ctx.JSON(http.StatusOK, response.AttendanceHistory{
		ParticipantID: participantID,
		Records:       records,
		Days:          days,
	})
}

// HandleDayReport godoc
// @Summary      Presence report of one day
// @Tags         attendance
// @Produce      json
// @Param        eventID  path   int     true   "Event ID"
// @Param        day      query  string  false  "YYYY-MM-DD, default today"
// @Success      200  {object}  response.DayReport
// @Failure      400  {object}  response.Err
// @Router       /events/{eventID}/attendance [get]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleDayReport(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	day := ctx.DefaultQuery("day", h.svc.Day(time.Now()))
	rows, err := h.svc.DayReport(ctx.Request.Context(), eventID, day)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleDayReport -> h.svc.DayReport", err)
		return
	}

	ctx.JSON(http.StatusOK, response.DayReport{Day: day, Rows: rows})
}
