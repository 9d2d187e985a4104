package v1

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/credenciamento/event-api/internal/api/handler/v1/response"
	"github.com/credenciamento/event-api/internal/api/middleware"
	"github.com/credenciamento/event-api/internal/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// defaultMaxUploadBytes applies when no upload limit is configured.
const defaultMaxUploadBytes = 10 << 20

var (
	errMissingFile    = errors.New("multipart field file is required")
	errUploadTooLarge = errors.New("uploaded spreadsheet is too large")
)

type ImportService interface {
	Import(ctx context.Context, actor domain.Actor, eventID uint, r io.Reader, filename string, opts domain.ImportOptions) (domain.ImportReport, error)
}

type ExportService interface {
	WriteTemplate(w io.Writer) error
	ExportParticipants(ctx context.Context, w io.Writer, eventID uint) error
	ExportAttendance(ctx context.Context, w io.Writer, eventID uint, day string) error
	ExportRadioLoans(ctx context.Context, w io.Writer, eventID uint) error
}

type SpreadsheetHandler struct {
	imports        ImportService
	exports        ExportService
	attendance     AttendanceService
	maxUploadBytes int64
}

func NewSpreadsheetHandler(imports ImportService, exports ExportService, attendance AttendanceService, maxUploadBytes int64) *SpreadsheetHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &SpreadsheetHandler{
		imports:        imports,
		exports:        exports,
		attendance:     attendance,
		maxUploadBytes: maxUploadBytes,
	}
}

func formBool(ctx *gin.Context, key string) (bool, error) {
	raw := ctx.PostForm(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

// HandleImportParticipants godoc
// @Summary      Import participants from a spreadsheet
// @Description  Reads the sheet named modelo, or the first one. In preview mode nothing is written.
// @Tags         spreadsheets
// @Accept       multipart/form-data
// @Produce      json
// @Param        eventID                     path      int     true   "Event ID"
// @Param        file                        formData  file    true   ".xlsx workbook"
// @Param        mode                        formData  string  false  "preview (default) or commit"
// @Param        update_existing             formData  bool    false  "update participants matched by id or CPF"
// @Param        create_missing_credentials  formData  bool    false  "create unknown tipo_credencial values"
// @Success      200  {object}  domain.ImportReport
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      413  {object}  response.Err
// @Router       /events/{eventID}/participants/import [post]
// @Security     BearerAuth
func (h *SpreadsheetHandler) HandleImportParticipants(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if ctx.Request.ContentLength > h.maxUploadBytes {
		response.RenderErr(ctx, response.ErrPayloadTooLarge(errUploadTooLarge))
		return
	}
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, h.maxUploadBytes)

	fh, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RenderErr(ctx, response.ErrPayloadTooLarge(errUploadTooLarge))
			return
		}
		response.RenderErr(ctx, response.ErrBadRequest(errMissingFile))
		return
	}

	opts := domain.ImportOptions{Mode: domain.ImportMode(ctx.PostForm("mode"))}
	if opts.UpdateExisting, err = formBool(ctx, "update_existing"); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if opts.CreateMissingCredentials, err = formBool(ctx, "create_missing_credentials"); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("fh.Open -> %w", err)))
		return
	}
	defer f.Close()

	report, err := h.imports.Import(ctx.Request.Context(), middleware.ActorFrom(ctx), eventID, f, fh.Filename, opts)
	if err != nil {
		renderServiceErr(ctx, "v1.HandleImportParticipants -> h.imports.Import", err)
		return
	}

	ctx.JSON(http.StatusOK, report)
}

// HandleDownloadTemplate godoc
// @Summary      Download the empty import workbook
// @Tags         spreadsheets
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  file
// @Router       /spreadsheets/template [get]
// @Security     BearerAuth
func (h *SpreadsheetHandler) HandleDownloadTemplate(ctx *gin.Context) {
	h.sendWorkbook(ctx, "modelo.xlsx", "v1.HandleDownloadTemplate -> h.exports.WriteTemplate", func(w io.Writer) error {
		return h.exports.WriteTemplate(w)
	})
}

// HandleExportParticipants godoc
// @Summary      Export the participants of an event
// @Tags         spreadsheets
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        eventID  path  int  true  "Event ID"
// @Success      200  {file}  file
// @Failure      404  {object}  response.Err
// @Router       /events/{eventID}/participants/export [get]
// @Security     BearerAuth
func (h *SpreadsheetHandler) HandleExportParticipants(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	name := fmt.Sprintf("participantes-%d.xlsx", eventID)
	h.sendWorkbook(ctx, name, "v1.HandleExportParticipants -> h.exports.ExportParticipants", func(w io.Writer) error {
		return h.exports.ExportParticipants(ctx.Request.Context(), w, eventID)
	})
}

// HandleExportAttendance godoc
// @Summary      Export the presence report of a day
// @Tags         spreadsheets
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        eventID  path   int     true   "Event ID"
// @Param        day      query  string  false  "YYYY-MM-DD, default today"
// @Success      200  {file}  file
// @Failure      400  {object}  response.Err
// @Router       /events/{eventID}/attendance/export [get]
// @Security     BearerAuth
func (h *SpreadsheetHandler) HandleExportAttendance(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	day := ctx.DefaultQuery("day", h.attendance.Day(time.Now()))
	name := fmt.Sprintf("presenca-%d-%s.xlsx", eventID, day)
	h.sendWorkbook(ctx, name, "v1.HandleExportAttendance -> h.exports.ExportAttendance", func(w io.Writer) error {
		return h.exports.ExportAttendance(ctx.Request.Context(), w, eventID, day)
	})
}

// HandleExportRadioLoans godoc
// @Summary      Export the radio loans of an event
// @Tags         spreadsheets
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        eventID  path  int  true  "Event ID"
// @Success      200  {file}  file
// @Router       /events/{eventID}/radio-loans/export [get]
// @Security     BearerAuth
func (h *SpreadsheetHandler) HandleExportRadioLoans(ctx *gin.Context) {
	eventID, respErr := parseEventID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	name := fmt.Sprintf("radios-%d.xlsx", eventID)
	h.sendWorkbook(ctx, name, "v1.HandleExportRadioLoans -> h.exports.ExportRadioLoans", func(w io.Writer) error {
		return h.exports.ExportRadioLoans(ctx.Request.Context(), w, eventID)
	})
}

// sendWorkbook renders the workbook in memory. Nothing reaches the client
// when render fails.
func (h *SpreadsheetHandler) sendWorkbook(ctx *gin.Context, filename, where string, render func(w io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		renderServiceErr(ctx, where, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
