package response

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the body of every non 2xx response.
type Err struct {
	HTTPStatusCode int    `json:"-"`
	Err            error  `json:"-"`
	StatusText     string `json:"status_text"`
	ErrorMsg       string `json:"error_msg,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
}

func (e *Err) Error() string {
	if e.Err == nil {
		return e.StatusText
	}
	return e.Err.Error()
}

// RenderErr aborts the request with e. Server errors are logged with the
// wrapped cause and never exposed to the client.
func RenderErr(ctx *gin.Context, e *Err) {
	e.RequestID = requestid.Get(ctx)

	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error(e.StatusText,
			zap.Error(e.Err),
			zap.String("request_id", e.RequestID),
			zap.String("path", ctx.FullPath()),
		)
	}
	if e.Err != nil {
		_ = ctx.Error(e.Err)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func newErr(status int, err error, msg string) *Err {
	return &Err{
		HTTPStatusCode: status,
		Err:            err,
		StatusText:     http.StatusText(status),
		ErrorMsg:       msg,
	}
}

func errMsg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err, errMsg(err))
}

func ErrUnauthorized(err error) *Err {
	return newErr(http.StatusUnauthorized, err, errMsg(err))
}

func ErrWrongCredentials(err error) *Err {
	return newErr(http.StatusUnauthorized, err, "wrong credentials")
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, err, "permission denied")
}

func ErrNotFound(resource, field string, value any) *Err {
	err := fmt.Errorf("%s with %s %v not found", resource, field, value)
	return newErr(http.StatusNotFound, err, err.Error())
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err, errMsg(err))
}

// ErrUnprocessable reports a request that is well formed but breaks a
// business rule.
func ErrUnprocessable(err error) *Err {
	return newErr(http.StatusUnprocessableEntity, err, errMsg(err))
}

func ErrPayloadTooLarge(err error) *Err {
	return newErr(http.StatusRequestEntityTooLarge, err, errMsg(err))
}

func ErrTooManyRequests(err error) *Err {
	return newErr(http.StatusTooManyRequests, err, "too many requests")
}

func ErrInternalServerError(err error) *Err {
	return newErr(http.StatusInternalServerError, err, "")
}
