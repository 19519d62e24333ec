package webserver

import (
	"fmt"
	"net/http"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Response is the success envelope
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Status    string      `json:"status"`
	Message   string      `json:"message"`
	Error     interface{} `json:"error,omitempty"`
	ErrorCode string      `json:"error_code,omitempty"`
}

// WriteError sends the failure envelope
func WriteError(c echo.Context, status int, code, message string, detail interface{}) error {
	if s, ok := detail.(string); ok && s == "" {
		detail = nil
	}
	return c.JSON(status, ErrorResponse{
		Status:    "error",
		Message:   message,
		Error:     detail,
		ErrorCode: code,
	})
}

func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if e, ok := apperr.From(err); ok {
		if e.Kind == apperr.KindUpstream {
			zap.L().Error("request failed",
				zap.String("namespace", "web"),
				zap.String("path", c.Path()),
				zap.String("code", e.Code),
				zap.Error(e.Cause))
		}
		_ = WriteError(c, e.Kind.HTTPStatus(), e.Code, e.Message, e.Detail())
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := ""
		switch he.Code {
		case http.StatusNotFound:
			code = "NOT_FOUND"
		case http.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case http.StatusRequestEntityTooLarge:
			code = "PAYLOAD_TOO_LARGE"
		case http.StatusBadRequest:
			code = apperr.CodeInvalidRequest
		}
		var detail interface{}
		if he.Internal != nil {
			detail = he.Internal.Error()
		}
		_ = WriteError(c, he.Code, code, fmt.Sprint(he.Message), detail)
		return
	}

	zap.L().Error("unhandled error", zap.String("namespace", "web"), zap.String("path", c.Path()), zap.Error(err))
	_ = WriteError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}
