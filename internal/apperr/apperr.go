// Package apperr defines the error taxonomy shared by services and HTTP handlers.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Kind defines the category of an error.
type Kind string

const (
	KindValidation     Kind = "VALIDATION"
	KindAuthentication Kind = "AUTHENTICATION"
	KindNotFound       Kind = "NOT_FOUND"
	KindConflict       Kind = "CONFLICT"
	KindUpstream       Kind = "UPSTREAM"
)

// Error codes exposed to clients as error_code.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeAuthRequired       = "AUTH_REQUIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeTxNotFound         = "TRANSACTION_NOT_FOUND"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeDatabase           = "DATABASE_ERROR"
	CodeIdentityProvider   = "IDENTITY_PROVIDER_ERROR"
	CodeOCRService         = "OCR_SERVICE_ERROR"
)

// HTTPStatus maps a kind to the response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the application error carried from services to handlers.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// Detail returns the cause text relayed in the error field of a response.
func (e *Error) Detail() string {
	if e.Cause == nil {
		return ""
	}
	return errors.Cause(e.Cause).Error()
}

func newError(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

func Validation(code, message string) *Error {
	return newError(KindValidation, code, message, nil)
}

func Authentication(code, message string) *Error {
	return newError(KindAuthentication, code, message, nil)
}

func NotFound(code, message string) *Error {
	return newError(KindNotFound, code, message, nil)
}

func Conflict(code, message string) *Error {
	return newError(KindConflict, code, message, nil)
}

// Upstream wraps a failure of a collaborator (database, identity provider, OCR).
func Upstream(code, message string, cause error) *Error {
	return newError(KindUpstream, code, message, errors.WithStack(cause))
}

// From extracts an *Error from err. ok is false when err carries none.
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries the given error code.
func Is(err error, code string) bool {
	e, ok := From(err)
	return ok && e.Code == code
}
