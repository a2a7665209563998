package models

import (
	"fmt"
	"net/http"
)

// Status codes the services report. Handlers pass them through unchanged.
const (
	BadRequestErrorCode     = http.StatusBadRequest
	NotFoundErrorCode       = http.StatusNotFound
	ConflictErrorCode       = http.StatusConflict
	URITooLongErrorCode     = http.StatusRequestURITooLong
	InternalServerErrorCode = http.StatusInternalServerError
)

var defaultMessages = map[int]string{
	BadRequestErrorCode:     "bad request",
	NotFoundErrorCode:       "not found",
	ConflictErrorCode:       "conflict",
	URITooLongErrorCode:     "url too long",
	InternalServerErrorCode: "internal server error",
}

// AppError is a service error carrying the HTTP status it maps to.
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("code=%d, message=%s", e.Code, e.Message)
}

// NewAppError builds an AppError, falling back to the code's default
// message when message is empty.
func NewAppError(code int, message string) *AppError {
	if message == "" {
		message = defaultMessages[code]
	}
	if message == "" {
		message = http.StatusText(code)
	}
	if message == "" {
		message = "error"
	}

	return &AppError{
		Code:    code,
		Message: message,
	}
}
