package apperror

import (
	"errors"
	"net/http"

	"github.com/flowlens/flowlens/internal/domain"
)

// AppError is the transport-facing error shape: a stable code, a human
// message, and the HTTP status it maps to.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest     = &AppError{Code: "BAD_REQUEST", Message: "Bad request", Status: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Not found", Status: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", Status: http.StatusInternalServerError}
	ErrUnavailable    = &AppError{Code: "UNAVAILABLE", Message: "Service unavailable", Status: http.StatusServiceUnavailable}
)

func NewBadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

func NewInternalServer(message string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError}
}

func NewUnavailable(message string) *AppError {
	return &AppError{Code: "UNAVAILABLE", Message: message, Status: http.StatusServiceUnavailable}
}

// MapError translates domain errors into their transport representation.
// Unknown errors become a generic 500 so internals never leak.
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, domain.ErrInvalidDate), errors.Is(err, domain.ErrInvalidDateRange):
		return NewBadRequest(err.Error())
	case errors.Is(err, domain.ErrProjectNotFound):
		return NewNotFound(err.Error())
	case errors.Is(err, domain.ErrNoTicketSource):
		return NewUnavailable(err.Error())
	default:
		return NewInternalServer("An unexpected error occurred")
	}
}
