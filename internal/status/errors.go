package status

import (
	"errors"
	"fmt"
	"net/http"

	"cyclekeeper/internal/validation"
)

// ErrorCode classifies API failures.
type ErrorCode string

const (
	ErrCodeInvalid  ErrorCode = "INVALID"
	ErrCodeConflict ErrorCode = "CONFLICT"
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeInternal ErrorCode = "INTERNAL"
)

var (
	// ErrCycleActive is returned when a cycle is started while another runs.
	ErrCycleActive = errors.New("a cycle is already running")
	// ErrNoActiveCycle is returned when there is nothing to interrupt.
	ErrNoActiveCycle = errors.New("no cycle is running")
)

// APIError is a failure reported by a running instance.
type APIError struct {
	StatusCode int
	Code       ErrorCode
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// IsCode reports whether err is an *APIError with code.
func IsCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

func mapError(err error) (int, ErrorCode) {
	switch {
	case validation.IsValidationError(err):
		return http.StatusBadRequest, ErrCodeInvalid
	case errors.Is(err, ErrCycleActive):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, ErrNoActiveCycle):
		return http.StatusNotFound, ErrCodeNotFound
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}
