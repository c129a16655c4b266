// Package errors defines the sentinel errors shared across the platform and
// an AppError wrapper that carries an HTTP status code across layer
// boundaries.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidQuery = errors.New("invalid search query")
	ErrQueryTooLong = errors.New("query string too long")
	ErrIndexFailure = errors.New("index operation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("dependency unavailable")
	ErrInternal     = errors.New("internal error")
	ErrTimeout      = errors.New("operation timed out")
)

// AppError wraps a sentinel with a human-readable message and an explicit
// HTTP status code.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the status code the API layer should
// return: parse-class errors become 400s, infrastructure errors 5xx.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, ErrQueryTooLong):
		return http.StatusRequestURITooLong
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
