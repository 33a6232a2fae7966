package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound           = errors.New("The requested resource doesn't exists")
	ErrMissingAPIKey      = errors.New("Api key is missing")
	ErrInvalidAPIKey      = errors.New("Access Denied. Invalid Api key")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidEmail       = errors.New("Email address is not valid")
	ErrAlreadyExists      = errors.New("Sorry, this email already existed")
	ErrConflict           = errors.New("resource already exists")
	ErrInvalidCredentials = errors.New("Login failed. Incorrect credentials")
	ErrPersistence        = errors.New("An error occurred. Please try again")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrMissingField       = errors.New("required field missing")
)

// AppError carries an HTTP status and a client-safe message. Err is kept for
// errors.Is and for server-side logging only.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Persistence wraps a store failure behind an operation-specific message.
func Persistence(message string, err error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Err:     fmt.Errorf("%w: %v", ErrPersistence, err),
	}
}

// MissingFieldError lists every required field that was absent or blank.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("Required field(s) %s is missing or empty", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// MapErrorToStatus maps common errors to HTTP status codes
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidAPIKey), errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrMissingAPIKey), errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrMissingField), errors.Is(err, ErrInvalidEmail):
		return http.StatusBadRequest
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimitExceeded):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
