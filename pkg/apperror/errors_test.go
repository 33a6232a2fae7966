package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("task 3: %w", ErrNotFound), http.StatusNotFound},
		{"missing api key", ErrMissingAPIKey, http.StatusBadRequest},
		{"invalid api key", ErrInvalidAPIKey, http.StatusUnauthorized},
		{"missing field", &MissingFieldError{Fields: []string{"email"}}, http.StatusBadRequest},
		{"invalid email", ErrInvalidEmail, http.StatusBadRequest},
		{"already exists", ErrAlreadyExists, http.StatusConflict},
		{"conflict", ErrConflict, http.StatusConflict},
		{"bad credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"rate limited", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"persistence", Persistence("Failed to create task. Please try again", errors.New("conn reset")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatus(tc.err))
		})
	}
}

func TestPersistenceHidesCause(t *testing.T) {
	err := Persistence("Failed to create task. Please try again", errors.New("pq: relation does not exist"))

	assert.Equal(t, "Failed to create task. Please try again", err.Error())
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestMissingFieldErrorMessage(t *testing.T) {
	err := &MissingFieldError{Fields: []string{"name", "email"}}

	assert.Equal(t, "Required field(s) name, email is missing or empty", err.Error())
	assert.ErrorIs(t, err, ErrMissingField)
}
