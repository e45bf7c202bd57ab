package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	err := AlreadyExists("user", "username", "alice")
	assert.Contains(t, err.Error(), "ALREADY_EXISTS")
	assert.Contains(t, err.Error(), `user with username "alice" already exists`)
}

func TestAppError_Unwrap(t *testing.T) {
	err := NotFound("user", "u-1")
	assert.ErrorIs(t, err, ErrNotFound)

	wrapped := fmt.Errorf("lookup: %w", err)
	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestHTTPStatus_AppError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("role", "Admin"), http.StatusNotFound},
		{"conflict", AlreadyExists("user", "email", "a@x.com"), http.StatusConflict},
		{"invalid input", InvalidInput("password too short"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("invalid login attempt"), http.StatusUnauthorized},
		{"forbidden", Forbidden("insufficient permissions"), http.StatusForbidden},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
		{"upstream", Upstream("smtp", errors.New("dial tcp")), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_Sentinels(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrAlreadyExists))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrInvalidInput))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrUnauthorized))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrUpstream))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}

func TestHTTPStatus_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("find user: %w", ErrUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}
