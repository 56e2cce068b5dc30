package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", ErrAccountNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"wrapped conflict", fmt.Errorf("register: %w", ErrEmailTaken), http.StatusConflict, "EMAIL_ALREADY_EXISTS"},
		{"unverified", ErrAccountNotVerified, http.StatusForbidden, "ACCOUNT_NOT_VERIFIED"},
		{"foreign image", ErrNotImageOwner, http.StatusUnauthorized, "NOT_IMAGE_OWNER"},
		{"expired token", ErrTokenExpired, http.StatusBadRequest, "TOKEN_EXPIRED"},
		{"long password", fmt.Errorf("register: %w", ErrPasswordTooLong), http.StatusBadRequest, "PASSWORD_TOO_LONG"},
		{"storage", fmt.Errorf("put: %w", ErrStorageUnavailable), http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}
}

func TestMapErrorToHTTP_PassesThroughHTTPError(t *testing.T) {
	in := NewHTTPError(http.StatusTeapot, "short and stout", "TEAPOT")
	got := MapErrorToHTTP(fmt.Errorf("wrapped: %w", in))

	assert.Same(t, in, got)
	assert.Equal(t, ErrorResponse{Error: "short and stout", Code: "TEAPOT"}, got.ToErrorResponse())
}

func TestMapErrorToHTTP_HidesInternalMessage(t *testing.T) {
	got := MapErrorToHTTP(errors.New("dial tcp 10.0.0.1:3306: connection refused"))
	assert.Equal(t, "internal server error", got.Message)
}
