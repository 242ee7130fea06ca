package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("original error")
	wrappedErr := Wrap(originalErr, DatabaseError, "database operation failed")

	assert.Equal(t, DatabaseError, wrappedErr.Type)
	assert.Equal(t, originalErr.Error(), wrappedErr.Detail)
	assert.Equal(t, http.StatusInternalServerError, wrappedErr.HTTPStatus)
	assert.ErrorIs(t, wrappedErr, originalErr)

	assert.Nil(t, Wrap(nil, DatabaseError, "nothing"))
}

func TestNotFound(t *testing.T) {
	err := NotFound("User", "unknownuser")
	assert.Equal(t, NotFoundError, err.Type)
	assert.Equal(t, "User not found", err.Message)
	assert.Equal(t, "ID: unknownuser", err.Detail)
	assert.Equal(t, http.StatusNotFound, err.GetHTTPStatus())
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", LastAdminRequired())

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeLastAdmin, appErr.Code)
	assert.True(t, IsType(wrapped, ForbiddenError))
	assert.False(t, IsType(fmt.Errorf("plain"), ForbiddenError))
}

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		errType ErrorType
		status  int
		message string
	}{
		{"last admin", LastAdminRequired(), ForbiddenError, http.StatusForbidden, "At least one admin is required per trip"},
		{"organizer only", OrganizerOnly("review payments"), ForbiddenError, http.StatusForbidden, "Only the trip organizer can review payments"},
		{"not confirmed", NotConfirmedMember(1, 2), ForbiddenError, http.StatusForbidden, "Confirm your attendance to access trip content"},
		{"no payment methods", NoPaymentMethods("venmo"), NoPaymentMethodsError, http.StatusUnprocessableEntity, "No payment methods available"},
		{"transition", InvalidStatusTransition("confirmed", "pending"), InvalidStatusTransitionError, http.StatusConflict, "Invalid status transition"},
		{"rate limit", RateLimitExceeded("slow down", 30), RateLimitError, http.StatusTooManyRequests, "slow down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.GetHTTPStatus())
			assert.Equal(t, tt.message, tt.err.Message)
		})
	}
}

func TestGetHTTPStatusFallsBackToType(t *testing.T) {
	err := &AppError{Type: ConflictError}
	assert.Equal(t, http.StatusConflict, err.GetHTTPStatus())

	err = &AppError{Type: "SOMETHING_ELSE"}
	assert.Equal(t, http.StatusInternalServerError, err.GetHTTPStatus())
}

func TestAppErrorString(t *testing.T) {
	assert.Equal(t, "FORBIDDEN: nope (because)", Forbidden("nope", "because").Error())
	assert.Equal(t, "SERVER_ERROR: boom", InternalServerError("boom").Error())
}
