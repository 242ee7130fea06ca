package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/NomadCrew/crewtrip-backend/logger"
)

type ErrorType string

const (
	ValidationError              ErrorType = "VALIDATION_ERROR"
	NotFoundError                ErrorType = "NOT_FOUND"
	AuthError                    ErrorType = "AUTHENTICATION_ERROR"
	DatabaseError                ErrorType = "DATABASE_ERROR"
	ServerError                  ErrorType = "SERVER_ERROR"
	ForbiddenError               ErrorType = "FORBIDDEN"
	ConflictError                ErrorType = "CONFLICT"
	InvalidStatusTransitionError ErrorType = "INVALID_STATUS_TRANSITION"
	ExternalServiceError         ErrorType = "EXTERNAL_SERVICE_ERROR"
	RateLimitError               ErrorType = "RATE_LIMIT_EXCEEDED"
	NoPaymentMethodsError        ErrorType = "NO_PAYMENT_METHODS"
)

// Machine-readable codes for authorization failures the client renders verbatim.
const (
	CodeLastAdmin          = "last_admin_required"
	CodeOrganizerOnly      = "organizer_only"
	CodeAdminOnly          = "admin_only"
	CodeNotConfirmedMember = "not_confirmed_member"
	CodeNotTripMember      = "not_trip_member"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the status the error renders with.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// As reports whether err is or wraps an *AppError.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err is an *AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == errType
}

func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func AuthenticationFailed(message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewDatabaseError(err error) *AppError {
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func Forbidden(message string, details string) *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusForbidden,
	}
}

func NewConflictError(message string, detail string) *AppError {
	return &AppError{
		Type:       ConflictError,
		Message:    message,
		Detail:     detail,
		HTTPStatus: http.StatusConflict,
	}
}

func InvalidStatusTransition(current, next string) *AppError {
	return &AppError{
		Type:       InvalidStatusTransitionError,
		Message:    "Invalid status transition",
		Detail:     fmt.Sprintf("Cannot transition from %s to %s", current, next),
		HTTPStatus: http.StatusConflict,
	}
}

func RateLimitExceeded(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       RateLimitError,
		Message:    message,
		Detail:     fmt.Sprintf("retry after %d seconds", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// ExternalFailure reports a third-party dependency that could not serve a request.
func ExternalFailure(service string, err error) *AppError {
	return &AppError{
		Type:       ExternalServiceError,
		Message:    fmt.Sprintf("%s is unavailable", service),
		HTTPStatus: http.StatusBadGateway,
		Raw:        err,
	}
}

func Unauthorized(code, message string) *AppError {
	return &AppError{
		Type:       AuthError,
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func LastAdminRequired() *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Code:       CodeLastAdmin,
		Message:    "At least one admin is required per trip",
		HTTPStatus: http.StatusForbidden,
	}
}

func OrganizerOnly(action string) *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Code:       CodeOrganizerOnly,
		Message:    fmt.Sprintf("Only the trip organizer can %s", action),
		HTTPStatus: http.StatusForbidden,
	}
}

func AdminOnly(action string) *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Code:       CodeAdminOnly,
		Message:    fmt.Sprintf("Only trip admins can %s", action),
		HTTPStatus: http.StatusForbidden,
	}
}

func NotTripMember(tripID, userID int64) *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Code:       CodeNotTripMember,
		Message:    "You are not a member of this trip",
		Detail:     fmt.Sprintf("user %d, trip %d", userID, tripID),
		HTTPStatus: http.StatusForbidden,
	}
}

func NotConfirmedMember(tripID, userID int64) *AppError {
	return &AppError{
		Type:       ForbiddenError,
		Code:       CodeNotConfirmedMember,
		Message:    "Confirm your attendance to access trip content",
		Detail:     fmt.Sprintf("user %d, trip %d", userID, tripID),
		HTTPStatus: http.StatusForbidden,
	}
}

// NoPaymentMethods is returned when a provider link cannot be built for the payee.
func NoPaymentMethods(method string) *AppError {
	return &AppError{
		Type:       NoPaymentMethodsError,
		Message:    "No payment methods available",
		Detail:     fmt.Sprintf("payee has no %s handle; use cash and mark as paid", method),
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case ConflictError, InvalidStatusTransitionError:
		return http.StatusConflict
	case RateLimitError:
		return http.StatusTooManyRequests
	case ExternalServiceError:
		return http.StatusBadGateway
	case NoPaymentMethodsError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
