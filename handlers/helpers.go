package handlers

import (
	"strconv"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/middleware"
	"github.com/gin-gonic/gin"
)

// bindJSONOrError binds JSON request body and sets validation error if binding fails.
// Returns true if binding succeeded, false if error was set (caller should return).
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return false
	}
	return true
}

// paramID parses a positive int64 path parameter.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.ValidationFailed("invalid_"+name, "path parameter "+name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

// currentUserID reads the authenticated user set by AuthMiddleware.
func currentUserID(c *gin.Context) (int64, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("User not authenticated"))
		return 0, false
	}
	return id, true
}

// tripScope resolves the caller and the :id trip parameter.
func tripScope(c *gin.Context) (tripID, userID int64, ok bool) {
	if userID, ok = currentUserID(c); !ok {
		return 0, 0, false
	}
	if tripID, ok = paramID(c, "id"); !ok {
		return 0, 0, false
	}
	return tripID, userID, true
}
