package handlers

import (
	"net/http"

	"github.com/NomadCrew/crewtrip-backend/logger"
	userservice "github.com/NomadCrew/crewtrip-backend/models/user/service"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	users userservice.UserServiceInterface
}

func NewUserHandler(users userservice.UserServiceInterface) *UserHandler {
	return &UserHandler{users: users}
}

// GetMeHandler godoc
// @Summary Get my profile
// @Tags users
// @Produce json
// @Success 200 {object} types.User "Profile"
// @Failure 401 {object} types.ErrorResponse "Unauthorized - User not logged in"
// @Router /users/me [get]
// @Security BearerAuth
func (h *UserHandler) GetMeHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMeHandler godoc
// @Summary Update my profile
// @Description Venmo handles are stored without a leading @.
// @Tags users
// @Accept json
// @Produce json
// @Param request body types.UserProfileUpdate true "Fields to update"
// @Success 200 {object} types.User "Updated profile"
// @Failure 400 {object} types.ErrorResponse "Bad request - Invalid handle or email"
// @Failure 401 {object} types.ErrorResponse "Unauthorized - User not logged in"
// @Router /users/me [put]
// @Security BearerAuth
func (h *UserHandler) UpdateMeHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var update types.UserProfileUpdate
	if !bindJSONOrError(c, &update) {
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), userID, update)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteMeHandler godoc
// @Summary Close my account
// @Description The account is marked removed; expense and settlement history is kept for the group.
// @Tags users
// @Success 204 "Closed"
// @Failure 401 {object} types.ErrorResponse "Unauthorized - User not logged in"
// @Router /users/me [delete]
// @Security BearerAuth
func (h *UserHandler) DeleteMeHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.users.CloseAccount(c.Request.Context(), userID); err != nil {
		_ = c.Error(err)
		return
	}
	logger.GetLogger().Infow("Account closed", "userID", userID)
	c.Status(http.StatusNoContent)
}
