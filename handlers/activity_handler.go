package handlers

import (
	"net/http"

	activityservice "github.com/NomadCrew/crewtrip-backend/models/activity/service"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
)

// ActivityHandler handles the itinerary.
type ActivityHandler struct {
	activities activityservice.ActivityServiceInterface
}

func NewActivityHandler(activities activityservice.ActivityServiceInterface) *ActivityHandler {
	return &ActivityHandler{activities: activities}
}

// CreateActivityHandler godoc
// @Summary Add an itinerary activity
// @Description Prepaid activities keep a linked expense, paid by the creator, in sync with going RSVPs.
// @Tags activities
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param request body types.CreateActivityRequest true "Activity"
// @Success 201 {object} types.Activity "Created activity"
// @Failure 400 {object} types.ErrorResponse "Bad request"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/activities [post]
// @Security BearerAuth
func (h *ActivityHandler) CreateActivityHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	var req types.CreateActivityRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	activity, err := h.activities.CreateActivity(c.Request.Context(), tripID, userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, activity)
}

// ListActivitiesHandler godoc
// @Summary List itinerary activities
// @Tags activities
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {array} types.Activity "Activities"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Not a member"
// @Router /trips/{id}/activities [get]
// @Security BearerAuth
func (h *ActivityHandler) ListActivitiesHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	activities, err := h.activities.ListActivities(c.Request.Context(), tripID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if activities == nil {
		activities = []*types.Activity{}
	}
	c.JSON(http.StatusOK, activities)
}

// DeleteActivityHandler godoc
// @Summary Delete an activity
// @Tags activities
// @Param id path int true "Trip ID"
// @Param activityId path int true "Activity ID"
// @Success 204 "Deleted"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Creator or admin only"
// @Failure 404 {object} types.ErrorResponse "Not found"
// @Router /trips/{id}/activities/{activityId} [delete]
// @Security BearerAuth
func (h *ActivityHandler) DeleteActivityHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	activityID, ok := paramID(c, "activityId")
	if !ok {
		return
	}
	if err := h.activities.DeleteActivity(c.Request.Context(), tripID, userID, activityID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetRSVPHandler godoc
// @Summary RSVP to an activity
// @Tags activities
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param activityId path int true "Activity ID"
// @Param request body types.ActivityRSVPRequest true "going or not_going"
// @Success 200 {object} types.Activity "Activity with updated count"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Failure 409 {object} types.ErrorResponse "Conflict - Activity is full"
// @Router /trips/{id}/activities/{activityId}/rsvp [put]
// @Security BearerAuth
func (h *ActivityHandler) SetRSVPHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	activityID, ok := paramID(c, "activityId")
	if !ok {
		return
	}
	var req types.ActivityRSVPRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	activity, err := h.activities.SetRSVP(c.Request.Context(), tripID, userID, activityID, req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, activity)
}
