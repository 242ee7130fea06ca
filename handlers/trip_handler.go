package handlers

import (
	"net/http"
	"strconv"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/logger"
	tripservice "github.com/NomadCrew/crewtrip-backend/models/trip/service"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
)

// TripHandler handles HTTP requests related to trips.
type TripHandler struct {
	trips  tripservice.TripServiceInterface
	budget tripservice.BudgetServiceInterface
}

// NewTripHandler creates a new TripHandler with the given dependencies.
func NewTripHandler(trips tripservice.TripServiceInterface, budget tripservice.BudgetServiceInterface) *TripHandler {
	return &TripHandler{trips: trips, budget: budget}
}

// CreateTripHandler godoc
// @Summary Create a new trip
// @Description Creates a trip with the caller as organizer and first confirmed member
// @Tags trips
// @Accept json
// @Produce json
// @Param request body types.CreateTripRequest true "Trip creation details"
// @Success 201 {object} types.Trip "Created trip"
// @Failure 400 {object} types.ErrorResponse "Bad request - Invalid input data"
// @Failure 401 {object} types.ErrorResponse "Unauthorized - User not logged in"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /trips [post]
// @Security BearerAuth
func (h *TripHandler) CreateTripHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req types.CreateTripRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	trip, err := h.trips.CreateTrip(c.Request.Context(), userID, &req)
	if err != nil {
		logger.GetLogger().Warnw("Failed to create trip", "userID", userID, "error", err)
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

// ListTripsHandler godoc
// @Summary List my trips
// @Description Lists every trip where the caller is an active member, including pending invitations
// @Tags trips
// @Produce json
// @Success 200 {array} types.TripWithMembership "Trips"
// @Failure 401 {object} types.ErrorResponse "Unauthorized - User not logged in"
// @Failure 500 {object} types.ErrorResponse "Internal server error"
// @Router /trips [get]
// @Security BearerAuth
func (h *TripHandler) ListTripsHandler(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	trips, err := h.trips.ListTrips(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if trips == nil {
		trips = []*types.TripWithMembership{}
	}
	c.JSON(http.StatusOK, trips)
}

// GetTripHandler godoc
// @Summary Get trip details
// @Tags trips
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {object} types.TripWithMembership "Trip details"
// @Failure 400 {object} types.ErrorResponse "Bad request - Invalid trip ID"
// @Failure 401 {object} types.ErrorResponse "Unauthorized - User not logged in"
// @Failure 403 {object} types.ErrorResponse "Forbidden - User not a member of this trip"
// @Failure 404 {object} types.ErrorResponse "Not found - Trip not found"
// @Router /trips/{id} [get]
// @Security BearerAuth
func (h *TripHandler) GetTripHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	trip, err := h.trips.GetTrip(c.Request.Context(), tripID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// UpdateTripHandler godoc
// @Summary Update trip details
// @Description Updates specified fields of an existing trip. All fields in the request body are optional.
// @Tags trips
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param request body types.TripUpdate true "Fields to update"
// @Success 200 {object} types.Trip "Updated trip"
// @Failure 400 {object} types.ErrorResponse "Bad request - Invalid trip ID or update data"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Admins only"
// @Failure 404 {object} types.ErrorResponse "Not found - Trip not found"
// @Router /trips/{id} [put]
// @Security BearerAuth
func (h *TripHandler) UpdateTripHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	var update types.TripUpdate
	if !bindJSONOrError(c, &update) {
		return
	}
	trip, err := h.trips.UpdateTrip(c.Request.Context(), tripID, userID, &update)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// ArchiveTripHandler godoc
// @Summary Archive a trip
// @Description Organizer only. Archived trips become read-only.
// @Tags trips
// @Param id path int true "Trip ID"
// @Success 204 "Archived"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Organizer only"
// @Failure 404 {object} types.ErrorResponse "Not found - Trip not found"
// @Router /trips/{id} [delete]
// @Security BearerAuth
func (h *TripHandler) ArchiveTripHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	if err := h.trips.ArchiveTrip(c.Request.Context(), tripID, userID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BudgetEstimateHandler godoc
// @Summary Estimate the per-person budget
// @Description Uses the destination's cost-of-living multiplier, falling back to actual spend when the country is unknown
// @Tags trips
// @Produce json
// @Param id path int true "Trip ID"
// @Param days query int false "Override the trip length in days"
// @Success 200 {object} types.BudgetEstimate "Estimate"
// @Failure 400 {object} types.ErrorResponse "Bad request - Invalid days"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Not a member"
// @Router /trips/{id}/budget-estimate [get]
// @Security BearerAuth
func (h *TripHandler) BudgetEstimateHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			_ = c.Error(apperrors.ValidationFailed("invalid_days", "days must be between 1 and 365"))
			return
		}
		days = n
	}
	estimate, err := h.budget.Estimate(c.Request.Context(), tripID, userID, days)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}
