package handlers

import (
	"net/http"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	flightservice "github.com/NomadCrew/crewtrip-backend/models/flight/service"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	flights flightservice.FlightServiceInterface
}

func NewFlightHandler(flights flightservice.FlightServiceInterface) *FlightHandler {
	return &FlightHandler{flights: flights}
}

// UpsertMyFlightHandler godoc
// @Summary Save my flight
// @Description One arrival and one departure flight per member.
// @Tags flights
// @Accept json
// @Produce json
// @Param id path int true "Trip ID"
// @Param request body types.FlightInfoRequest true "Flight"
// @Success 200 {object} types.FlightInfo "Saved flight"
// @Failure 400 {object} types.ErrorResponse "Bad request"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/flights/me [put]
// @Security BearerAuth
func (h *FlightHandler) UpsertMyFlightHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	var req types.FlightInfoRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	flight, err := h.flights.UpsertMyFlight(c.Request.Context(), tripID, userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

// ListFlightsHandler godoc
// @Summary List the group's flights
// @Tags flights
// @Produce json
// @Param id path int true "Trip ID"
// @Success 200 {array} types.FlightInfo "Flights"
// @Failure 403 {object} types.ErrorResponse "Forbidden - Confirmed members only"
// @Router /trips/{id}/flights [get]
// @Security BearerAuth
func (h *FlightHandler) ListFlightsHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	flights, err := h.flights.ListFlights(c.Request.Context(), tripID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if flights == nil {
		flights = []*types.FlightInfo{}
	}
	c.JSON(http.StatusOK, flights)
}

// DeleteMyFlightHandler godoc
// @Summary Remove my flight
// @Tags flights
// @Param id path int true "Trip ID"
// @Param direction query string true "arrival or departure"
// @Success 204 "Deleted"
// @Failure 400 {object} types.ErrorResponse "Bad request - Invalid direction"
// @Router /trips/{id}/flights/me [delete]
// @Security BearerAuth
func (h *FlightHandler) DeleteMyFlightHandler(c *gin.Context) {
	tripID, userID, ok := tripScope(c)
	if !ok {
		return
	}
	direction := types.FlightDirection(c.Query("direction"))
	if direction == "" {
		_ = c.Error(apperrors.ValidationFailed("invalid_direction", "direction query parameter is required"))
		return
	}
	if err := h.flights.DeleteMyFlight(c.Request.Context(), tripID, userID, direction); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
