package service

import (
	"context"
	"strings"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/events"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/pkg/sanitize"
	"github.com/NomadCrew/crewtrip-backend/types"
)

// FlightServiceInterface lets confirmed members share arrival and departure
// flights for pickup planning.
type FlightServiceInterface interface {
	UpsertMyFlight(ctx context.Context, tripID, userID int64, req *types.FlightInfoRequest) (*types.FlightInfo, error)
	ListFlights(ctx context.Context, tripID, userID int64) ([]*types.FlightInfo, error)
	DeleteMyFlight(ctx context.Context, tripID, userID int64, direction types.FlightDirection) error
}

type FlightService struct {
	flights store.FlightStore
	gate    types.MemberGate
	events  types.EventPublisher
}

var _ FlightServiceInterface = (*FlightService)(nil)

func NewFlightService(flights store.FlightStore, gate types.MemberGate, eventPublisher types.EventPublisher) *FlightService {
	return &FlightService{flights: flights, gate: gate, events: eventPublisher}
}

func validDirection(d types.FlightDirection) bool {
	return d == types.FlightDirectionArrival || d == types.FlightDirectionDeparture
}

func (s *FlightService) UpsertMyFlight(ctx context.Context, tripID, userID int64, req *types.FlightInfoRequest) (*types.FlightInfo, error) {
	if _, err := s.gate.RequireConfirmedMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	if !validDirection(req.Direction) {
		return nil, apperrors.ValidationFailed("invalid flight", "direction must be arrival or departure")
	}
	if !req.ArrivalTime.After(req.DepartureTime) {
		return nil, apperrors.ValidationFailed("invalid flight", "arrival must be after departure")
	}

	flight := &types.FlightInfo{
		TripID:           tripID,
		UserID:           userID,
		Direction:        req.Direction,
		Airline:          sanitize.Text(req.Airline),
		FlightNumber:     strings.ToUpper(strings.ReplaceAll(sanitize.Text(req.FlightNumber), " ", "")),
		DepartureAirport: strings.ToUpper(strings.TrimSpace(req.DepartureAirport)),
		ArrivalAirport:   strings.ToUpper(strings.TrimSpace(req.ArrivalAirport)),
		DepartureTime:    req.DepartureTime.UTC(),
		ArrivalTime:      req.ArrivalTime.UTC(),
		Notes:            sanitize.Text(req.Notes),
	}
	if err := s.flights.UpsertFlight(ctx, flight); err != nil {
		return nil, store.ToAppError(err, "Flight", tripID)
	}

	events.Emit(ctx, s.events, types.EventTypeFlightUpdated, tripID, userID, flight)
	return flight, nil
}

func (s *FlightService) ListFlights(ctx context.Context, tripID, userID int64) ([]*types.FlightInfo, error) {
	if _, err := s.gate.RequireConfirmedMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	flights, err := s.flights.ListFlights(ctx, tripID)
	if err != nil {
		return nil, store.ToAppError(err, "Flight", tripID)
	}
	return flights, nil
}

func (s *FlightService) DeleteMyFlight(ctx context.Context, tripID, userID int64, direction types.FlightDirection) error {
	if _, err := s.gate.RequireMember(ctx, tripID, userID); err != nil {
		return err
	}
	if !validDirection(direction) {
		return apperrors.ValidationFailed("invalid flight", "direction must be arrival or departure")
	}
	if err := s.flights.DeleteFlight(ctx, tripID, userID, direction); err != nil {
		return store.ToAppError(err, "Flight", tripID)
	}
	events.Emit(ctx, s.events, types.EventTypeFlightUpdated, tripID, userID, map[string]any{"userId": userID, "direction": direction, "deleted": true})
	return nil
}
