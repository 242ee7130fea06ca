package mocks

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/stretchr/testify/mock"
)

// FlightStore is a mock of the FlightStore interface
type FlightStore struct {
	mock.Mock
}

func (m *FlightStore) UpsertFlight(ctx context.Context, f *types.FlightInfo) error {
	return m.Called(ctx, f).Error(0)
}

func (m *FlightStore) ListFlights(ctx context.Context, tripID int64) ([]*types.FlightInfo, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.FlightInfo), args.Error(1)
}

func (m *FlightStore) DeleteFlight(ctx context.Context, tripID, userID int64, direction types.FlightDirection) error {
	return m.Called(ctx, tripID, userID, direction).Error(0)
}
