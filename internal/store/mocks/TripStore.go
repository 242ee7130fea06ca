package mocks

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/stretchr/testify/mock"
)

// TripStore is a mock of the TripStore interface
type TripStore struct {
	mock.Mock
}

func (m *TripStore) CreateTrip(ctx context.Context, trip *types.Trip) error {
	return m.Called(ctx, trip).Error(0)
}

func (m *TripStore) GetTrip(ctx context.Context, id int64) (*types.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *TripStore) LockTrip(ctx context.Context, id int64) (*types.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *TripStore) UpdateTrip(ctx context.Context, id int64, update types.TripUpdate) (*types.Trip, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *TripStore) SetBackgroundImage(ctx context.Context, id int64, url string) error {
	return m.Called(ctx, id, url).Error(0)
}

func (m *TripStore) ArchiveTrip(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *TripStore) ListTripsForUser(ctx context.Context, userID int64) ([]*types.TripWithMembership, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.TripWithMembership), args.Error(1)
}
