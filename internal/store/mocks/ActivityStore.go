package mocks

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/stretchr/testify/mock"
)

// ActivityStore is a mock of the ActivityStore interface
type ActivityStore struct {
	mock.Mock
}

func (m *ActivityStore) CreateActivity(ctx context.Context, a *types.Activity) error {
	return m.Called(ctx, a).Error(0)
}

func (m *ActivityStore) GetActivity(ctx context.Context, id int64) (*types.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Activity), args.Error(1)
}

func (m *ActivityStore) LockActivity(ctx context.Context, id int64) (*types.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Activity), args.Error(1)
}

func (m *ActivityStore) ListActivities(ctx context.Context, tripID int64) ([]*types.Activity, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Activity), args.Error(1)
}

func (m *ActivityStore) DeleteActivity(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ActivityStore) GetRSVP(ctx context.Context, activityID, userID int64) (*types.ActivityRSVP, error) {
	args := m.Called(ctx, activityID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ActivityRSVP), args.Error(1)
}

func (m *ActivityStore) UpsertRSVP(ctx context.Context, rsvp *types.ActivityRSVP) error {
	return m.Called(ctx, rsvp).Error(0)
}

func (m *ActivityStore) ListRSVPs(ctx context.Context, activityID int64) ([]*types.ActivityRSVP, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.ActivityRSVP), args.Error(1)
}
