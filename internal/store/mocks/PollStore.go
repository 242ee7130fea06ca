package mocks

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/stretchr/testify/mock"
)

// PollStore is a mock of the PollStore interface
type PollStore struct {
	mock.Mock
}

func (m *PollStore) CreatePoll(ctx context.Context, poll *types.Poll) error {
	return m.Called(ctx, poll).Error(0)
}

func (m *PollStore) GetPoll(ctx context.Context, id, viewerID int64) (*types.Poll, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Poll), args.Error(1)
}

func (m *PollStore) ListPolls(ctx context.Context, tripID, viewerID int64) ([]*types.Poll, error) {
	args := m.Called(ctx, tripID, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Poll), args.Error(1)
}

func (m *PollStore) Vote(ctx context.Context, pollID, optionID, userID int64) error {
	return m.Called(ctx, pollID, optionID, userID).Error(0)
}

func (m *PollStore) ClosePoll(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
