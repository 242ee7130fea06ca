package mocks

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/stretchr/testify/mock"
)

// MemberStore is a mock of the MemberStore interface
type MemberStore struct {
	mock.Mock
}

func (m *MemberStore) GetMember(ctx context.Context, tripID, userID int64) (*types.TripMember, error) {
	args := m.Called(ctx, tripID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripMember), args.Error(1)
}

func (m *MemberStore) ListMembers(ctx context.Context, tripID int64, includeRemoved bool) ([]*types.TripMember, error) {
	args := m.Called(ctx, tripID, includeRemoved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.TripMember), args.Error(1)
}

func (m *MemberStore) AddMember(ctx context.Context, member *types.TripMember) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MemberStore) UpdateMember(ctx context.Context, member *types.TripMember) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MemberStore) RemoveMember(ctx context.Context, tripID, userID int64) error {
	return m.Called(ctx, tripID, userID).Error(0)
}

func (m *MemberStore) CountAdmins(ctx context.Context, tripID int64) (int, error) {
	args := m.Called(ctx, tripID)
	return args.Int(0), args.Error(1)
}
