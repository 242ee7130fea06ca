package mocks

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/stretchr/testify/mock"
)

// UserStore is a mock of the UserStore interface
type UserStore struct {
	mock.Mock
}

func (m *UserStore) EnsureUser(ctx context.Context, identity types.AuthIdentity) (*types.User, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *UserStore) GetUserByID(ctx context.Context, id int64) (*types.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *UserStore) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*types.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]*types.User), args.Error(1)
}

func (m *UserStore) FindByUsernames(ctx context.Context, usernames []string) (map[string]*types.User, error) {
	args := m.Called(ctx, usernames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*types.User), args.Error(1)
}

func (m *UserStore) UpdateProfile(ctx context.Context, id int64, update types.UserProfileUpdate) (*types.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *UserStore) MarkLegacyRemoved(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
