package mocks

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/stretchr/testify/mock"
)

// InvitationStore is a mock of the InvitationStore interface
type InvitationStore struct {
	mock.Mock
}

func (m *InvitationStore) CreateLink(ctx context.Context, link *types.InvitationLink) error {
	return m.Called(ctx, link).Error(0)
}

func (m *InvitationStore) GetLinkByToken(ctx context.Context, token string) (*types.InvitationLink, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.InvitationLink), args.Error(1)
}

func (m *InvitationStore) ListLinks(ctx context.Context, tripID int64) ([]*types.InvitationLink, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.InvitationLink), args.Error(1)
}

func (m *InvitationStore) RevokeLink(ctx context.Context, tripID, linkID int64) error {
	return m.Called(ctx, tripID, linkID).Error(0)
}
