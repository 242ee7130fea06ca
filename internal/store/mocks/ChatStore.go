package mocks

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/stretchr/testify/mock"
)

// ChatStore is a mock of the ChatStore interface
type ChatStore struct {
	mock.Mock
}

func (m *ChatStore) CreateMessage(ctx context.Context, msg *types.ChatMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *ChatStore) ListMessages(ctx context.Context, tripID int64, before *int64, limit int) ([]*types.ChatMessage, error) {
	args := m.Called(ctx, tripID, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.ChatMessage), args.Error(1)
}

func (m *ChatStore) DeleteMessage(ctx context.Context, tripID, messageID int64) error {
	return m.Called(ctx, tripID, messageID).Error(0)
}

func (m *ChatStore) GetMessage(ctx context.Context, tripID, messageID int64) (*types.ChatMessage, error) {
	args := m.Called(ctx, tripID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatMessage), args.Error(1)
}
