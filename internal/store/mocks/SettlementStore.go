package mocks

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/stretchr/testify/mock"
)

// SettlementStore is a mock of the SettlementStore interface
type SettlementStore struct {
	mock.Mock
}

func (m *SettlementStore) CreateSettlement(ctx context.Context, s *types.Settlement) error {
	return m.Called(ctx, s).Error(0)
}

func (m *SettlementStore) GetSettlement(ctx context.Context, id int64) (*types.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Settlement), args.Error(1)
}

func (m *SettlementStore) LockSettlement(ctx context.Context, id int64) (*types.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Settlement), args.Error(1)
}

func (m *SettlementStore) ListSettlements(ctx context.Context, tripID int64) ([]*types.Settlement, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Settlement), args.Error(1)
}

func (m *SettlementStore) UpdateSettlementStatus(ctx context.Context, s *types.Settlement) error {
	return m.Called(ctx, s).Error(0)
}
