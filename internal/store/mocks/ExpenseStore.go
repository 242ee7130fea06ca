package mocks

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/stretchr/testify/mock"
)

// ExpenseStore is a mock of the ExpenseStore interface
type ExpenseStore struct {
	mock.Mock
}

func (m *ExpenseStore) CreateExpense(ctx context.Context, expense *types.Expense) error {
	return m.Called(ctx, expense).Error(0)
}

func (m *ExpenseStore) GetExpense(ctx context.Context, id int64) (*types.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Expense), args.Error(1)
}

func (m *ExpenseStore) GetExpenseByActivity(ctx context.Context, activityID int64) (*types.Expense, error) {
	args := m.Called(ctx, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Expense), args.Error(1)
}

func (m *ExpenseStore) ListExpenses(ctx context.Context, tripID int64) ([]*types.Expense, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*types.Expense), args.Error(1)
}

func (m *ExpenseStore) DeleteExpense(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ExpenseStore) SetSettled(ctx context.Context, id int64, settled bool) error {
	return m.Called(ctx, id, settled).Error(0)
}

func (m *ExpenseStore) SetSplitPaid(ctx context.Context, expenseID, userID int64, paid bool) error {
	return m.Called(ctx, expenseID, userID, paid).Error(0)
}

func (m *ExpenseStore) UpsertSplit(ctx context.Context, expenseID, userID int64, amount valueobjects.Amount) error {
	return m.Called(ctx, expenseID, userID, amount).Error(0)
}

func (m *ExpenseStore) RemoveSplit(ctx context.Context, expenseID, userID int64) error {
	return m.Called(ctx, expenseID, userID).Error(0)
}
