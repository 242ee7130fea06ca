package service

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/xuri/excelize/v2"
)

// ExpenseServiceInterface is consumed by the expense handlers.
type ExpenseServiceInterface interface {
	CreateExpense(ctx context.Context, tripID, userID int64, req *types.CreateExpenseRequest) (*types.Expense, error)
	ListExpenses(ctx context.Context, tripID, userID int64) ([]*types.Expense, error)
	DeleteExpense(ctx context.Context, tripID, userID, expenseID int64) error
	GetBalances(ctx context.Context, tripID, userID int64) (*types.TripBalances, error)
	ExportWorkbook(ctx context.Context, tripID, userID int64) (*excelize.File, string, error)
}

// BalanceSource recomputes a trip's balances without an access check. The
// settlement workflow calls it inside its own transaction.
type BalanceSource interface {
	ComputeBalances(ctx context.Context, trip *types.Trip) (*types.TripBalances, error)
	// ReconcileSettled refreshes split paid and expense settled flags after
	// a settlement is confirmed.
	ReconcileSettled(ctx context.Context, trip *types.Trip) error
}
