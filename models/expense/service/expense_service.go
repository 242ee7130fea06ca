package service

import (
	"context"
	"strings"

	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/NomadCrew/crewtrip-backend/internal/events"
	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/logger"
	"github.com/NomadCrew/crewtrip-backend/pkg/sanitize"
	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
)

const defaultCategory = "other"

// ExpenseService records shared expenses and derives balances from them.
// Balances are recomputed on every read.
type ExpenseService struct {
	tx          store.Transactor
	members     store.MemberStore
	users       store.UserStore
	expenses    store.ExpenseStore
	settlements store.SettlementStore
	gate        types.MemberGate
	events      types.EventPublisher
}

var (
	_ ExpenseServiceInterface = (*ExpenseService)(nil)
	_ BalanceSource           = (*ExpenseService)(nil)
)

func NewExpenseService(
	tx store.Transactor,
	members store.MemberStore,
	users store.UserStore,
	expenses store.ExpenseStore,
	settlements store.SettlementStore,
	gate types.MemberGate,
	eventPublisher types.EventPublisher,
) *ExpenseService {
	return &ExpenseService{
		tx:          tx,
		members:     members,
		users:       users,
		expenses:    expenses,
		settlements: settlements,
		gate:        gate,
		events:      eventPublisher,
	}
}

// CreateExpense stores the expense and its splits in one transaction.
func (s *ExpenseService) CreateExpense(ctx context.Context, tripID, userID int64, req *types.CreateExpenseRequest) (*types.Expense, error) {
	mc, err := s.gate.RequireConfirmedMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	amount, err := valueobjects.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	description := sanitize.Text(req.Description)
	if strings.TrimSpace(description) == "" {
		return nil, apperrors.ValidationFailed("description is required", "")
	}
	category := strings.ToLower(strings.TrimSpace(sanitize.Text(req.Category)))
	if category == "" {
		category = defaultCategory
	}
	paidBy := userID
	if req.PaidBy != nil {
		paidBy = *req.PaidBy
	}

	expense := &types.Expense{
		TripID:      tripID,
		Description: description,
		Category:    category,
		Amount:      amount,
		PaidBy:      paidBy,
		CreatedBy:   userID,
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		members, err := s.members.ListMembers(ctx, tripID, false)
		if err != nil {
			return err
		}
		if !payerIsConfirmed(mc.Trip, members, paidBy) {
			return apperrors.ValidationFailed("invalid payer", "the payer must be a confirmed member of this trip")
		}
		splits, err := BuildSplits(mc.Trip, req, amount, members)
		if err != nil {
			return err
		}
		expense.Splits = splits
		return s.expenses.CreateExpense(ctx, expense)
	})
	if err != nil {
		return nil, store.ToAppError(err, "Expense", tripID)
	}

	logger.GetLogger().Infow("Expense created",
		"tripId", tripID,
		"expenseId", expense.ID,
		"amount", amount.String(),
		"splits", len(expense.Splits))
	events.Emit(ctx, s.events, types.EventTypeExpenseCreated, tripID, userID, expense)
	return expense, nil
}

func payerIsConfirmed(trip *types.Trip, members []*types.TripMember, userID int64) bool {
	for _, m := range members {
		if m.UserID == userID {
			return types.IsConfirmedMember(trip, m)
		}
	}
	return false
}

func (s *ExpenseService) ListExpenses(ctx context.Context, tripID, userID int64) ([]*types.Expense, error) {
	if _, err := s.gate.RequireConfirmedMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListExpenses(ctx, tripID)
	if err != nil {
		return nil, store.ToAppError(err, "Expense", tripID)
	}
	return expenses, nil
}

// DeleteExpense removes an expense. The creator or a trip admin may delete
// ordinary expenses; expenses generated by a prepaid activity are admin only.
func (s *ExpenseService) DeleteExpense(ctx context.Context, tripID, userID, expenseID int64) error {
	mc, err := s.gate.RequireConfirmedMember(ctx, tripID, userID)
	if err != nil {
		return err
	}
	expense, err := s.expenses.GetExpense(ctx, expenseID)
	if err != nil {
		return store.ToAppError(err, "Expense", expenseID)
	}
	if expense.TripID != tripID {
		return apperrors.NotFound("Expense", expenseID)
	}

	switch {
	case expense.ActivityID != nil && !mc.IsAdmin():
		return apperrors.AdminOnly("delete activity expenses")
	case expense.CreatedBy != userID && !mc.IsAdmin():
		return apperrors.Forbidden("Only the creator or a trip admin can delete this expense", "")
	}

	if err := s.expenses.DeleteExpense(ctx, expenseID); err != nil {
		return store.ToAppError(err, "Expense", expenseID)
	}
	events.Emit(ctx, s.events, types.EventTypeExpenseDeleted, tripID, userID, map[string]interface{}{
		"expenseId": expenseID,
	})
	return nil
}

// GetBalances returns every member's position plus suggested transfers.
func (s *ExpenseService) GetBalances(ctx context.Context, tripID, userID int64) (*types.TripBalances, error) {
	mc, err := s.gate.RequireConfirmedMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	return s.ComputeBalances(ctx, mc.Trip)
}

// ComputeBalances loads the trip's ledger and runs the calculator.
func (s *ExpenseService) ComputeBalances(ctx context.Context, trip *types.Trip) (*types.TripBalances, error) {
	in, err := s.loadLedger(ctx, trip)
	if err != nil {
		return nil, err
	}
	return CalculateBalances(*in), nil
}

func (s *ExpenseService) loadLedger(ctx context.Context, trip *types.Trip) (*BalanceInput, error) {
	members, err := s.members.ListMembers(ctx, trip.ID, true)
	if err != nil {
		return nil, store.ToAppError(err, "Member", trip.ID)
	}
	expenses, err := s.expenses.ListExpenses(ctx, trip.ID)
	if err != nil {
		return nil, store.ToAppError(err, "Expense", trip.ID)
	}
	settlements, err := s.settlements.ListSettlements(ctx, trip.ID)
	if err != nil {
		return nil, store.ToAppError(err, "Settlement", trip.ID)
	}

	ids := ledgerUserIDs(members, expenses, settlements)
	users := map[int64]*types.User{}
	if len(ids) > 0 {
		users, err = s.users.GetUsersByIDs(ctx, ids)
		if err != nil {
			return nil, store.ToAppError(err, "User", trip.ID)
		}
	}
	return &BalanceInput{
		Trip:        trip,
		Members:     members,
		Users:       users,
		Expenses:    expenses,
		Settlements: settlements,
	}, nil
}

func ledgerUserIDs(members []*types.TripMember, expenses []*types.Expense, settlements []*types.Settlement) []int64 {
	seen := map[int64]bool{}
	var ids []int64
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, m := range members {
		add(m.UserID)
	}
	for _, e := range expenses {
		add(e.PaidBy)
		for _, sp := range e.Splits {
			add(sp.UserID)
		}
	}
	for _, st := range settlements {
		add(st.PayerID)
		add(st.PayeeID)
	}
	return ids
}
