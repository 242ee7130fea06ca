package postgres

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/jackc/pgx/v5"
)

var _ store.ExpenseStore = (*ExpenseStore)(nil)

type ExpenseStore struct {
	base
}

func NewExpenseStore(pool Pool) *ExpenseStore {
	return &ExpenseStore{base{pool: pool}}
}

const expenseColumns = `e.id, e.trip_id, e.description, e.category, e.amount, e.paid_by,
	e.created_by, e.activity_id, e.is_settled, e.created_at, e.updated_at`

func scanExpense(row pgx.Row) (*types.Expense, error) {
	e := &types.Expense{}
	err := row.Scan(
		&e.ID,
		&e.TripID,
		&e.Description,
		&e.Category,
		&e.Amount.Decimal,
		&e.PaidBy,
		&e.CreatedBy,
		&e.ActivityID,
		&e.IsSettled,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Splits = []types.ExpenseSplit{}
	return e, nil
}

func (s *ExpenseStore) CreateExpense(ctx context.Context, e *types.Expense) error {
	db := s.db(ctx)
	err := db.QueryRow(ctx, `
		INSERT INTO expenses (trip_id, description, category, amount, paid_by, created_by, activity_id, is_settled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		e.TripID,
		e.Description,
		e.Category,
		e.Amount.Decimal,
		e.PaidBy,
		e.CreatedBy,
		e.ActivityID,
		e.IsSettled,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return mapError("create expense", err)
	}

	for i := range e.Splits {
		sp := &e.Splits[i]
		sp.ExpenseID = e.ID
		err := db.QueryRow(ctx, `
			INSERT INTO expense_splits (expense_id, user_id, amount, is_paid)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			sp.ExpenseID, sp.UserID, sp.Amount.Decimal, sp.IsPaid,
		).Scan(&sp.ID)
		if err != nil {
			return mapError("create expense split", err)
		}
	}
	return nil
}

func (s *ExpenseStore) GetExpense(ctx context.Context, id int64) (*types.Expense, error) {
	e, err := scanExpense(s.db(ctx).QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses e WHERE e.id = $1`, id))
	if err != nil {
		return nil, mapError("get expense", err)
	}
	if err := s.attachSplits(ctx, []*types.Expense{e}); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ExpenseStore) GetExpenseByActivity(ctx context.Context, activityID int64) (*types.Expense, error) {
	e, err := scanExpense(s.db(ctx).QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses e WHERE e.activity_id = $1 FOR UPDATE`, activityID))
	if err != nil {
		return nil, mapError("get activity expense", err)
	}
	if err := s.attachSplits(ctx, []*types.Expense{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// ListExpenses returns every expense of the trip with its splits, oldest first.
func (s *ExpenseStore) ListExpenses(ctx context.Context, tripID int64) ([]*types.Expense, error) {
	rows, err := s.db(ctx).Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses e WHERE e.trip_id = $1 ORDER BY e.created_at, e.id`, tripID)
	if err != nil {
		return nil, mapError("list expenses", err)
	}
	defer rows.Close()

	var out []*types.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, mapError("scan expense", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate expenses", err)
	}
	if err := s.attachSplits(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ExpenseStore) attachSplits(ctx context.Context, expenses []*types.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	ids := make([]int64, len(expenses))
	byID := make(map[int64]*types.Expense, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
		byID[e.ID] = e
	}

	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, expense_id, user_id, amount, is_paid
		FROM expense_splits
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, id`, ids)
	if err != nil {
		return mapError("list expense splits", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sp types.ExpenseSplit
		if err := rows.Scan(&sp.ID, &sp.ExpenseID, &sp.UserID, &sp.Amount.Decimal, &sp.IsPaid); err != nil {
			return mapError("scan expense split", err)
		}
		if e, ok := byID[sp.ExpenseID]; ok {
			e.Splits = append(e.Splits, sp)
		}
	}
	return mapError("iterate expense splits", rows.Err())
}

func (s *ExpenseStore) DeleteExpense(ctx context.Context, id int64) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return mapError("delete expense", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ExpenseStore) SetSettled(ctx context.Context, id int64, settled bool) error {
	tag, err := s.db(ctx).Exec(ctx,
		`UPDATE expenses SET is_settled = $2, updated_at = NOW() WHERE id = $1`, id, settled)
	if err != nil {
		return mapError("settle expense", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ExpenseStore) SetSplitPaid(ctx context.Context, expenseID, userID int64, paid bool) error {
	tag, err := s.db(ctx).Exec(ctx,
		`UPDATE expense_splits SET is_paid = $3 WHERE expense_id = $1 AND user_id = $2`, expenseID, userID, paid)
	if err != nil {
		return mapError("mark split paid", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

const recomputeExpenseTotal = `
	UPDATE expenses
	SET amount = (SELECT COALESCE(SUM(amount), 0) FROM expense_splits WHERE expense_id = $1),
		updated_at = NOW()
	WHERE id = $1`

func (s *ExpenseStore) UpsertSplit(ctx context.Context, expenseID, userID int64, amount valueobjects.Amount) error {
	db := s.db(ctx)
	_, err := db.Exec(ctx, `
		INSERT INTO expense_splits (expense_id, user_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (expense_id, user_id) DO UPDATE SET amount = EXCLUDED.amount`,
		expenseID, userID, amount.Decimal)
	if err != nil {
		return mapError("upsert split", err)
	}
	_, err = db.Exec(ctx, recomputeExpenseTotal, expenseID)
	return mapError("recompute expense total", err)
}

func (s *ExpenseStore) RemoveSplit(ctx context.Context, expenseID, userID int64) error {
	db := s.db(ctx)
	if _, err := db.Exec(ctx,
		`DELETE FROM expense_splits WHERE expense_id = $1 AND user_id = $2`, expenseID, userID); err != nil {
		return mapError("remove split", err)
	}
	_, err := db.Exec(ctx, recomputeExpenseTotal, expenseID)
	return mapError("recompute expense total", err)
}
