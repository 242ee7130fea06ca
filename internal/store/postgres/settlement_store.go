package postgres

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/jackc/pgx/v5"
)

var _ store.SettlementStore = (*SettlementStore)(nil)

type SettlementStore struct {
	base
}

func NewSettlementStore(pool Pool) *SettlementStore {
	return &SettlementStore{base{pool: pool}}
}

const settlementColumns = `id, trip_id, payer_id, payee_id, amount, method, payment_link, web_link,
	memo, status, confirmed_at, confirmed_by, cancelled_at, cancelled_by, created_at, updated_at`

func scanSettlement(row pgx.Row) (*types.Settlement, error) {
	st := &types.Settlement{}
	err := row.Scan(
		&st.ID,
		&st.TripID,
		&st.PayerID,
		&st.PayeeID,
		&st.Amount.Decimal,
		&st.Method,
		&st.PaymentLink,
		&st.WebLink,
		&st.Memo,
		&st.Status,
		&st.ConfirmedAt,
		&st.ConfirmedBy,
		&st.CancelledAt,
		&st.CancelledBy,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SettlementStore) CreateSettlement(ctx context.Context, st *types.Settlement) error {
	err := s.db(ctx).QueryRow(ctx, `
		INSERT INTO settlements (trip_id, payer_id, payee_id, amount, method, payment_link, web_link, memo, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		st.TripID,
		st.PayerID,
		st.PayeeID,
		st.Amount.Decimal,
		st.Method,
		st.PaymentLink,
		st.WebLink,
		st.Memo,
		st.Status,
	).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	return mapError("create settlement", err)
}

func (s *SettlementStore) GetSettlement(ctx context.Context, id int64) (*types.Settlement, error) {
	st, err := scanSettlement(s.db(ctx).QueryRow(ctx, `SELECT `+settlementColumns+` FROM settlements WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get settlement", err)
	}
	return st, nil
}

func (s *SettlementStore) LockSettlement(ctx context.Context, id int64) (*types.Settlement, error) {
	st, err := scanSettlement(s.db(ctx).QueryRow(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError("lock settlement", err)
	}
	return st, nil
}

func (s *SettlementStore) ListSettlements(ctx context.Context, tripID int64) ([]*types.Settlement, error) {
	rows, err := s.db(ctx).Query(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE trip_id = $1 ORDER BY created_at DESC, id DESC`, tripID)
	if err != nil {
		return nil, mapError("list settlements", err)
	}
	defer rows.Close()

	var out []*types.Settlement
	for rows.Next() {
		st, err := scanSettlement(rows)
		if err != nil {
			return nil, mapError("scan settlement", err)
		}
		out = append(out, st)
	}
	return out, mapError("iterate settlements", rows.Err())
}

// UpdateSettlementStatus only moves pending rows; a terminal row yields ErrConflict.
func (s *SettlementStore) UpdateSettlementStatus(ctx context.Context, st *types.Settlement) error {
	tag, err := s.db(ctx).Exec(ctx, `
		UPDATE settlements
		SET status = $2,
			confirmed_at = $3,
			confirmed_by = $4,
			cancelled_at = $5,
			cancelled_by = $6,
			updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		st.ID,
		st.Status,
		st.ConfirmedAt,
		st.ConfirmedBy,
		st.CancelledAt,
		st.CancelledBy,
	)
	if err != nil {
		return mapError("update settlement", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrConflict
	}
	return nil
}
