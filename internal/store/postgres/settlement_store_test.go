package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementStore_UpdateSettlementStatus(t *testing.T) {
	now := time.Now()
	confirmer := int64(1)
	st := &types.Settlement{
		ID:          3,
		Status:      types.SettlementStatusConfirmed,
		ConfirmedAt: &now,
		ConfirmedBy: &confirmer,
	}

	t.Run("pending row moves", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("UPDATE settlements SET status = \\$2").
			WithArgs(st.ID, st.Status, st.ConfirmedAt, st.ConfirmedBy, st.CancelledAt, st.CancelledBy).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewSettlementStore(mock).UpdateSettlementStatus(context.Background(), st))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("terminal row conflicts", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec("UPDATE settlements SET status = \\$2").
			WithArgs(st.ID, st.Status, st.ConfirmedAt, st.ConfirmedBy, st.CancelledAt, st.CancelledBy).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewSettlementStore(mock).UpdateSettlementStatus(context.Background(), st)
		assert.ErrorIs(t, err, store.ErrConflict)
	})
}

func TestSettlementStore_CreateSettlement(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	st := &types.Settlement{
		TripID:  1,
		PayerID: 2,
		PayeeID: 3,
		Method:  types.PaymentMethodCash,
		Status:  types.SettlementStatusPending,
	}
	mock.ExpectQuery("INSERT INTO settlements").
		WithArgs(st.TripID, st.PayerID, st.PayeeID, pgxmock.AnyArg(), st.Method, "", "", "", st.Status).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(8), now, now))

	require.NoError(t, NewSettlementStore(mock).CreateSettlement(context.Background(), st))
	assert.Equal(t, int64(8), st.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
