package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityStore_RSVP(t *testing.T) {
	mock := newMock(t)
	s := NewActivityStore(mock)
	now := time.Now()

	r := &types.ActivityRSVP{ActivityID: 4, UserID: 2, Status: types.ActivityRSVPGoing}
	mock.ExpectQuery("INSERT INTO activity_rsvp").
		WithArgs(int64(4), int64(2), types.ActivityRSVPGoing).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))
	require.NoError(t, s.UpsertRSVP(context.Background(), r))
	assert.Equal(t, now, r.UpdatedAt)

	mock.ExpectQuery("SELECT activity_id, user_id, status, updated_at FROM activity_rsvp").
		WithArgs(int64(4), int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"activity_id", "user_id", "status", "updated_at"}).
			AddRow(int64(4), int64(2), types.ActivityRSVPGoing, now))
	got, err := s.GetRSVP(context.Background(), 4, 2)
	require.NoError(t, err)
	assert.Equal(t, types.ActivityRSVPGoing, got.Status)

	mock.ExpectQuery("SELECT activity_id, user_id, status, updated_at FROM activity_rsvp").
		WithArgs(int64(4), int64(3)).
		WillReturnError(pgx.ErrNoRows)
	_, err = s.GetRSVP(context.Background(), 4, 3)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityStore_DeleteActivity(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("DELETE FROM activities WHERE id = \\$1").
		WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, NewActivityStore(mock).DeleteActivity(context.Background(), 4))
}

func TestActivityStore_CreateActivityCost(t *testing.T) {
	start := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	now := time.Now()
	cost := valueobjects.NewAmount(decimal.RequireFromString("12.50"))

	tests := []struct {
		name string
		cost *valueobjects.Amount
		want decimal.NullDecimal
	}{
		{name: "priced", cost: &cost, want: decimal.NullDecimal{Decimal: cost.Decimal, Valid: true}},
		{name: "free", cost: nil, want: decimal.NullDecimal{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			a := &types.Activity{TripID: 10, Name: "Tram 28", StartTime: start, CostPerPerson: tt.cost, CreatedBy: 1}
			mock.ExpectQuery("INSERT INTO activities").
				WithArgs(int64(10), "Tram 28", "", "", start, pgxmock.AnyArg(), pgxmock.AnyArg(), false, tt.want, int64(1)).
				WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

			require.NoError(t, NewActivityStore(mock).CreateActivity(context.Background(), a))
			assert.Equal(t, int64(7), a.ID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
