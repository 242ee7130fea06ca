package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var memberCols = []string{
	"trip_id", "user_id", "username", "display_name", "status", "rsvp_status",
	"payment_status", "payment_method", "payment_note", "payment_evidence_key", "is_admin",
	"is_archived", "invited_by", "joined_at", "updated_at", "removed_at",
}

func memberRow(rows *pgxmock.Rows, tripID, userID int64, rsvp types.RSVPStatus, removedAt *time.Time) *pgxmock.Rows {
	now := time.Now()
	return rows.AddRow(tripID, userID, "user", "User", types.InvitationStatusPending, rsvp,
		types.PaymentStatusNotRequired, types.PaymentMethod(""), "", "", false, false, (*int64)(nil), now, now, removedAt)
}

func TestMemberStore_GetMember(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM trip_members m JOIN users u").
			WithArgs(int64(1), int64(2)).
			WillReturnRows(memberRow(pgxmock.NewRows(memberCols), 1, 2, types.RSVPStatusConfirmed, nil))

		m, err := NewMemberStore(mock).GetMember(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.Equal(t, types.RSVPStatusConfirmed, m.RSVPStatus)
		assert.True(t, m.IsActive())
	})

	t.Run("removed row is still returned", func(t *testing.T) {
		mock := newMock(t)
		removed := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM trip_members m JOIN users u").
			WithArgs(int64(1), int64(2)).
			WillReturnRows(memberRow(pgxmock.NewRows(memberCols), 1, 2, types.RSVPStatusConfirmed, &removed))

		m, err := NewMemberStore(mock).GetMember(context.Background(), 1, 2)
		require.NoError(t, err)
		assert.False(t, m.IsActive())
	})

	t.Run("missing", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM trip_members").
			WithArgs(int64(1), int64(3)).
			WillReturnError(pgx.ErrNoRows)

		_, err := NewMemberStore(mock).GetMember(context.Background(), 1, 3)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestMemberStore_AddMember(t *testing.T) {
	m := &types.TripMember{
		TripID:        1,
		UserID:        5,
		Status:        types.InvitationStatusPending,
		RSVPStatus:    types.RSVPStatusPending,
		PaymentStatus: types.PaymentStatusNotRequired,
	}

	t.Run("inserted or reactivated", func(t *testing.T) {
		mock := newMock(t)
		now := time.Now()
		mock.ExpectQuery("INSERT INTO trip_members").
			WithArgs(m.TripID, m.UserID, m.Status, m.RSVPStatus, m.PaymentStatus, false, m.InvitedBy).
			WillReturnRows(pgxmock.NewRows([]string{"joined_at", "updated_at"}).AddRow(now, now))

		require.NoError(t, NewMemberStore(mock).AddMember(context.Background(), m))
		assert.Equal(t, now, m.JoinedAt)
	})

	t.Run("active row conflicts", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("INSERT INTO trip_members").
			WithArgs(m.TripID, m.UserID, m.Status, m.RSVPStatus, m.PaymentStatus, false, m.InvitedBy).
			WillReturnError(pgx.ErrNoRows)

		err := NewMemberStore(mock).AddMember(context.Background(), m)
		assert.ErrorIs(t, err, store.ErrConflict)
	})
}

func TestMemberStore_RemoveMember(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("UPDATE trip_members SET removed_at = NOW\\(\\)").
		WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE trip_members SET removed_at = NOW\\(\\)").
		WithArgs(int64(1), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	s := NewMemberStore(mock)
	require.NoError(t, s.RemoveMember(context.Background(), 1, 2))
	assert.ErrorIs(t, s.RemoveMember(context.Background(), 1, 2), store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberStore_CountAdmins(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM trip_members m JOIN trips t").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	n, err := NewMemberStore(mock).CountAdmins(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestTripStore_ArchiveTrip_NotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("UPDATE trips SET archived_at").
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewTripStore(mock).ArchiveTrip(context.Background(), 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
