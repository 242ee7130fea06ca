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

var userCols = []string{
	"id", "auth_subject", "username", "display_name", "email", "venmo_handle",
	"paypal_email", "is_legacy_removed", "created_at", "updated_at",
}

func userRow(rows *pgxmock.Rows, id int64, username string) *pgxmock.Rows {
	now := time.Now()
	return rows.AddRow(id, "sub-"+username, username, username, username+"@example.com", "", "", false, now, now)
}

func TestUserStore_EnsureUser(t *testing.T) {
	mock := newMock(t)
	s := NewUserStore(mock)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("sub-alice", "alice", "alice@example.com").
		WillReturnRows(userRow(pgxmock.NewRows(userCols), 7, "alice"))

	u, err := s.EnsureUser(context.Background(), types.AuthIdentity{
		Subject:  "sub-alice",
		Username: "alice",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_GetUserByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
			WithArgs(int64(3)).
			WillReturnRows(userRow(pgxmock.NewRows(userCols), 3, "bob"))

		u, err := NewUserStore(mock).GetUserByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "bob", u.Username)
	})

	t.Run("not found", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
			WithArgs(int64(404)).
			WillReturnError(pgx.ErrNoRows)

		_, err := NewUserStore(mock).GetUserByID(context.Background(), 404)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestUserStore_FindByUsernames(t *testing.T) {
	mock := newMock(t)
	rows := pgxmock.NewRows(userCols)
	userRow(rows, 1, "Alice")
	mock.ExpectQuery("SELECT (.+) FROM users WHERE LOWER\\(username\\) = ANY").
		WithArgs([]string{"alice", "unknownuser"}).
		WillReturnRows(rows)

	got, err := NewUserStore(mock).FindByUsernames(context.Background(), []string{"ALICE", "unknownuser"})
	require.NoError(t, err)
	require.Contains(t, got, "alice")
	assert.Equal(t, int64(1), got["alice"].ID)
	assert.NotContains(t, got, "unknownuser")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_GetUsersByIDs_Empty(t *testing.T) {
	mock := newMock(t)
	got, err := NewUserStore(mock).GetUsersByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_MarkLegacyRemoved(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("UPDATE users SET is_legacy_removed = TRUE").
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewUserStore(mock).MarkLegacyRemoved(context.Background(), 9)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
