package postgres

import (
	"context"
	"strings"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/jackc/pgx/v5"
)

// Ensure UserStore implements store.UserStore interface.
var _ store.UserStore = (*UserStore)(nil)

type UserStore struct {
	base
}

func NewUserStore(pool Pool) *UserStore {
	return &UserStore{base{pool: pool}}
}

const userColumns = `id, auth_subject, username, display_name, email, venmo_handle,
	paypal_email, is_legacy_removed, created_at, updated_at`

func scanUser(row pgx.Row) (*types.User, error) {
	u := &types.User{}
	err := row.Scan(
		&u.ID,
		&u.AuthSubject,
		&u.Username,
		&u.DisplayName,
		&u.Email,
		&u.VenmoHandle,
		&u.PaypalEmail,
		&u.IsLegacyRemoved,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureUser creates the user on first sight of a token subject. Later calls
// only refresh the email; the username is fixed once chosen.
func (s *UserStore) EnsureUser(ctx context.Context, identity types.AuthIdentity) (*types.User, error) {
	query := `
		INSERT INTO users (auth_subject, username, display_name, email)
		VALUES ($1, $2, $2, $3)
		ON CONFLICT (auth_subject) DO UPDATE
		SET email = CASE WHEN EXCLUDED.email <> '' THEN EXCLUDED.email ELSE users.email END,
			updated_at = users.updated_at
		RETURNING ` + userColumns

	u, err := scanUser(s.db(ctx).QueryRow(ctx, query, identity.Subject, identity.Username, identity.Email))
	if err != nil {
		return nil, mapError("ensure user", err)
	}
	return u, nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id int64) (*types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.db(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError("get user", err)
	}
	return u, nil
}

func (s *UserStore) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*types.User, error) {
	out := make(map[int64]*types.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.db(ctx).Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, mapError("get users", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError("scan user", err)
		}
		out[u.ID] = u
	}
	return out, mapError("iterate users", rows.Err())
}

func (s *UserStore) FindByUsernames(ctx context.Context, usernames []string) (map[string]*types.User, error) {
	out := make(map[string]*types.User, len(usernames))
	if len(usernames) == 0 {
		return out, nil
	}
	lowered := make([]string, len(usernames))
	for i, u := range usernames {
		lowered[i] = strings.ToLower(u)
	}

	query := `SELECT ` + userColumns + ` FROM users
		WHERE LOWER(username) = ANY($1) AND is_legacy_removed = FALSE`
	rows, err := s.db(ctx).Query(ctx, query, lowered)
	if err != nil {
		return nil, mapError("find users", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError("scan user", err)
		}
		out[strings.ToLower(u.Username)] = u
	}
	return out, mapError("iterate users", rows.Err())
}

func (s *UserStore) UpdateProfile(ctx context.Context, id int64, update types.UserProfileUpdate) (*types.User, error) {
	query := `
		UPDATE users
		SET display_name = COALESCE($2, display_name),
			email = COALESCE($3, email),
			venmo_handle = COALESCE($4, venmo_handle),
			paypal_email = COALESCE($5, paypal_email),
			updated_at = NOW()
		WHERE id = $1 AND is_legacy_removed = FALSE
		RETURNING ` + userColumns

	u, err := scanUser(s.db(ctx).QueryRow(ctx, query,
		id,
		update.DisplayName,
		update.Email,
		update.VenmoHandle,
		update.PaypalEmail,
	))
	if err != nil {
		return nil, mapError("update user", err)
	}
	return u, nil
}

func (s *UserStore) MarkLegacyRemoved(ctx context.Context, id int64) error {
	tag, err := s.db(ctx).Exec(ctx,
		`UPDATE users SET is_legacy_removed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return mapError("remove user", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
