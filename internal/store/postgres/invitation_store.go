package postgres

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/jackc/pgx/v5"
)

var _ store.InvitationStore = (*InvitationStore)(nil)

type InvitationStore struct {
	base
}

func NewInvitationStore(pool Pool) *InvitationStore {
	return &InvitationStore{base{pool: pool}}
}

const linkColumns = `id, trip_id, token, created_by, expires_at, created_at`

func scanLink(row pgx.Row) (*types.InvitationLink, error) {
	l := &types.InvitationLink{}
	if err := row.Scan(&l.ID, &l.TripID, &l.Token, &l.CreatedBy, &l.ExpiresAt, &l.CreatedAt); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *InvitationStore) CreateLink(ctx context.Context, link *types.InvitationLink) error {
	err := s.db(ctx).QueryRow(ctx, `
		INSERT INTO invitation_links (trip_id, token, created_by, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		link.TripID, link.Token, link.CreatedBy, link.ExpiresAt,
	).Scan(&link.ID, &link.CreatedAt)
	return mapError("create invitation link", err)
}

// GetLinkByToken ignores revoked links.
func (s *InvitationStore) GetLinkByToken(ctx context.Context, token string) (*types.InvitationLink, error) {
	l, err := scanLink(s.db(ctx).QueryRow(ctx,
		`SELECT `+linkColumns+` FROM invitation_links WHERE token = $1 AND revoked_at IS NULL`, token))
	if err != nil {
		return nil, mapError("get invitation link", err)
	}
	return l, nil
}

func (s *InvitationStore) ListLinks(ctx context.Context, tripID int64) ([]*types.InvitationLink, error) {
	rows, err := s.db(ctx).Query(ctx, `SELECT `+linkColumns+` FROM invitation_links
		WHERE trip_id = $1 AND revoked_at IS NULL
		ORDER BY created_at DESC`, tripID)
	if err != nil {
		return nil, mapError("list invitation links", err)
	}
	defer rows.Close()

	var out []*types.InvitationLink
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, mapError("scan invitation link", err)
		}
		out = append(out, l)
	}
	return out, mapError("iterate invitation links", rows.Err())
}

func (s *InvitationStore) RevokeLink(ctx context.Context, tripID, linkID int64) error {
	tag, err := s.db(ctx).Exec(ctx, `UPDATE invitation_links SET revoked_at = NOW()
		WHERE id = $1 AND trip_id = $2 AND revoked_at IS NULL`, linkID, tripID)
	if err != nil {
		return mapError("revoke invitation link", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
