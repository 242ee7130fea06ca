package postgres

import (
	"context"
	"errors"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/jackc/pgx/v5"
)

var _ store.MemberStore = (*MemberStore)(nil)

type MemberStore struct {
	base
}

func NewMemberStore(pool Pool) *MemberStore {
	return &MemberStore{base{pool: pool}}
}

// memberColumns expects trip_members aliased m joined with users aliased u.
const memberColumns = `m.trip_id, m.user_id, u.username, u.display_name, m.status, m.rsvp_status,
	m.payment_status, m.payment_method, m.payment_note, m.payment_evidence_key, m.is_admin,
	m.is_archived, m.invited_by, m.joined_at, m.updated_at, m.removed_at`

func memberScanTargets(m *types.TripMember) []any {
	return []any{
		&m.TripID,
		&m.UserID,
		&m.Username,
		&m.DisplayName,
		&m.Status,
		&m.RSVPStatus,
		&m.PaymentStatus,
		&m.PaymentMethod,
		&m.PaymentNote,
		&m.PaymentEvidenceKey,
		&m.IsAdmin,
		&m.IsArchived,
		&m.InvitedBy,
		&m.JoinedAt,
		&m.UpdatedAt,
		&m.RemovedAt,
	}
}

func scanMember(row pgx.Row) (*types.TripMember, error) {
	m := &types.TripMember{}
	if err := row.Scan(memberScanTargets(m)...); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MemberStore) GetMember(ctx context.Context, tripID, userID int64) (*types.TripMember, error) {
	query := `SELECT ` + memberColumns + `
		FROM trip_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.trip_id = $1 AND m.user_id = $2`

	m, err := scanMember(s.db(ctx).QueryRow(ctx, query, tripID, userID))
	if err != nil {
		return nil, mapError("get member", err)
	}
	return m, nil
}

func (s *MemberStore) ListMembers(ctx context.Context, tripID int64, includeRemoved bool) ([]*types.TripMember, error) {
	query := `SELECT ` + memberColumns + `
		FROM trip_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.trip_id = $1 AND ($2::boolean OR m.removed_at IS NULL)
		ORDER BY m.joined_at, m.user_id`

	rows, err := s.db(ctx).Query(ctx, query, tripID, includeRemoved)
	if err != nil {
		return nil, mapError("list members", err)
	}
	defer rows.Close()

	var out []*types.TripMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, mapError("scan member", err)
		}
		out = append(out, m)
	}
	return out, mapError("iterate members", rows.Err())
}

func (s *MemberStore) AddMember(ctx context.Context, m *types.TripMember) error {
	query := `
		INSERT INTO trip_members (trip_id, user_id, status, rsvp_status, payment_status, is_admin, invited_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (trip_id, user_id) DO UPDATE
		SET status = EXCLUDED.status,
			rsvp_status = EXCLUDED.rsvp_status,
			payment_status = EXCLUDED.payment_status,
			payment_method = '',
			payment_note = '',
			payment_evidence_key = '',
			is_admin = EXCLUDED.is_admin,
			is_archived = FALSE,
			invited_by = EXCLUDED.invited_by,
			joined_at = NOW(),
			updated_at = NOW(),
			removed_at = NULL
		WHERE trip_members.removed_at IS NOT NULL
		RETURNING joined_at, updated_at`

	err := s.db(ctx).QueryRow(ctx, query,
		m.TripID,
		m.UserID,
		m.Status,
		m.RSVPStatus,
		m.PaymentStatus,
		m.IsAdmin,
		m.InvitedBy,
	).Scan(&m.JoinedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// the conflicting row is still active
		return store.ErrConflict
	}
	if err != nil {
		return mapError("add member", err)
	}
	m.RemovedAt = nil
	return nil
}

func (s *MemberStore) UpdateMember(ctx context.Context, m *types.TripMember) error {
	query := `
		UPDATE trip_members
		SET status = $3,
			rsvp_status = $4,
			payment_status = $5,
			payment_method = $6,
			payment_note = $7,
			payment_evidence_key = $8,
			is_admin = $9,
			is_archived = $10,
			updated_at = NOW()
		WHERE trip_id = $1 AND user_id = $2 AND removed_at IS NULL
		RETURNING updated_at`

	err := s.db(ctx).QueryRow(ctx, query,
		m.TripID,
		m.UserID,
		m.Status,
		m.RSVPStatus,
		m.PaymentStatus,
		m.PaymentMethod,
		m.PaymentNote,
		m.PaymentEvidenceKey,
		m.IsAdmin,
		m.IsArchived,
	).Scan(&m.UpdatedAt)
	return mapError("update member", err)
}

func (s *MemberStore) RemoveMember(ctx context.Context, tripID, userID int64) error {
	tag, err := s.db(ctx).Exec(ctx, `
		UPDATE trip_members
		SET removed_at = NOW(), is_admin = FALSE, updated_at = NOW()
		WHERE trip_id = $1 AND user_id = $2 AND removed_at IS NULL`, tripID, userID)
	if err != nil {
		return mapError("remove member", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MemberStore) CountAdmins(ctx context.Context, tripID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM trip_members m
		JOIN trips t ON t.id = m.trip_id
		WHERE m.trip_id = $1 AND m.removed_at IS NULL
			AND (m.is_admin OR m.user_id = t.organizer_id)`

	var n int
	if err := s.db(ctx).QueryRow(ctx, query, tripID).Scan(&n); err != nil {
		return 0, mapError("count admins", err)
	}
	return n, nil
}
