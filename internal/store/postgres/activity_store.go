package postgres

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/pkg/valueobjects"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var _ store.ActivityStore = (*ActivityStore)(nil)

type ActivityStore struct {
	base
}

func NewActivityStore(pool Pool) *ActivityStore {
	return &ActivityStore{base{pool: pool}}
}

const activityColumns = `a.id, a.trip_id, a.name, a.description, a.location, a.start_time, a.end_time,
	a.max_capacity, a.is_prepaid, a.cost_per_person, a.created_by, a.created_at,
	(SELECT COUNT(*) FROM activity_rsvp r WHERE r.activity_id = a.id AND r.status = 'going') AS going_count`

func scanActivity(row pgx.Row) (*types.Activity, error) {
	a := &types.Activity{}
	var cost decimal.NullDecimal
	err := row.Scan(
		&a.ID,
		&a.TripID,
		&a.Name,
		&a.Description,
		&a.Location,
		&a.StartTime,
		&a.EndTime,
		&a.MaxCapacity,
		&a.IsPrepaid,
		&cost,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.GoingCount,
	)
	if err != nil {
		return nil, err
	}
	if cost.Valid {
		amt := valueobjects.NewAmount(cost.Decimal)
		a.CostPerPerson = &amt
	}
	return a, nil
}

func (s *ActivityStore) CreateActivity(ctx context.Context, a *types.Activity) error {
	var cost decimal.NullDecimal
	if a.CostPerPerson != nil {
		cost = decimal.NullDecimal{Decimal: a.CostPerPerson.Decimal, Valid: true}
	}
	err := s.db(ctx).QueryRow(ctx, `
		INSERT INTO activities (trip_id, name, description, location, start_time, end_time,
			max_capacity, is_prepaid, cost_per_person, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		a.TripID,
		a.Name,
		a.Description,
		a.Location,
		a.StartTime,
		a.EndTime,
		a.MaxCapacity,
		a.IsPrepaid,
		cost,
		a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt)
	return mapError("create activity", err)
}

func (s *ActivityStore) GetActivity(ctx context.Context, id int64) (*types.Activity, error) {
	a, err := scanActivity(s.db(ctx).QueryRow(ctx, `SELECT `+activityColumns+` FROM activities a WHERE a.id = $1`, id))
	if err != nil {
		return nil, mapError("get activity", err)
	}
	return a, nil
}

// LockActivity serializes RSVPs so capacity checks see a stable count.
func (s *ActivityStore) LockActivity(ctx context.Context, id int64) (*types.Activity, error) {
	a, err := scanActivity(s.db(ctx).QueryRow(ctx,
		`SELECT `+activityColumns+` FROM activities a WHERE a.id = $1 FOR UPDATE OF a`, id))
	if err != nil {
		return nil, mapError("lock activity", err)
	}
	return a, nil
}

func (s *ActivityStore) ListActivities(ctx context.Context, tripID int64) ([]*types.Activity, error) {
	rows, err := s.db(ctx).Query(ctx,
		`SELECT `+activityColumns+` FROM activities a WHERE a.trip_id = $1 ORDER BY a.start_time, a.id`, tripID)
	if err != nil {
		return nil, mapError("list activities", err)
	}
	defer rows.Close()

	var out []*types.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, mapError("scan activity", err)
		}
		out = append(out, a)
	}
	return out, mapError("iterate activities", rows.Err())
}

func (s *ActivityStore) DeleteActivity(ctx context.Context, id int64) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return mapError("delete activity", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ActivityStore) GetRSVP(ctx context.Context, activityID, userID int64) (*types.ActivityRSVP, error) {
	r := &types.ActivityRSVP{}
	err := s.db(ctx).QueryRow(ctx, `
		SELECT activity_id, user_id, status, updated_at
		FROM activity_rsvp
		WHERE activity_id = $1 AND user_id = $2`, activityID, userID,
	).Scan(&r.ActivityID, &r.UserID, &r.Status, &r.UpdatedAt)
	if err != nil {
		return nil, mapError("get activity rsvp", err)
	}
	return r, nil
}

func (s *ActivityStore) UpsertRSVP(ctx context.Context, r *types.ActivityRSVP) error {
	err := s.db(ctx).QueryRow(ctx, `
		INSERT INTO activity_rsvp (activity_id, user_id, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (activity_id, user_id) DO UPDATE
		SET status = EXCLUDED.status, updated_at = NOW()
		RETURNING updated_at`,
		r.ActivityID, r.UserID, r.Status,
	).Scan(&r.UpdatedAt)
	return mapError("upsert activity rsvp", err)
}

func (s *ActivityStore) ListRSVPs(ctx context.Context, activityID int64) ([]*types.ActivityRSVP, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT activity_id, user_id, status, updated_at
		FROM activity_rsvp
		WHERE activity_id = $1
		ORDER BY updated_at`, activityID)
	if err != nil {
		return nil, mapError("list activity rsvps", err)
	}
	defer rows.Close()

	var out []*types.ActivityRSVP
	for rows.Next() {
		r := &types.ActivityRSVP{}
		if err := rows.Scan(&r.ActivityID, &r.UserID, &r.Status, &r.UpdatedAt); err != nil {
			return nil, mapError("scan activity rsvp", err)
		}
		out = append(out, r)
	}
	return out, mapError("iterate activity rsvps", rows.Err())
}
