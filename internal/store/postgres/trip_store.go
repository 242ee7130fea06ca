package postgres

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/types"
	"github.com/jackc/pgx/v5"
)

var _ store.TripStore = (*TripStore)(nil)

type TripStore struct {
	base
}

func NewTripStore(pool Pool) *TripStore {
	return &TripStore{base{pool: pool}}
}

const tripColumns = `t.id, t.name, t.description, t.destination, t.destination_country,
	t.start_date, t.end_date, t.organizer_id, t.requires_down_payment, t.down_payment_amount,
	t.background_image_url, t.archived_at, t.created_at, t.updated_at`

func tripScanTargets(t *types.Trip) []any {
	return []any{
		&t.ID,
		&t.Name,
		&t.Description,
		&t.Destination,
		&t.DestinationCountry,
		&t.StartDate,
		&t.EndDate,
		&t.OrganizerID,
		&t.RequiresDownPayment,
		&t.DownPaymentAmount.Decimal,
		&t.BackgroundImageURL,
		&t.ArchivedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	}
}

func scanTrip(row pgx.Row) (*types.Trip, error) {
	t := &types.Trip{}
	if err := row.Scan(tripScanTargets(t)...); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TripStore) CreateTrip(ctx context.Context, trip *types.Trip) error {
	query := `
		INSERT INTO trips (name, description, destination, destination_country, start_date,
			end_date, organizer_id, requires_down_payment, down_payment_amount, background_image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := s.db(ctx).QueryRow(ctx, query,
		trip.Name,
		trip.Description,
		trip.Destination,
		trip.DestinationCountry,
		trip.StartDate,
		trip.EndDate,
		trip.OrganizerID,
		trip.RequiresDownPayment,
		trip.DownPaymentAmount.Decimal,
		trip.BackgroundImageURL,
	).Scan(&trip.ID, &trip.CreatedAt, &trip.UpdatedAt)
	return mapError("create trip", err)
}

func (s *TripStore) GetTrip(ctx context.Context, id int64) (*types.Trip, error) {
	t, err := scanTrip(s.db(ctx).QueryRow(ctx, `SELECT `+tripColumns+` FROM trips t WHERE t.id = $1`, id))
	if err != nil {
		return nil, mapError("get trip", err)
	}
	return t, nil
}

func (s *TripStore) LockTrip(ctx context.Context, id int64) (*types.Trip, error) {
	t, err := scanTrip(s.db(ctx).QueryRow(ctx, `SELECT `+tripColumns+` FROM trips t WHERE t.id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError("lock trip", err)
	}
	return t, nil
}

func (s *TripStore) UpdateTrip(ctx context.Context, id int64, update types.TripUpdate) (*types.Trip, error) {
	var downPayment any
	if update.DownPaymentAmount != nil {
		downPayment = update.DownPaymentAmount.Decimal
	}
	query := `
		UPDATE trips t
		SET name = COALESCE($2, t.name),
			description = COALESCE($3, t.description),
			destination = COALESCE($4, t.destination),
			destination_country = COALESCE($5, t.destination_country),
			start_date = COALESCE($6, t.start_date),
			end_date = COALESCE($7, t.end_date),
			requires_down_payment = COALESCE($8, t.requires_down_payment),
			down_payment_amount = COALESCE($9::numeric, t.down_payment_amount),
			updated_at = NOW()
		WHERE t.id = $1
		RETURNING ` + tripColumns

	t, err := scanTrip(s.db(ctx).QueryRow(ctx, query,
		id,
		update.Name,
		update.Description,
		update.Destination,
		update.DestinationCountry,
		update.StartDate,
		update.EndDate,
		update.RequiresDownPayment,
		downPayment,
	))
	if err != nil {
		return nil, mapError("update trip", err)
	}
	return t, nil
}

func (s *TripStore) SetBackgroundImage(ctx context.Context, id int64, url string) error {
	_, err := s.db(ctx).Exec(ctx, `UPDATE trips SET background_image_url = $2 WHERE id = $1`, id, url)
	return mapError("set background image", err)
}

func (s *TripStore) ArchiveTrip(ctx context.Context, id int64) error {
	tag, err := s.db(ctx).Exec(ctx,
		`UPDATE trips SET archived_at = COALESCE(archived_at, NOW()), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return mapError("archive trip", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListTripsForUser returns every trip where userID holds an active membership
// row, newest start date first.
func (s *TripStore) ListTripsForUser(ctx context.Context, userID int64) ([]*types.TripWithMembership, error) {
	query := `SELECT ` + tripColumns + `, ` + memberColumns + `
		FROM trips t
		JOIN trip_members m ON m.trip_id = t.id
		JOIN users u ON u.id = m.user_id
		WHERE m.user_id = $1 AND m.removed_at IS NULL
		ORDER BY t.start_date DESC, t.id DESC`

	rows, err := s.db(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, mapError("list trips", err)
	}
	defer rows.Close()

	var out []*types.TripWithMembership
	for rows.Next() {
		tw := &types.TripWithMembership{Membership: &types.TripMember{}}
		targets := append(tripScanTargets(&tw.Trip), memberScanTargets(tw.Membership)...)
		if err := rows.Scan(targets...); err != nil {
			return nil, mapError("scan trip", err)
		}
		out = append(out, tw)
	}
	return out, mapError("iterate trips", rows.Err())
}
