package postgres

import (
	"context"

	"github.com/NomadCrew/crewtrip-backend/internal/store"
	"github.com/NomadCrew/crewtrip-backend/types"
)

var _ store.FlightStore = (*FlightStore)(nil)

type FlightStore struct {
	base
}

func NewFlightStore(pool Pool) *FlightStore {
	return &FlightStore{base{pool: pool}}
}

func (s *FlightStore) UpsertFlight(ctx context.Context, f *types.FlightInfo) error {
	err := s.db(ctx).QueryRow(ctx, `
		INSERT INTO flight_info (trip_id, user_id, direction, airline, flight_number,
			departure_airport, arrival_airport, departure_time, arrival_time, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (trip_id, user_id, direction) DO UPDATE
		SET airline = EXCLUDED.airline,
			flight_number = EXCLUDED.flight_number,
			departure_airport = EXCLUDED.departure_airport,
			arrival_airport = EXCLUDED.arrival_airport,
			departure_time = EXCLUDED.departure_time,
			arrival_time = EXCLUDED.arrival_time,
			notes = EXCLUDED.notes,
			updated_at = NOW()
		RETURNING id, updated_at`,
		f.TripID,
		f.UserID,
		f.Direction,
		f.Airline,
		f.FlightNumber,
		f.DepartureAirport,
		f.ArrivalAirport,
		f.DepartureTime,
		f.ArrivalTime,
		f.Notes,
	).Scan(&f.ID, &f.UpdatedAt)
	return mapError("upsert flight", err)
}

// ListFlights orders by arrival time so pickups can be planned top to bottom.
func (s *FlightStore) ListFlights(ctx context.Context, tripID int64) ([]*types.FlightInfo, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, trip_id, user_id, direction, airline, flight_number, departure_airport,
			arrival_airport, departure_time, arrival_time, notes, updated_at
		FROM flight_info
		WHERE trip_id = $1
		ORDER BY arrival_time, user_id`, tripID)
	if err != nil {
		return nil, mapError("list flights", err)
	}
	defer rows.Close()

	out := []*types.FlightInfo{}
	for rows.Next() {
		f := &types.FlightInfo{}
		if err := rows.Scan(
			&f.ID,
			&f.TripID,
			&f.UserID,
			&f.Direction,
			&f.Airline,
			&f.FlightNumber,
			&f.DepartureAirport,
			&f.ArrivalAirport,
			&f.DepartureTime,
			&f.ArrivalTime,
			&f.Notes,
			&f.UpdatedAt,
		); err != nil {
			return nil, mapError("scan flight", err)
		}
		out = append(out, f)
	}
	return out, mapError("iterate flights", rows.Err())
}

func (s *FlightStore) DeleteFlight(ctx context.Context, tripID, userID int64, direction types.FlightDirection) error {
	tag, err := s.db(ctx).Exec(ctx,
		`DELETE FROM flight_info WHERE trip_id = $1 AND user_id = $2 AND direction = $3`,
		tripID, userID, direction)
	if err != nil {
		return mapError("delete flight", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
