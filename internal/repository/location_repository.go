package repository // repository for location and seat-map persistence

import (
	"context"      // context for managing deadlines
	"database/sql" // sql provides DB interfaces
	"errors"       // errors.Is for sentinel comparisons

	"github.com/FelixHertweck/seatReservation-sub000/internal/model"
)

// LocationRepo encapsulates database operations for locations and the
// seat map (seats and markers) belonging to them.
type LocationRepo struct {
	db *sql.DB
}

// NewLocationRepo constructs a LocationRepo given a DB handle.
func NewLocationRepo(db *sql.DB) *LocationRepo {
	return &LocationRepo{db: db}
}

// GetByID fetches a location together with its ordered seats and
// markers, i.e. everything the dashboard needs to draw the seat map.
// ErrLocationNotFound is returned when the id does not exist.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (*model.Location, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name FROM locations WHERE id = ?`, id)
	var loc model.Location
	if err := row.Scan(&loc.ID, &loc.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, err
	}

	seats, err := r.listSeats(ctx, id)
	if err != nil {
		return nil, err
	}
	loc.Seats = seats

	markers, err := r.listMarkers(ctx, id)
	if err != nil {
		return nil, err
	}
	loc.Markers = markers
	return &loc, nil
}

// listSeats returns the location's seats in stable rendering order.
func (r *LocationRepo) listSeats(ctx context.Context, locationID uint64) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, seat_row, seat_number, x, y, group_id
           FROM seats WHERE location_id = ? ORDER BY seat_row, seat_number, id`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		var group sql.NullInt64
		if err := rows.Scan(&s.ID, &s.SeatRow, &s.SeatNumber, &s.X, &s.Y, &group); err != nil {
			return nil, err
		}
		if group.Valid {
			g := uint64(group.Int64)
			s.GroupID = &g
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// listMarkers returns the location's rendering markers in insertion
// order.
func (r *LocationRepo) listMarkers(ctx context.Context, locationID uint64) ([]model.Marker, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, x, y FROM markers WHERE location_id = ? ORDER BY id`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	markers := make([]model.Marker, 0)
	for rows.Next() {
		var m model.Marker
		if err := rows.Scan(&m.ID, &m.Label, &m.X, &m.Y); err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, rows.Err()
}
