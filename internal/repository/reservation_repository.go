package repository // repository for reservation persistence

import (
	"context"      // context for managing deadlines
	"database/sql" // sql provides DB interfaces
	"errors"       // errors.Is for sentinel comparisons

	"github.com/FelixHertweck/seatReservation-sub000/internal/model"
)

// ReservationRepo encapsulates database operations for reservations
// as seen by the live view: listing an event's reservations for the
// snapshot and flipping live status when the check-in flow reports a
// scan.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo constructs a ReservationRepo given a DB handle.
func NewReservationRepo(db *sql.DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

// ListByEvent returns all reservations of an event in stable order.
// The result is never nil; an event without reservations yields an
// empty slice so the snapshot always carries a reservations array.
func (r *ReservationRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, seat_id, status, live_status
           FROM reservations WHERE event_id = ? ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		if err := rows.Scan(&res.ID, &res.EventID, &res.SeatID, &res.Status, &res.LiveStatus); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// GetByID fetches a single reservation.  ErrReservationNotFound is
// returned when the id does not exist.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, event_id, seat_id, status, live_status FROM reservations WHERE id = ?`, id)
	var res model.Reservation
	if err := row.Scan(&res.ID, &res.EventID, &res.SeatID, &res.Status, &res.LiveStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// UpdateLiveStatus sets the ephemeral occupancy state of one
// reservation.  The persisted status column is never touched here.
// MySQL reports zero affected rows both for a missing id and for a
// no-op rewrite of the same value, so existence is not inferred from
// the row count; callers that need it use GetByID.
func (r *ReservationRepo) UpdateLiveStatus(ctx context.Context, id uint64, liveStatus string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET live_status = ? WHERE id = ?`, liveStatus, id)
	return err
}
