package repository // repository for event persistence

import (
	"context"      // context for managing deadlines
	"database/sql" // sql provides DB interfaces
	"errors"       // errors.Is for sentinel comparisons

	"github.com/FelixHertweck/seatReservation-sub000/internal/model"
)

// EventRepo encapsulates database operations for events.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo given a DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// GetByID fetches a single event.  ErrEventNotFound is returned when
// the id does not exist.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, location_id, start_time, end_time FROM events WHERE id = ?`, id)
	var ev model.Event
	if err := row.Scan(&ev.ID, &ev.Name, &ev.LocationID, &ev.StartTime, &ev.EndTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &ev, nil
}
