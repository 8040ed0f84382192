package model

// Persisted reservation states.  Status is what the booking flow wrote
// to the database; it never changes over the live-view protocol.
const (
	StatusReserved = "RESERVED" // seat booked by a user
	StatusBlocked  = "BLOCKED"  // seat blocked by an administrator
)

// Ephemeral occupancy states.  LiveStatus is what the check-in flow
// reports in real time and is the only reservation field the
// incremental live-view protocol ever mutates.
const (
	LiveStatusNoShow    = "NO_SHOW"    // holder has not appeared yet
	LiveStatusCheckedIn = "CHECKED_IN" // holder scanned in at the door
	LiveStatusCancelled = "CANCELLED"  // entry revoked at the door
)

// Reservation is the live-view projection of a booked seat.  The set
// of reservations for an event is only ever replaced wholesale by an
// initial snapshot; update messages mutate LiveStatus on existing
// entries and nothing else.
//
// Fields:
//  ID         – primary key identifier.
//  EventID    – event the seat is booked for.
//  SeatID     – seat within the event's location.
//  Status     – persisted reservation state (RESERVED, BLOCKED).
//  LiveStatus – ephemeral occupancy state (NO_SHOW, CHECKED_IN, CANCELLED).
type Reservation struct {
	ID         uint64 `json:"id"`         // reservations.id
	EventID    uint64 `json:"eventId"`    // reservations.event_id
	SeatID     uint64 `json:"seatId"`     // reservations.seat_id
	Status     string `json:"status"`     // reservations.status
	LiveStatus string `json:"liveStatus"` // reservations.live_status
}

// SeatStatus is the payload of an incremental live-view update.  It
// identifies the reservation whose LiveStatus must change by the seat
// it occupies.
type SeatStatus struct {
	SeatID        uint64 `json:"seatId"`                  // seat whose occupancy changed
	LiveStatus    string `json:"liveStatus"`              // new ephemeral state
	ReservationID uint64 `json:"reservationId,omitempty"` // reservation holding the seat
	Status        string `json:"status,omitempty"`        // persisted state, informational
}
