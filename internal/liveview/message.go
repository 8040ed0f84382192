// Package liveview maintains an in-memory mirror of one event's seat
// occupancy from the supervisor push stream: one full snapshot per
// connection, then incremental per-seat updates.
package liveview

import (
	"encoding/json"

	"github.com/FelixHertweck/seatReservation-sub000/internal/model"
)

// Kind classifies an inbound live-view frame.
type Kind int

const (
	// KindUnknown covers malformed payloads and shapes outside the
	// protocol.  Unknown frames are logged and never change state.
	KindUnknown Kind = iota
	// KindInitial is the full snapshot sent once per connection.
	KindInitial
	// KindUpdate is an incremental per-seat occupancy change.
	KindUpdate
)

// InitialMessage is the snapshot frame: the complete state needed to
// render the live view.  Its presence of location and reservations
// arrays is what distinguishes it from an update.
type InitialMessage struct {
	Event        *model.Event        `json:"event"`
	Location     *model.Location     `json:"location"`
	Reservations []model.Reservation `json:"reservations"`
}

// UpdateMessage is the incremental frame: exactly one seat's
// occupancy change, distinguished by the seatStatus field.
type UpdateMessage struct {
	SeatStatus model.SeatStatus `json:"seatStatus"`
}

// Message is the decoded form of one inbound frame.  Exactly the
// fields implied by Kind are populated; Raw always holds the original
// payload for diagnostics.
type Message struct {
	Kind         Kind
	Event        *model.Event
	Location     *model.Location
	Reservations []model.Reservation
	SeatStatus   *model.SeatStatus
	Raw          []byte
}

// Decode classifies one frame into the closed variant set
// {Initial, Update, Unknown}.  A frame carrying a seatStatus object
// is an update; a frame carrying both a location and a reservations
// array is a snapshot; everything else, including payloads that are
// not JSON at all, is unknown.  Decode never fails: degraded input
// degrades the Kind, not the caller.
func Decode(raw []byte) Message {
	var probe struct {
		Event        *model.Event        `json:"event"`
		Location     *model.Location     `json:"location"`
		Reservations []model.Reservation `json:"reservations"`
		SeatStatus   *model.SeatStatus   `json:"seatStatus"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Message{Kind: KindUnknown, Raw: raw}
	}
	switch {
	case probe.SeatStatus != nil:
		return Message{Kind: KindUpdate, SeatStatus: probe.SeatStatus, Raw: raw}
	case probe.Location != nil && probe.Reservations != nil:
		return Message{
			Kind:         KindInitial,
			Event:        probe.Event,
			Location:     probe.Location,
			Reservations: probe.Reservations,
			Raw:          raw,
		}
	default:
		return Message{Kind: KindUnknown, Raw: raw}
	}
}
