package model

// Location describes a venue and its seat map.  The seat and marker
// collections are ordered the way the dashboard renders them and are
// effectively immutable within a live-view session.
//
// Fields:
//  ID      – primary key identifier.
//  Name    – display name of the venue.
//  Seats   – ordered seats belonging to this location.
//  Markers – ordered rendering-only labels (stage, exits, ...).
type Location struct {
	ID      uint64   `json:"id"`      // locations.id
	Name    string   `json:"name"`    // locations.name
	Seats   []Seat   `json:"seats"`   // ordered seat map
	Markers []Marker `json:"markers"` // ordered render markers
}

// Seat is a single selectable position on the seat map.  Coordinates
// are grid positions used for rendering, not pixels.
type Seat struct {
	ID         uint64  `json:"id"`                // seats.id
	SeatRow    string  `json:"seatRow"`           // seats.seat_row
	SeatNumber string  `json:"seatNumber"`        // seats.seat_number
	X          int     `json:"x"`                 // seats.x grid column
	Y          int     `json:"y"`                 // seats.y grid row
	GroupID    *uint64 `json:"groupId,omitempty"` // seats.group_id (nullable)
}

// Marker is a label drawn on the seat map.  Markers carry no seat or
// reservation semantics; they exist purely for rendering.
type Marker struct {
	ID    uint64 `json:"id"`    // markers.id
	Label string `json:"label"` // markers.label
	X     int    `json:"x"`     // markers.x grid column
	Y     int    `json:"y"`     // markers.y grid row
}
