// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckInScannedEvent is published by the check-in flow whenever a QR
// code is scanned at the door.  It carries enough information for the
// live-view server to update the reservation's live status and push
// the change to connected supervisors without a round trip to the
// scanner service.
type CheckInScannedEvent struct {
	EventID       uint64 `json:"event_id"`
	ReservationID uint64 `json:"reservation_id"`
	SeatID        uint64 `json:"seat_id"`
	LiveStatus    string `json:"live_status"`
	ScannedAt     string `json:"scanned_at"`
}
