package model

import "time"

// Event is a bookable happening at a location.  During a live-view
// session the event record is immutable; the only way it changes is
// wholesale replacement by a fresh snapshot after a reconnect.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name shown in the supervisor dashboard.
//  LocationID – location whose seat map the event uses.
//  StartTime  – when the event begins.
//  EndTime    – when the event ends.
type Event struct {
	ID         uint64    `json:"id"`         // events.id
	Name       string    `json:"name"`       // events.name
	LocationID uint64    `json:"locationId"` // events.location_id
	StartTime  time.Time `json:"startTime"`  // events.start_time
	EndTime    time.Time `json:"endTime"`    // events.end_time
}
