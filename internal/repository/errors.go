// Package repository provides raw-SQL access to the seat-reservation
// tables the live view reads from.  Sentinel errors defined here let
// handlers map lookup failures to HTTP responses without inspecting
// driver errors.
package repository

import "errors"

// ErrEventNotFound is returned when no event exists for the given id.
// Handlers should translate this into an HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrLocationNotFound is returned when no location exists for the
// given id.  Handlers should translate this into an HTTP 404.
var ErrLocationNotFound = errors.New("location not found")

// ErrReservationNotFound is returned when a live-status update names
// a reservation that does not exist.
var ErrReservationNotFound = errors.New("reservation not found")
