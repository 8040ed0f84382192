package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/FelixHertweck/seatReservation-sub000/internal/hub"
	"github.com/FelixHertweck/seatReservation-sub000/internal/liveview"
	"github.com/FelixHertweck/seatReservation-sub000/internal/repository"
)

// upgrader performs the WebSocket handshake for the live-view stream.
// Origin checking is left to the deployment's reverse proxy; the
// endpoint itself is protected by the JWT and role middleware.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// LiveViewHandler serves the supervisor live-view stream.  For each
// accepted connection it assembles the initial snapshot straight from
// the repositories, writes it as the first frame, then relays hub
// updates until the peer goes away.  Methods assume that JWT
// authentication and role validation have already been performed by
// middleware.
type LiveViewHandler struct {
	EventRepo       *repository.EventRepo       // access to events for snapshot assembly
	LocationRepo    *repository.LocationRepo    // access to locations, seats and markers
	ReservationRepo *repository.ReservationRepo // access to reservations for the snapshot
	Hub             *hub.Hub                    // fan-out of live seat-status updates
}

// NewLiveViewHandler constructs a LiveViewHandler with the provided
// dependencies.  All dependencies must be non-nil.
func NewLiveViewHandler(eventRepo *repository.EventRepo, locationRepo *repository.LocationRepo, reservationRepo *repository.ReservationRepo, h *hub.Hub) *LiveViewHandler {
	if eventRepo == nil || locationRepo == nil || reservationRepo == nil || h == nil {
		panic("nil dependency passed to NewLiveViewHandler")
	}
	return &LiveViewHandler{
		EventRepo:       eventRepo,
		LocationRepo:    locationRepo,
		ReservationRepo: reservationRepo,
		Hub:             h,
	}
}

// Stream handles GET /api/supervisor/liveview/:event.  Lookup errors
// are reported as plain HTTP responses before the upgrade; once the
// connection is established all failures simply end the stream, and
// the client's reconnect brings it back with a fresh snapshot.
func (h *LiveViewHandler) Stream(c echo.Context) error {
	eventID, err := strconv.ParseUint(c.Param("event"), 10, 64)
	if err != nil || eventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()

	ev, err := h.EventRepo.GetByID(ctx, eventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	loc, err := h.LocationRepo.GetByID(ctx, ev.LocationID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	reservations, err := h.ReservationRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the handshake failure response.
		return nil
	}
	defer conn.Close()

	initial := liveview.InitialMessage{Event: ev, Location: loc, Reservations: reservations}
	if err := conn.WriteJSON(initial); err != nil {
		return nil
	}

	updates := h.Hub.Subscribe(eventID)
	defer h.Hub.Unsubscribe(eventID, updates)

	// The stream is push-only; the read loop exists to notice the
	// peer closing and to drain any frames it does send.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ss, ok := <-updates:
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(liveview.UpdateMessage{SeatStatus: ss}); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}
