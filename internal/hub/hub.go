// Package hub fans seat-status updates out to the supervisor
// connections watching each event.  With a Redis client attached the
// hub also bridges updates between server instances over pub/sub, so
// a check-in processed by one instance reaches supervisors connected
// to another.
package hub

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/FelixHertweck/seatReservation-sub000/internal/model"
)

// channelPrefix namespaces the per-event Redis channels, e.g.
// liveview.events.42 carries updates for event 42.
const channelPrefix = "liveview.events."

// update is the pub/sub envelope.  Origin carries the publishing
// instance's id so an instance never re-applies its own broadcast.
type update struct {
	EventID    uint64           `json:"eventId"`
	SeatStatus model.SeatStatus `json:"seatStatus"`
	Origin     string           `json:"origin"`
}

// Hub is a per-event subscriber registry.  Subscriber channels are
// buffered and a lagging subscriber loses updates rather than
// blocking the rest; the next snapshot after its reconnect catches it
// up.
type Hub struct {
	mu    sync.Mutex
	rooms map[uint64]map[chan model.SeatStatus]struct{}

	rdb *redis.Client // nil means single-instance operation
	id  string        // random instance id for the pub/sub bridge
}

// New creates a Hub.  rdb may be nil, in which case updates fan out
// to local subscribers only.
func New(rdb *redis.Client) *Hub {
	h := &Hub{
		rooms: make(map[uint64]map[chan model.SeatStatus]struct{}),
		rdb:   rdb,
		id:    instanceID(),
	}
	if rdb != nil {
		go h.relay(context.Background())
	}
	return h
}

// Subscribe registers a new subscriber for an event and returns its
// update channel.
func (h *Hub) Subscribe(eventID uint64) chan model.SeatStatus {
	ch := make(chan model.SeatStatus, 16)
	h.mu.Lock()
	room, ok := h.rooms[eventID]
	if !ok {
		room = make(map[chan model.SeatStatus]struct{})
		h.rooms[eventID] = room
	}
	room[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.  It is a
// no-op for channels that were never subscribed or already removed.
func (h *Hub) Unsubscribe(eventID uint64, ch chan model.SeatStatus) {
	h.mu.Lock()
	if room, ok := h.rooms[eventID]; ok {
		if _, ok := room[ch]; ok {
			delete(room, ch)
			close(ch)
		}
		if len(room) == 0 {
			delete(h.rooms, eventID)
		}
	}
	h.mu.Unlock()
}

// Broadcast delivers a seat-status update to every subscriber of the
// event and, when a Redis client is attached, publishes it for the
// other instances.
func (h *Hub) Broadcast(ctx context.Context, eventID uint64, ss model.SeatStatus) {
	h.deliver(eventID, ss)
	if h.rdb == nil {
		return
	}
	body, err := json.Marshal(update{EventID: eventID, SeatStatus: ss, Origin: h.id})
	if err != nil {
		log.Printf("hub: encode update failed: %v", err)
		return
	}
	channel := channelPrefix + strconv.FormatUint(eventID, 10)
	if err := h.rdb.Publish(ctx, channel, body).Err(); err != nil {
		log.Printf("hub: publish to %s failed: %v", channel, err)
	}
}

// deliver hands the update to local subscribers only.
func (h *Hub) deliver(eventID uint64, ss model.SeatStatus) {
	h.mu.Lock()
	for ch := range h.rooms[eventID] {
		select {
		case ch <- ss:
		default:
			// Drop for a lagging subscriber; its next reconnect
			// snapshot restores consistency.
		}
	}
	h.mu.Unlock()
}

// relay applies updates published by other instances.  It runs for
// the life of the process; a broken pub/sub connection is retried by
// the redis client internally.
func (h *Hub) relay(ctx context.Context) {
	sub := h.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer func() { _ = sub.Close() }()
	for msg := range sub.Channel() {
		var u update
		if err := json.Unmarshal([]byte(msg.Payload), &u); err != nil {
			log.Printf("hub: bad update on %s: %v", msg.Channel, err)
			continue
		}
		if u.Origin == h.id {
			continue
		}
		h.deliver(u.EventID, u.SeatStatus)
	}
}

// instanceID returns a random hex id distinguishing this process on
// the pub/sub bus.
func instanceID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// Fall back to something stable rather than failing startup.
		return strings.Repeat("0", 16)
	}
	return hex.EncodeToString(buf)
}
