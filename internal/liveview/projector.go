package liveview

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/FelixHertweck/seatReservation-sub000/internal/model"
	"github.com/FelixHertweck/seatReservation-sub000/internal/ws"
)

// State is the projector's externally visible condition.  It is a
// value: accessors and the OnChange callback hand out copies, so the
// caller can read it without synchronizing with the message stream.
//
// InitialLoading is true from the moment a connection attempt starts
// until the first snapshot of that connection life has been applied,
// or until the connection drops.  Every reconnect raises it again
// because the server resends a full snapshot per connection.
type State struct {
	Connected      bool                // transport is open
	Connecting     bool                // a dial is in flight
	InitialLoading bool                // waiting for the snapshot
	Event          *model.Event        // nil until first snapshot
	Location       *model.Location     // nil until first snapshot
	Reservations   []model.Reservation // empty until first snapshot
	LastError      string              // last apply failure, empty when healthy
}

// Options configures a Projector.  The zero value is usable.
type Options struct {
	// MaxReconnectAttempts and ReconnectDelay pass through to the
	// underlying connection; zero selects the ws package defaults.
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
	// RequestHeader is sent with every dial, typically the bearer
	// token for the supervisor endpoint.
	RequestHeader http.Header
	// OnChange receives a State copy after every observable change.
	OnChange func(State)
}

// Projector mirrors one event's occupancy state from the supervisor
// push stream.  Every Watch and Stop advances an epoch and each
// connection's callbacks carry the epoch they were created under, so
// a frame from a superseded connection is checked against the current
// epoch inside the same critical section that would apply it and can
// never leak into the next projection.
type Projector struct {
	base string
	opts Options

	// watchMu serializes Watch and Stop so two overlapping calls can
	// never each leave a connection open.
	watchMu sync.Mutex

	mu      sync.Mutex
	epoch   uint64
	conn    *ws.Conn
	eventID uint64
	state   State
}

// New returns an idle Projector for the server at base, which may use
// an http(s) or ws(s) scheme.  No connection is made until Watch.
func New(base string, opts Options) *Projector {
	return &Projector{base: base, opts: opts}
}

// newConn builds the connection for one watch epoch.  The callbacks
// close over the epoch so stale ones identify themselves.
func (p *Projector) newConn(epoch uint64) *ws.Conn {
	return ws.New(ws.Options{
		MaxReconnectAttempts: p.opts.MaxReconnectAttempts,
		ReconnectDelay:       p.opts.ReconnectDelay,
		RequestHeader:        p.opts.RequestHeader,
		OnMessage:            func(raw []byte) { p.handleMessage(epoch, raw) },
		OnConnecting:         func(connecting bool) { p.handleConnecting(epoch, connecting) },
		OnOpen:               func() { p.handleOpen(epoch) },
		OnClose:              func() { p.handleClose(epoch) },
	})
}

// EndpointURL derives the live-view WebSocket URL for an event from
// the server base URL.  It is the only place such URLs are built:
// http upgrades to ws, https to wss, and the path is the supervisor
// live-view endpoint with the decimal event id.
func EndpointURL(base string, eventID uint64) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/api/supervisor/liveview/" + strconv.FormatUint(eventID, 10)
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Watch starts mirroring the given event, replacing any projection in
// progress.  An id of zero means "no event selected": the projector
// goes idle and never opens a connection.
func (p *Projector) Watch(eventID uint64) {
	if eventID == 0 {
		p.Stop()
		return
	}
	endpoint, err := EndpointURL(p.base, eventID)
	if err != nil {
		p.Stop()
		p.mu.Lock()
		p.state.LastError = err.Error()
		st := p.snapshotLocked()
		p.mu.Unlock()
		p.notify(st)
		return
	}

	p.watchMu.Lock()
	defer p.watchMu.Unlock()

	// Advancing the epoch and resetting the projection in one
	// critical section orphans the previous connection: its callbacks
	// fail the epoch check and stale state can never show through.
	p.mu.Lock()
	p.epoch++
	old := p.conn
	p.conn = p.newConn(p.epoch)
	conn := p.conn
	p.eventID = eventID
	p.state = State{}
	p.mu.Unlock()
	if old != nil {
		old.Close()
	}
	conn.Open(endpoint)
}

// Stop idempotently closes the connection, cancels any pending
// reconnect and discards the projection.
func (p *Projector) Stop() {
	p.watchMu.Lock()
	defer p.watchMu.Unlock()
	p.mu.Lock()
	p.epoch++
	conn := p.conn
	p.conn = nil
	p.eventID = 0
	p.state = State{}
	p.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// State returns a copy of the current projection state.
func (p *Projector) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Send transmits a payload to the server.  The live-view stream is
// receive-only in normal operation; this exists for completeness and
// inherits the connection's fire-and-forget semantics.
func (p *Projector) Send(payload any) {
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		log.Printf("liveview: send dropped, no event watched")
		return
	}
	conn.Send(payload)
}

// snapshotLocked copies the state, cloning the reservation slice so a
// later update cannot mutate what the caller is holding.
func (p *Projector) snapshotLocked() State {
	st := p.state
	if st.Reservations != nil {
		st.Reservations = append([]model.Reservation(nil), st.Reservations...)
	}
	return st
}

func (p *Projector) notify(st State) {
	if p.opts.OnChange != nil {
		p.opts.OnChange(st)
	}
}

func (p *Projector) handleConnecting(epoch uint64, connecting bool) {
	p.mu.Lock()
	if epoch != p.epoch {
		p.mu.Unlock()
		return
	}
	p.state.Connecting = connecting
	if connecting {
		// Every attempt starts a fresh connection life, which
		// requires a fresh snapshot before the view is current.
		p.state.InitialLoading = true
	}
	st := p.snapshotLocked()
	p.mu.Unlock()
	p.notify(st)
}

func (p *Projector) handleOpen(epoch uint64) {
	p.mu.Lock()
	if epoch != p.epoch {
		p.mu.Unlock()
		return
	}
	p.state.Connected = true
	st := p.snapshotLocked()
	p.mu.Unlock()
	p.notify(st)
}

// handleClose also fires for attempts that never connected; it is the
// signal that ends a connection life, so InitialLoading always falls
// here, whether the life ended with a lost connection or a dial that
// never succeeded.
func (p *Projector) handleClose(epoch uint64) {
	p.mu.Lock()
	if epoch != p.epoch {
		p.mu.Unlock()
		return
	}
	p.state.Connected = false
	p.state.InitialLoading = false
	st := p.snapshotLocked()
	p.mu.Unlock()
	p.notify(st)
}

// handleMessage applies one inbound frame to the projection.  The
// recover boundary turns an internal panic into LastError so a single
// bad push can never take the dashboard down; the connection stays up
// and later frames are processed normally.
func (p *Projector) handleMessage(epoch uint64, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			p.mu.Lock()
			if epoch != p.epoch {
				p.mu.Unlock()
				return
			}
			p.state.LastError = fmt.Sprintf("apply message: %v", r)
			st := p.snapshotLocked()
			p.mu.Unlock()
			p.notify(st)
		}
	}()

	msg := Decode(raw)
	switch msg.Kind {
	case KindInitial:
		p.applyInitial(epoch, msg)
	case KindUpdate:
		p.applyUpdate(epoch, *msg.SeatStatus)
	default:
		log.Printf("liveview: unknown message type: %.200s", raw)
	}
}

// currentLocked reports whether a frame dispatched under epoch may
// still be applied.  Callers hold p.mu, so the answer cannot go stale
// before the apply happens.
func (p *Projector) currentLocked(epoch uint64) bool {
	return epoch == p.epoch && p.eventID != 0
}

// applyInitial replaces the projection wholesale.  Nothing from a
// previous snapshot survives, and any stored error is cleared because
// the view is known-good again.
func (p *Projector) applyInitial(epoch uint64, msg Message) {
	p.mu.Lock()
	if !p.currentLocked(epoch) {
		p.mu.Unlock()
		return
	}
	p.state.Event = msg.Event
	p.state.Location = msg.Location
	p.state.Reservations = msg.Reservations
	p.state.InitialLoading = false
	p.state.LastError = ""
	st := p.snapshotLocked()
	p.mu.Unlock()
	p.notify(st)
}

// applyUpdate rewrites LiveStatus on the reservation holding the
// updated seat.  All other entries are untouched, and an update for a
// seat absent from the projection is a silent no-op: snapshots alone
// decide which reservations exist.
func (p *Projector) applyUpdate(epoch uint64, ss model.SeatStatus) {
	p.mu.Lock()
	if !p.currentLocked(epoch) {
		p.mu.Unlock()
		return
	}
	for i := range p.state.Reservations {
		if p.state.Reservations[i].SeatID == ss.SeatID {
			p.state.Reservations[i].LiveStatus = ss.LiveStatus
		}
	}
	p.state.InitialLoading = false
	st := p.snapshotLocked()
	p.mu.Unlock()
	p.notify(st)
}
