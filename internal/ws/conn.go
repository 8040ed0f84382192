// Package ws maintains a single reconnecting WebSocket connection for
// the live-view client.  All failure is communicated through the
// callbacks and the Connected flag; nothing here returns an error the
// caller has to unwrap, because a live dashboard must keep running
// through transport hiccups.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Reconnection defaults.  The delay is constant on purpose: the server
// resends a full snapshot on every new connection, so predictable
// retry timing matters more than backoff growth.
const (
	DefaultMaxReconnectAttempts = 5
	DefaultReconnectDelay       = 3 * time.Second
)

// Options configures a Conn.  All callbacks are optional and are
// invoked from the connection's own goroutines, never from the caller
// of Open/Close/Send.
type Options struct {
	// MaxReconnectAttempts bounds consecutive automatic reconnects
	// after an unexpected close or failed dial.  Zero selects the
	// default; a negative value disables reconnection entirely.
	MaxReconnectAttempts int
	// ReconnectDelay is the fixed wait before each reconnect attempt.
	// Zero or negative selects the default.
	ReconnectDelay time.Duration
	// RequestHeader is sent with every dial, e.g. an Authorization
	// header carrying a supervisor token.
	RequestHeader http.Header
	// OnMessage receives every inbound frame unmodified.  Message
	// classification happens upstream.
	OnMessage func(raw []byte)
	// OnConnecting is invoked with true right before an attempt
	// starts and false once it resolves or the Conn is closed.
	OnConnecting func(connecting bool)
	// OnOpen fires after a successful dial.  OnClose fires after the
	// connection is lost, after an explicit Close, and after a failed
	// dial: an attempt that never connects still ends in a close
	// signal, the same way a browser WebSocket fires its close event.
	OnOpen  func()
	OnClose func()
}

// Conn owns at most one live WebSocket connection and one pending
// reconnect timer.  Every Open and Close bumps a generation counter;
// goroutines and timers started under an older generation detect the
// mismatch and become no-ops, so callbacks from a superseded
// connection can never mutate current state.
type Conn struct {
	opts Options

	// writeMu serializes outbound frames; gorilla/websocket allows
	// only one concurrent writer per connection.
	writeMu sync.Mutex

	mu         sync.Mutex
	url        string
	conn       *websocket.Conn
	timer      *time.Timer
	gen        uint64
	attempts   int
	connected  bool
	connecting bool
}

// New returns a Conn in the idle state.  No connection is made until
// Open is called with a non-empty URL.
func New(opts Options) *Conn {
	if opts.MaxReconnectAttempts == 0 {
		opts.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	return &Conn{opts: opts}
}

// Open establishes a connection to url.  Any previous connection or
// pending reconnect is torn down first, so a Conn never holds two
// connections.  An empty url leaves the Conn idle.
func (c *Conn) Open(url string) {
	c.Close()
	if url == "" {
		return
	}
	c.mu.Lock()
	c.url = url
	c.attempts = 0
	gen := c.gen
	c.mu.Unlock()
	go c.dial(gen)
}

// Close idempotently terminates the active connection, cancels any
// pending reconnect attempt and stops further automatic reconnects
// until the next Open.
func (c *Conn) Close() {
	c.mu.Lock()
	c.url = ""
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	wasConnecting := c.connecting
	wasConnected := c.connected
	c.connecting = false
	c.connected = false
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	if wasConnecting && c.opts.OnConnecting != nil {
		c.opts.OnConnecting(false)
	}
	if wasConnected && c.opts.OnClose != nil {
		c.opts.OnClose()
	}
}

// Connected reports whether a connection is currently open.
func (c *Conn) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Send transmits payload on the open connection.  Strings and byte
// slices are sent as-is, anything else is JSON-encoded.  When the
// connection is not open the payload is logged and dropped; Send is
// fire-and-forget and never queues.
func (c *Conn) Send(payload any) {
	var data []byte
	switch v := payload.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			log.Printf("ws: send dropped, cannot encode payload: %v", err)
			return
		}
		data = b
	}

	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()
	if !connected || conn == nil {
		log.Printf("ws: send dropped, not connected")
		return
	}
	c.writeMu.Lock()
	err := conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		log.Printf("ws: send failed: %v", err)
	}
}

// dial performs one connection attempt for the given generation.  A
// failed dial counts as a disconnect and feeds the reconnect policy.
func (c *Conn) dial(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.url == "" {
		c.mu.Unlock()
		return
	}
	url := c.url
	c.connecting = true
	c.mu.Unlock()
	if c.opts.OnConnecting != nil {
		c.opts.OnConnecting(true)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, c.opts.RequestHeader)

	c.mu.Lock()
	if gen != c.gen {
		// Superseded by Close or a newer Open while dialing.
		c.mu.Unlock()
		if err == nil {
			_ = conn.Close()
		}
		return
	}
	c.connecting = false
	if err != nil {
		c.mu.Unlock()
		log.Printf("ws: dial %s failed: %v", url, err)
		if c.opts.OnConnecting != nil {
			c.opts.OnConnecting(false)
		}
		// A dial that never connects still ends the attempt with a
		// close signal, so the caller can leave any loading state.
		if c.opts.OnClose != nil {
			c.opts.OnClose()
		}
		c.scheduleReconnect(gen)
		return
	}
	c.conn = conn
	c.connected = true
	c.attempts = 0
	c.mu.Unlock()

	if c.opts.OnConnecting != nil {
		c.opts.OnConnecting(false)
	}
	if c.opts.OnOpen != nil {
		c.opts.OnOpen()
	}
	go c.readLoop(gen, conn)
}

// readLoop forwards inbound frames until the connection dies.  An
// unexpected close hands control to the reconnect policy; a close
// caused by Close or a newer Open is detected via the generation and
// ignored.
func (c *Conn) readLoop(gen uint64, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if gen != c.gen {
				c.mu.Unlock()
				return
			}
			c.connected = false
			c.conn = nil
			c.mu.Unlock()
			_ = conn.Close()
			log.Printf("ws: connection lost: %v", err)
			if c.opts.OnClose != nil {
				c.opts.OnClose()
			}
			c.scheduleReconnect(gen)
			return
		}

		c.mu.Lock()
		current := gen == c.gen
		c.mu.Unlock()
		if !current {
			return
		}
		if c.opts.OnMessage != nil {
			c.opts.OnMessage(raw)
		}
	}
}

// scheduleReconnect arms the single reconnect timer unless the attempt
// budget is spent.  The counter is incremented before scheduling and
// reset only by a successful open, so consecutive failures walk it up
// to the maximum and then go quiet until the caller opens again.
func (c *Conn) scheduleReconnect(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.url == "" {
		return
	}
	if c.opts.MaxReconnectAttempts < 0 {
		return
	}
	if c.attempts >= c.opts.MaxReconnectAttempts {
		log.Printf("ws: giving up after %d reconnect attempts", c.attempts)
		return
	}
	c.attempts++
	log.Printf("ws: reconnecting in %s (attempt %d/%d)", c.opts.ReconnectDelay, c.attempts, c.opts.MaxReconnectAttempts)
	c.timer = time.AfterFunc(c.opts.ReconnectDelay, func() { c.dial(gen) })
}
