package liveview

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelixHertweck/seatReservation-sub000/internal/model"
)

func TestEndpointURL(t *testing.T) {
	cases := []struct {
		base string
		want string
	}{
		{"http://example.com", "ws://example.com/api/supervisor/liveview/42"},
		{"https://example.com", "wss://example.com/api/supervisor/liveview/42"},
		{"ws://example.com:8080", "ws://example.com:8080/api/supervisor/liveview/42"},
		{"wss://example.com", "wss://example.com/api/supervisor/liveview/42"},
		{"http://example.com/ignored?x=1", "ws://example.com/api/supervisor/liveview/42"},
	}
	for _, tc := range cases {
		got, err := EndpointURL(tc.base, 42)
		require.NoError(t, err, tc.base)
		assert.Equal(t, tc.want, got)
	}

	_, err := EndpointURL("ftp://example.com", 42)
	assert.Error(t, err)
}

// newTestProjector returns a projector watching event 42 without a
// live connection, for injecting frames directly.
func newTestProjector() *Projector {
	p := New("http://example.com", Options{})
	p.eventID = 42
	return p
}

func snapshotRaw() []byte {
	return []byte(`{
		"event": {"id": 42, "name": "Gala"},
		"location": {"id": 5, "name": "Hall A", "seats": [{"id": 10}, {"id": 20}], "markers": []},
		"reservations": [
			{"id": 1, "seatId": 10, "status": "RESERVED", "liveStatus": "NO_SHOW"},
			{"id": 2, "seatId": 20, "status": "RESERVED", "liveStatus": "NO_SHOW"}
		]
	}`)
}

// A second snapshot replaces the projection wholesale; nothing from
// the first survives.
func TestSnapshotReplacesNeverMerges(t *testing.T) {
	p := newTestProjector()
	p.handleMessage(0, snapshotRaw())

	second := []byte(`{
		"event": {"id": 43, "name": "Matinee"},
		"location": {"id": 6, "name": "Hall B", "seats": [{"id": 30}], "markers": []},
		"reservations": [{"id": 9, "seatId": 30, "status": "RESERVED", "liveStatus": "CHECKED_IN"}]
	}`)
	p.handleMessage(0, second)

	st := p.State()
	require.NotNil(t, st.Event)
	assert.Equal(t, uint64(43), st.Event.ID)
	assert.Equal(t, "Hall B", st.Location.Name)
	require.Len(t, st.Reservations, 1)
	assert.Equal(t, uint64(9), st.Reservations[0].ID)
}

// An update rewrites the live status of the matching seat only.
func TestUpdateIsSeatScoped(t *testing.T) {
	p := newTestProjector()
	p.handleMessage(0, snapshotRaw())
	before := p.State()

	p.handleMessage(0, []byte(`{"seatStatus": {"seatId": 10, "liveStatus": "CHECKED_IN"}}`))

	st := p.State()
	require.Len(t, st.Reservations, 2)
	assert.Equal(t, model.LiveStatusCheckedIn, st.Reservations[0].LiveStatus)
	// The non-matching entry is untouched in every field.
	assert.Equal(t, before.Reservations[1], st.Reservations[1])
}

// An update for a seat absent from the projection is a silent no-op.
func TestUpdateUnknownSeatIsNoOp(t *testing.T) {
	p := newTestProjector()
	p.handleMessage(0, snapshotRaw())
	before := p.State()

	p.handleMessage(0, []byte(`{"seatStatus": {"seatId": 999, "liveStatus": "CHECKED_IN"}}`))

	st := p.State()
	assert.Equal(t, before.Reservations, st.Reservations)
	assert.Empty(t, st.LastError)
}

// Malformed payloads never alter the projection and never panic.
func TestMalformedPayloadTolerance(t *testing.T) {
	p := newTestProjector()
	p.handleMessage(0, snapshotRaw())
	before := p.State()

	assert.NotPanics(t, func() {
		p.handleMessage(0, []byte("totally not json"))
		p.handleMessage(0, []byte(`{"neither": "shape"}`))
		p.handleMessage(0, nil)
	})

	st := p.State()
	assert.Equal(t, before.Event, st.Event)
	assert.Equal(t, before.Location, st.Location)
	assert.Equal(t, before.Reservations, st.Reservations)
}

// A snapshot clears a previously stored error.
func TestSnapshotClearsError(t *testing.T) {
	p := newTestProjector()
	p.mu.Lock()
	p.state.LastError = "stale failure"
	p.mu.Unlock()

	p.handleMessage(0, snapshotRaw())
	assert.Empty(t, p.State().LastError)
}

// Watching event id zero never opens a connection.
func TestIdleOnZeroEventID(t *testing.T) {
	requests := make(chan struct{}, 4)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- struct{}{}
	}))
	defer ts.Close()

	p := New(ts.URL, Options{})
	defer p.Stop()
	p.Watch(0)

	select {
	case <-requests:
		t.Fatal("projector opened a connection for event id zero")
	case <-time.After(100 * time.Millisecond):
	}
	st := p.State()
	assert.False(t, st.Connected)
	assert.False(t, st.Connecting)
	assert.False(t, st.InitialLoading)
}

// liveViewServer hosts the supervisor stream for the end-to-end
// scenario: one snapshot on connect, then whatever the test queues.
type liveViewServer struct {
	ts    *httptest.Server
	paths chan string
	send  chan any
}

func newLiveViewServer(t *testing.T) *liveViewServer {
	t.Helper()
	s := &liveViewServer{
		paths: make(chan string, 4),
		send:  make(chan any, 16),
	}
	up := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	s.ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.paths <- r.URL.Path
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for msg := range s.send {
			var werr error
			if raw, ok := msg.([]byte); ok {
				werr = conn.WriteMessage(websocket.TextMessage, raw)
			} else {
				werr = conn.WriteJSON(msg)
			}
			if werr != nil {
				return
			}
		}
	}))
	t.Cleanup(s.ts.Close)
	return s
}

func waitForState(t *testing.T, states chan State, what string, ok func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-states:
			if ok(st) {
				return st
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

// End-to-end: select event 42, receive the snapshot, then a check-in
// update, over a real WebSocket connection.
func TestScenarioLiveViewStream(t *testing.T) {
	srv := newLiveViewServer(t)
	states := make(chan State, 64)
	p := New(srv.ts.URL, Options{OnChange: func(st State) { states <- st }})
	defer p.Stop()

	p.Watch(42)

	select {
	case path := <-srv.paths:
		assert.Equal(t, "/api/supervisor/liveview/42", path)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connection")
	}

	st := waitForState(t, states, "connection", func(st State) bool { return st.Connected })
	assert.True(t, st.InitialLoading)

	srv.send <- InitialMessage{
		Event:    &model.Event{ID: 42, Name: "Gala"},
		Location: &model.Location{ID: 5, Name: "Hall A", Seats: []model.Seat{{ID: 10}}, Markers: []model.Marker{}},
		Reservations: []model.Reservation{
			{ID: 1, SeatID: 10, Status: model.StatusReserved, LiveStatus: model.LiveStatusNoShow},
		},
	}
	st = waitForState(t, states, "snapshot", func(st State) bool { return st.Location != nil })
	assert.False(t, st.InitialLoading)
	assert.Equal(t, "Hall A", st.Location.Name)
	require.Len(t, st.Reservations, 1)
	assert.Equal(t, model.LiveStatusNoShow, st.Reservations[0].LiveStatus)

	srv.send <- UpdateMessage{SeatStatus: model.SeatStatus{SeatID: 10, LiveStatus: model.LiveStatusCheckedIn}}
	st = waitForState(t, states, "update", func(st State) bool {
		return len(st.Reservations) == 1 && st.Reservations[0].LiveStatus == model.LiveStatusCheckedIn
	})
	assert.Equal(t, uint64(1), st.Reservations[0].ID)

	close(srv.send)
}

// Stop discards the projection and State snapshots are isolated from
// later updates.
func TestStopResetsAndSnapshotsAreIsolated(t *testing.T) {
	p := newTestProjector()
	p.handleMessage(0, snapshotRaw())

	snap := p.State()
	p.handleMessage(0, []byte(`{"seatStatus": {"seatId": 10, "liveStatus": "CHECKED_IN"}}`))
	// The copy taken before the update must not change under it.
	assert.Equal(t, model.LiveStatusNoShow, snap.Reservations[0].LiveStatus)

	p.Stop()
	st := p.State()
	assert.Nil(t, st.Event)
	assert.Nil(t, st.Location)
	assert.Empty(t, st.Reservations)
}

// When the server is unreachable from the start, exhausting the retry
// budget leaves the projector settled: not connected, not connecting,
// and not stuck in initial loading.
func TestInitialLoadingClearsWhenServerUnreachable(t *testing.T) {
	// A closed server leaves a port that refuses every dial.
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := ts.URL
	ts.Close()

	p := New(base, Options{MaxReconnectAttempts: 1, ReconnectDelay: 10 * time.Millisecond})
	defer p.Stop()
	p.Watch(42)

	deadline := time.After(2 * time.Second)
	for {
		st := p.State()
		if !st.Connected && !st.Connecting && !st.InitialLoading {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("projector never settled, state %+v", st)
		case <-time.After(10 * time.Millisecond):
		}
	}

	// The settled state must hold once retries are spent.
	time.Sleep(100 * time.Millisecond)
	st := p.State()
	assert.False(t, st.Connected)
	assert.False(t, st.Connecting)
	assert.False(t, st.InitialLoading)
}

// Frames dispatched under a superseded epoch are dropped, whether the
// projector was stopped or switched to another event in between.
func TestSupersededConnectionFramesAreDropped(t *testing.T) {
	p := newTestProjector()
	p.handleMessage(0, snapshotRaw())
	require.NotNil(t, p.State().Location)

	// Switching events advances the epoch and resets the projection.
	p.mu.Lock()
	p.epoch++
	p.eventID = 43
	p.state = State{}
	p.mu.Unlock()

	p.handleMessage(0, []byte(`{"seatStatus": {"seatId": 10, "liveStatus": "CHECKED_IN"}}`))
	p.handleMessage(0, snapshotRaw())

	st := p.State()
	assert.Nil(t, st.Event)
	assert.Nil(t, st.Location)
	assert.Empty(t, st.Reservations)

	// The same holds after Stop.
	p.Stop()
	p.handleMessage(p.epoch, snapshotRaw())
	assert.Nil(t, p.State().Location)
}
