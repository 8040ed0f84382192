// Command liveview is a terminal watcher for one event's seat
// occupancy: it connects to the supervisor live-view stream and
// prints every occupancy transition until interrupted.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/FelixHertweck/seatReservation-sub000/internal/liveview"
	"github.com/FelixHertweck/seatReservation-sub000/internal/model"
)

func main() {
	if err := mainInner(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInner() error {
	serverVar := flag.String("server", "http://127.0.0.1:8080", "base URL of the live-view server")
	eventVar := flag.Uint64("event", 0, "id of the event to watch")
	tokenVar := flag.String("token", os.Getenv("LIVEVIEW_TOKEN"), "supervisor bearer token")
	flag.Parse()

	if *eventVar == 0 {
		return fmt.Errorf("missing -event id")
	}

	header := http.Header{}
	if *tokenVar != "" {
		header.Set("Authorization", "Bearer "+*tokenVar)
	}

	w := &watcher{seen: make(map[uint64]string)}
	p := liveview.New(*serverVar, liveview.Options{
		RequestHeader: header,
		OnChange:      w.report,
	})
	p.Watch(*eventVar)
	defer p.Stop()

	exit := make(chan os.Signal, 1) // buffer size 1 so the notifier is not blocked
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-exit
	slog.Info("signal caught", "sig", sig)
	return nil
}

// watcher turns successive projector states into log lines: one per
// connection transition, one per snapshot, one per seat whose live
// status changed.
type watcher struct {
	mu        sync.Mutex
	connected bool
	loaded    bool
	lastErr   string
	seen      map[uint64]string // reservation id -> last reported live status
}

func (w *watcher) report(st liveview.State) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if st.Connected != w.connected {
		w.connected = st.Connected
		if st.Connected {
			slog.Info("connected")
		} else {
			slog.Info("disconnected")
			w.loaded = false
		}
	}
	if st.LastError != "" && st.LastError != w.lastErr {
		slog.Error("stream error", "err", st.LastError)
	}
	w.lastErr = st.LastError

	if st.Event == nil || st.Location == nil {
		return
	}
	if !w.loaded {
		w.loaded = true
		w.seen = make(map[uint64]string, len(st.Reservations))
		for _, r := range st.Reservations {
			w.seen[r.ID] = r.LiveStatus
		}
		slog.Info("snapshot",
			"event", st.Event.Name,
			"location", st.Location.Name,
			"seats", len(st.Location.Seats),
			"reservations", len(st.Reservations),
			"checkedIn", countStatus(st.Reservations, model.LiveStatusCheckedIn))
		return
	}
	for _, r := range st.Reservations {
		if prev, ok := w.seen[r.ID]; ok && prev != r.LiveStatus {
			slog.Info("seat status changed",
				"reservation", r.ID, "seat", r.SeatID,
				"from", prev, "to", r.LiveStatus)
		}
		w.seen[r.ID] = r.LiveStatus
	}
}

func countStatus(reservations []model.Reservation, status string) int {
	n := 0
	for _, r := range reservations {
		if r.LiveStatus == status {
			n++
		}
	}
	return n
}
