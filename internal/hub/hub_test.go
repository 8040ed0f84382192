package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FelixHertweck/seatReservation-sub000/internal/model"
)

func TestBroadcastReachesEventSubscribersOnly(t *testing.T) {
	h := New(nil)
	forty := h.Subscribe(40)
	fortyTwo := h.Subscribe(42)
	defer h.Unsubscribe(40, forty)
	defer h.Unsubscribe(42, fortyTwo)

	ss := model.SeatStatus{SeatID: 10, LiveStatus: model.LiveStatusCheckedIn, ReservationID: 1}
	h.Broadcast(context.Background(), 42, ss)

	select {
	case got := <-fortyTwo:
		assert.Equal(t, ss, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
	select {
	case got := <-forty:
		t.Fatalf("subscriber of another event received %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastFansOutToAllSubscribers(t *testing.T) {
	h := New(nil)
	a := h.Subscribe(1)
	b := h.Subscribe(1)
	defer h.Unsubscribe(1, a)
	defer h.Unsubscribe(1, b)

	h.Broadcast(context.Background(), 1, model.SeatStatus{SeatID: 5, LiveStatus: model.LiveStatusCancelled})
	for _, ch := range []chan model.SeatStatus{a, b} {
		select {
		case got := <-ch:
			assert.Equal(t, uint64(5), got.SeatID)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for update")
		}
	}
}

func TestUnsubscribeClosesChannelAndIsIdempotent(t *testing.T) {
	h := New(nil)
	ch := h.Subscribe(7)
	h.Unsubscribe(7, ch)
	_, open := <-ch
	assert.False(t, open)
	// A second unsubscribe of the same channel must not panic.
	assert.NotPanics(t, func() { h.Unsubscribe(7, ch) })
}

// A lagging subscriber loses updates instead of blocking Broadcast.
func TestLaggingSubscriberDropsUpdates(t *testing.T) {
	h := New(nil)
	ch := h.Subscribe(3)
	defer h.Unsubscribe(3, ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2*cap(ch); i++ {
			h.Broadcast(context.Background(), 3, model.SeatStatus{SeatID: uint64(i + 1)})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full subscriber channel")
	}
	// The buffer holds the first updates; the overflow was dropped.
	require.Equal(t, cap(ch), len(ch))
	first := <-ch
	assert.Equal(t, uint64(1), first.SeatID)
}
