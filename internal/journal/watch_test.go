package journal

import (
	"context"
	"testing"
	"time"
)

func TestWatchSeesNewEntries(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	addEntry(t, s, "user-1", "Watched", "", "", time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))

	select {
	case _, ok := <-events:
		if !ok {
			t.Fatalf("event channel closed early")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no event after write")
	}

	cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return // closed as promised
			}
		case <-deadline:
			t.Fatalf("channel not closed after cancel")
		}
	}
}

func TestThrottleCoalescesBursts(t *testing.T) {
	throttle := newEventThrottle(10 * time.Millisecond)
	defer throttle.Stop()

	got := make(chan Event, 16)
	send := func(ev Event) { got <- ev }

	for i := 0; i < 25; i++ {
		throttle.Enqueue(Event{Type: EventMonthChanged, Month: "2026-08"}, send)
	}
	throttle.Enqueue(Event{Type: EventMonthChanged, Month: "2026-07"}, send)

	time.Sleep(50 * time.Millisecond)
	close(got)

	months := map[string]int{}
	for ev := range got {
		if ev.Type != EventMonthChanged {
			t.Fatalf("event type = %v", ev.Type)
		}
		months[ev.Month]++
	}
	if months["2026-08"] != 1 || months["2026-07"] != 1 {
		t.Fatalf("burst not coalesced: %v", months)
	}
}
