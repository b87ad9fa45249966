package events

import (
	"testing"
	"time"
)

func recvTimeout(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHub_NotifyUser_RoutesByUser(t *testing.T) {
	h := NewHub(4)
	defer h.Close()

	chA, cancelA := h.Subscribe("a")
	defer cancelA()
	chB, cancelB := h.Subscribe("b")
	defer cancelB()

	h.NotifyUser("a", Event{Name: EventNotification, Payload: "hello"})

	ev := recvTimeout(t, chA)
	if ev.Name != EventNotification || ev.Payload != "hello" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	select {
	case ev := <-chB:
		t.Fatalf("b should not receive a's event: %+v", ev)
	default:
	}
}

func TestHub_Broadcast_ReachesEveryone(t *testing.T) {
	h := NewHub(4)
	defer h.Close()

	chA, cancelA := h.Subscribe("a")
	defer cancelA()
	chB, cancelB := h.Subscribe("b")
	defer cancelB()

	h.RoomsChanged()

	if ev := recvTimeout(t, chA); ev.Name != EventRoomsChanged {
		t.Fatalf("a got %+v", ev)
	}
	if ev := recvTimeout(t, chB); ev.Name != EventRoomsChanged {
		t.Fatalf("b got %+v", ev)
	}
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(1)
	defer h.Close()

	_, cancel := h.Subscribe("a")
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Buffer is 1: the second send must not block.
		h.NotifyUser("a", Event{Name: EventNotification})
		h.NotifyUser("a", Event{Name: EventNotification})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send blocked on a slow subscriber")
	}
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	h := NewHub(1)
	defer h.Close()

	_, cancel := h.Subscribe("a")
	cancel()
	cancel() // must not panic

	if h.Len() != 0 {
		t.Fatalf("expected no subscribers, got %d", h.Len())
	}
}

func TestHub_CloseClosesSubscribers(t *testing.T) {
	h := NewHub(1)
	ch, _ := h.Subscribe("a")
	h.Close()
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after hub close")
	}
	// Subscribing after close hands back a closed channel.
	ch2, _ := h.Subscribe("b")
	if _, ok := <-ch2; ok {
		t.Fatal("expected closed channel for post-close subscribe")
	}
}
