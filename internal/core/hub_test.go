package core

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/vovakirdan/campuschat-server/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	select {
	case ev, ok := <-ch:
		if !ok {
			t.Fatalf("events channel closed, expected %v", kind)
		}
		if ev.Kind != kind {
			t.Fatalf("expected event %v, got %v", kind, ev.Kind)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("expected event kind %v not received", kind)
	}
	return nil
}

func runHub(t *testing.T) (*Hub, context.CancelFunc, <-chan struct{}) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	return hub, cancel, stopped
}

func TestHubDeliversOnlyToSubscribedUser(t *testing.T) {
	hub, cancel, stopped := runHub(t)
	defer func() { cancel(); <-stopped }()

	alice := NewClient("a", 1)
	bob := NewClient("b", 2)
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	msg := &store.Message{ID: 7, SenderID: 1, ReceiverID: 2, Body: "hi"}
	hub.Publish(2, &Event{Kind: EventMessageReceived, Message: msg, Unread: 1})

	ev := mustEvent(t, bob.Events, EventMessageReceived)
	if ev.Message.ID != 7 || ev.Unread != 1 {
		t.Fatalf("unexpected event: %+v", ev)
	}

	select {
	case ev := <-alice.Events:
		t.Fatalf("alice should not receive bob's event: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubFansOutToEveryClientOfUser(t *testing.T) {
	hub, cancel, stopped := runHub(t)
	defer func() { cancel(); <-stopped }()

	tab1 := NewClient("t1", 5)
	tab2 := NewClient("t2", 5)
	hub.RegisterClient(tab1)
	hub.RegisterClient(tab2)

	hub.Publish(5, &Event{Kind: EventUnreadSnapshot, Unread: 3})

	mustEvent(t, tab1.Events, EventUnreadSnapshot)
	mustEvent(t, tab2.Events, EventUnreadSnapshot)
}

func TestHubUnregisterClosesEvents(t *testing.T) {
	hub, cancel, stopped := runHub(t)
	defer func() { cancel(); <-stopped }()

	c := NewClient("c", 9)
	hub.RegisterClient(c)
	hub.UnregisterClient(c)

	select {
	case _, ok := <-c.Events:
		if ok {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("events channel was not closed")
	}
}

func TestHubShutdownClosesClientsAndIgnoresLatePublish(t *testing.T) {
	hub, cancel, stopped := runHub(t)

	c := NewClient("c", 3)
	hub.RegisterClient(c)

	cancel()
	<-stopped

	if _, ok := <-c.Events; ok {
		t.Fatalf("expected events channel closed on shutdown")
	}

	// Must not block or panic after the hub stopped.
	hub.Publish(3, &Event{Kind: EventUnreadSnapshot})
	hub.UnregisterClient(c)

	late := NewClient("late", 3)
	hub.RegisterClient(late)
	if _, ok := <-late.Events; ok {
		t.Fatalf("expected late client to be closed immediately")
	}
}
