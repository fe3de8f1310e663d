package service

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestEvent_Format(t *testing.T) {
	t.Parallel()

	e := &Event{Type: EventReminder, Data: map[string]string{"time": "19:00"}}
	got := e.Format()
	want := "event: reminder\ndata: {\"time\":\"19:00\"}\n\n"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestEventHub_SendToUserReachesOnlyThatUser(t *testing.T) {
	t.Parallel()

	hub := newEventHub(time.Hour)
	defer hub.Close()

	ada := hub.SubscribeUser("account:ada", "tab-1")
	adaPhone := hub.SubscribeUser("account:ada", "phone")
	grace := hub.SubscribeUser("account:grace", "tab-1")

	hub.SendToUser("account:ada", Event{Type: EventDreamUpserted, Data: "dream:1"})

	for _, sub := range []*Subscriber{ada, adaPhone} {
		select {
		case e := <-sub.Events:
			if e.Type != EventDreamUpserted {
				t.Errorf("got %s", e.Type)
			}
		default:
			t.Errorf("subscriber %s got nothing", sub.ID)
		}
	}
	select {
	case e := <-grace.Events:
		t.Errorf("other user received %s", e.Type)
	default:
	}
}

func TestEventHub_UnsubscribeClosesChannels(t *testing.T) {
	t.Parallel()

	hub := newEventHub(time.Hour)
	defer hub.Close()

	sub := hub.SubscribeUser("account:ada", "tab-1")
	if hub.SubscriberCount("account:ada") != 1 {
		t.Fatal("expected one subscriber")
	}

	hub.UnsubscribeUser("account:ada", "tab-1")
	if _, ok := <-sub.Done; ok {
		t.Error("Done should be closed")
	}
	if hub.SubscriberCount("account:ada") != 0 {
		t.Error("expected no subscribers")
	}

	// sending to a user without subscribers is a no-op
	hub.SendToUser("account:ada", Event{Type: EventReminder})
}

func TestEventHub_Heartbeat(t *testing.T) {
	t.Parallel()

	hub := newEventHub(10 * time.Millisecond)
	defer hub.Close()
	sub := hub.SubscribeUser("account:ada", "tab-1")

	select {
	case e := <-sub.Events:
		if e.Type != EventHeartbeat || !strings.Contains(e.Format(), "timestamp") {
			t.Errorf("unexpected event %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no heartbeat")
	}
}

func TestEventHub_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	hub := newEventHub(time.Hour)
	sub := hub.SubscribeUser("account:ada", "tab-1")
	hub.Close()
	hub.Close()

	if _, ok := <-sub.Events; ok {
		t.Error("Events should be closed")
	}
}

func TestEventHub_OnAuthStateChange(t *testing.T) {
	t.Parallel()

	hub := newEventHub(time.Hour)
	defer hub.Close()
	sub := hub.SubscribeUser("account:ada", "tab-1")

	hub.OnAuthStateChange(context.Background(), AuthStateChange{Event: AuthSignedOut, PrincipalID: "account:ada"})
	hub.OnAuthStateChange(context.Background(), AuthStateChange{Event: AuthDeleted})

	select {
	case e := <-sub.Events:
		if e.Type != EventSignedOut {
			t.Errorf("got %s, want %s", e.Type, EventSignedOut)
		}
	default:
		t.Fatal("expected a sign-out event")
	}
	select {
	case e := <-sub.Events:
		t.Errorf("change without principal produced %s", e.Type)
	default:
	}
}
