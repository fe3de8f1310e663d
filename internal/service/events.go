package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	// Dream events
	EventDreamUpserted EventType = "dream.upserted"

	// Auth state events
	EventSignedIn  EventType = "auth.signed_in"
	EventSignedOut EventType = "auth.signed_out"
	EventDeleted   EventType = "auth.deleted"

	// Reminder events
	EventReminder EventType = "reminder"

	// System events
	EventHeartbeat EventType = "heartbeat"
)

// Event represents a server-sent event
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// Format returns the SSE formatted string
func (e *Event) Format() string {
	data, _ := json.Marshal(e.Data)
	return "event: " + string(e.Type) + "\ndata: " + string(data) + "\n\n"
}

// Subscriber represents a connected SSE client
type Subscriber struct {
	ID     string
	UserID string
	Events chan *Event
	Done   chan struct{}
}

// EventHub fans events out to the connected clients of each user
type EventHub struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]*Subscriber // userID -> subscriberID -> subscriber
	heartbeat   *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

// NewEventHub creates a new event hub
func NewEventHub() *EventHub {
	return newEventHub(30 * time.Second)
}

func newEventHub(heartbeatEvery time.Duration) *EventHub {
	hub := &EventHub{
		subscribers: make(map[string]map[string]*Subscriber),
		heartbeat:   time.NewTicker(heartbeatEvery),
		done:        make(chan struct{}),
	}
	go hub.sendHeartbeats()
	return hub
}

// SubscribeUser adds a new subscriber for a user
func (h *EventHub) SubscribeUser(userID, subscriberID string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &Subscriber{
		ID:     subscriberID,
		UserID: userID,
		Events: make(chan *Event, 100), // Buffer to prevent blocking
		Done:   make(chan struct{}),
	}

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[string]*Subscriber)
	}
	h.subscribers[userID][subscriberID] = sub

	return sub
}

// UnsubscribeUser removes a user subscriber
func (h *EventHub) UnsubscribeUser(userID, subscriberID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userSubs, ok := h.subscribers[userID]; ok {
		if sub, ok := userSubs[subscriberID]; ok {
			close(sub.Done)
			close(sub.Events)
			delete(userSubs, subscriberID)
		}
		if len(userSubs) == 0 {
			delete(h.subscribers, userID)
		}
	}
}

// SendToUser sends an event to all subscribers of a user
func (h *EventHub) SendToUser(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers[userID] {
		select {
		case sub.Events <- &event:
		default:
			// Buffer full, skip this subscriber
		}
	}
}

// OnAuthStateChange forwards auth transitions to the principal's clients
func (h *EventHub) OnAuthStateChange(ctx context.Context, change AuthStateChange) {
	if change.PrincipalID == "" {
		return
	}
	var eventType EventType
	switch change.Event {
	case AuthSignedIn:
		eventType = EventSignedIn
	case AuthSignedOut:
		eventType = EventSignedOut
	case AuthDeleted:
		eventType = EventDeleted
	default:
		return
	}
	h.SendToUser(change.PrincipalID, Event{
		Type: eventType,
		Data: map[string]string{"principal_id": change.PrincipalID},
	})
}

// SubscriberCount returns the number of subscribers of a user
func (h *EventHub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

func (h *EventHub) sendHeartbeats() {
	for {
		select {
		case <-h.heartbeat.C:
			event := &Event{
				Type: EventHeartbeat,
				Data: map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				},
			}
			h.mu.RLock()
			for _, userSubs := range h.subscribers {
				for _, sub := range userSubs {
					select {
					case sub.Events <- event:
					default:
					}
				}
			}
			h.mu.RUnlock()
		case <-h.done:
			return
		}
	}
}

// Close stops the heartbeat and disconnects every subscriber
func (h *EventHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.heartbeat.Stop()

		h.mu.Lock()
		defer h.mu.Unlock()

		for userID, userSubs := range h.subscribers {
			for _, sub := range userSubs {
				close(sub.Done)
				close(sub.Events)
			}
			delete(h.subscribers, userID)
		}
	})
}
