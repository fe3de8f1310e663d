package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/forgo/manifestor/api/internal/model"
	"github.com/forgo/manifestor/api/internal/service"
	"github.com/google/uuid"
)

// EventStreams subscribes clients to a user's events
type EventStreams interface {
	SubscribeUser(userID, subscriberID string) *service.Subscriber
	UnsubscribeUser(userID, subscriberID string)
}

// EventsHandler handles SSE event streaming
type EventsHandler struct {
	hub EventStreams
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hub EventStreams) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream handles GET /v1/events/stream. It carries dream upserts, auth
// state changes and reminders for the signed-in user.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, model.NewInternalError("streaming not supported"))
		return
	}

	// The server write timeout would cut the stream; lift it for this response
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	subscriberID := uuid.New().String()
	sub := h.hub.SubscribeUser(principal.ID, subscriberID)
	defer h.hub.UnsubscribeUser(principal.ID, subscriberID)

	fmt.Fprintf(w, "event: connected\ndata: {\"subscriber_id\":\"%s\"}\n\n", subscriberID)
	flusher.Flush()

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			fmt.Fprint(w, event.Format())
			flusher.Flush()

		case <-sub.Done:
			return

		case <-r.Context().Done():
			return
		}
	}
}
