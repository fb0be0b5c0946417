package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nomis52/reactivities/store"
)

const keepaliveInterval = 30 * time.Second

// EventsHandler streams store state as server-sent events.
// The current state is sent first, then one "state" event per change.
// A slow client skips intermediate states but always receives the latest one.
type EventsHandler struct {
	logger     *slog.Logger
	subscriber Subscriber
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(logger *slog.Logger, subscriber Subscriber) *EventsHandler {
	return &EventsHandler{
		logger:     logger,
		subscriber: subscriber,
	}
}

// ServeHTTP implements http.Handler.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		h.logger.Debug("cannot clear write deadline", "error", err)
	}

	updates := make(chan store.State, 1)
	unsubscribe := h.subscriber.Subscribe(func(state store.State) {
		latest(updates, state)
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	initial := h.subscriber.Snapshot()
	if err := writeEvent(w, rc, initial); err != nil {
		h.logger.Debug("event stream closed", "error", err)
		return
	}
	sent := initial.Version

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case state := <-updates:
			// States queued before the initial snapshot are already covered by it.
			if state.Version <= sent {
				continue
			}
			if err := writeEvent(w, rc, state); err != nil {
				h.logger.Debug("event stream closed", "error", err)
				return
			}
			sent = state.Version
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

// latest puts state in the one-slot channel ch, replacing any unread state.
func latest(ch chan store.State, state store.State) {
	for {
		select {
		case ch <- state:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, state store.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
		return err
	}
	return rc.Flush()
}
