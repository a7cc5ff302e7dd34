package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/go_pharmacy/internal/domain"
	"github.com/fjod/go_pharmacy/internal/events"
	"github.com/fjod/go_pharmacy/internal/logger"
)

// EventsHandler streams the session's semantic events as server-sent events. Clients that
// fall behind lose events rather than slowing the cart down. Streams end when done is closed.
type EventsHandler struct {
	log       *logger.Logger
	heartbeat time.Duration
	buffer    int
	done      <-chan struct{}
}

func NewEventsHandler(log *logger.Logger, done <-chan struct{}) *EventsHandler {
	return &EventsHandler{
		log:       log.With("component", "sse"),
		heartbeat: 15 * time.Second,
		buffer:    32,
		done:      done,
	}
}

func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, r, http.StatusInternalServerError, "streaming_unsupported", "streaming unsupported")
		return
	}

	outbound := make(chan domain.Event, h.buffer)
	unsubscribe := sess.Bus.Subscribe(events.SinkFunc(func(e domain.Event) {
		select {
		case outbound <- e:
		default:
			h.log.Warn("dropping SSE event; outbound buffer full", "session_id", e.SessionID, "type", string(e.Type))
		}
	}))
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			_, _ = fmt.Fprint(w, ": server shutting down\n\n")
			flusher.Flush()
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case e := <-outbound:
			data, err := json.Marshal(e)
			if err != nil {
				h.log.Warn("failed to marshal SSE event", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Type, data)
			flusher.Flush()
		}
	}
}
