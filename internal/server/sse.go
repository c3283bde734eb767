package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/event"
	"github.com/jamesk9526/LTX-Prompt-Creator-sub000/internal/logging"
)

// StreamEvent is the envelope streamed to SSE and WebSocket clients:
// {"type": "...", "properties": {...}}.
type StreamEvent struct {
	Type       event.EventType `json:"type"`
	Properties any             `json:"properties"`
}

const (
	// SSEHeartbeatInterval is the interval for SSE heartbeats.
	SSEHeartbeatInterval = 30 * time.Second

	// eventBuffer is the per-client queue; events beyond it are dropped.
	eventBuffer = 32
)

// sseWriter wraps http.ResponseWriter for SSE.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	rc      *http.ResponseController
}

// newSSEWriter creates a new SSE writer.
func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	rc := http.NewResponseController(w)

	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	return &sseWriter{w: w, flusher: flusher, rc: rc}, nil
}

// writeEvent writes one SSE event and flushes it.
func (s *sseWriter) writeEvent(eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", eventType, jsonData)
	if err != nil {
		return err
	}

	// ResponseController sees through middleware wrappers
	if flushErr := s.rc.Flush(); flushErr != nil {
		s.flusher.Flush()
	}

	return nil
}

// writeHeartbeat writes an SSE heartbeat comment.
func (s *sseWriter) writeHeartbeat() {
	fmt.Fprintf(s.w, ": heartbeat\n\n")
	s.flusher.Flush()
}

// subscribe queues every bus event for one streaming client. The returned
// function unsubscribes.
func (srv *Server) subscribe(client string) (<-chan event.Event, func()) {
	events := make(chan event.Event, eventBuffer)
	unsub := srv.bus.SubscribeAll(func(e event.Event) {
		select {
		case events <- e:
		default:
			logging.Warn().
				Str("eventType", string(e.Type)).
				Str("client", client).
				Msg("event dropped: channel full")
		}
	})
	return events, unsub
}

// allEvents handles GET /event, streaming every bus event.
func (srv *Server) allEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	sse.flusher.Flush()

	events, unsub := srv.subscribe("sse")
	defer unsub()

	connected := StreamEvent{
		Type:       "server.connected",
		Properties: map[string]any{"session": srv.service.SessionID()},
	}
	if err := sse.writeEvent("message", connected); err != nil {
		return
	}

	ticker := time.NewTicker(SSEHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-events:
			if err := sse.writeEvent("message", StreamEvent{Type: e.Type, Properties: e.Data}); err != nil {
				return
			}
		case <-ticker.C:
			sse.writeHeartbeat()
		}
	}
}
