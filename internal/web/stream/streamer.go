// Package stream writes Server-Sent Events.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Streamer writes events to a response and flushes after each one
type Streamer struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// Event is a single Server-Sent Event
type Event struct {
	ID    string
	Event string
	Data  string
	// Retry is the reconnection delay in milliseconds the client should use
	Retry int
}

// NewSSE starts an event stream on w. It fails when the writer cannot flush;
// the response headers are sent either way.
func NewSSE(w http.ResponseWriter) (*Streamer, error) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	s := &Streamer{w: w, rc: http.NewResponseController(w)}
	if err := s.flush(); err != nil {
		return nil, fmt.Errorf("streaming not supported: %w", err)
	}
	return s, nil
}

// WriteEvent writes one event. Multi-line data is split over several data fields.
func (s *Streamer) WriteEvent(event Event) error {
	var b strings.Builder
	if event.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", event.ID)
	}
	if event.Event != "" {
		fmt.Fprintf(&b, "event: %s\n", event.Event)
	}
	if event.Retry > 0 {
		fmt.Fprintf(&b, "retry: %d\n", event.Retry)
	}
	for _, line := range strings.Split(event.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")

	if _, err := s.w.Write([]byte(b.String())); err != nil {
		return err
	}
	return s.flush()
}

// WriteJSON writes an event whose data is v encoded as JSON
func (s *Streamer) WriteJSON(id, event string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return s.WriteEvent(Event{ID: id, Event: event, Data: string(data)})
}

// Comment writes a comment line, which clients ignore; used as keep-alive
func (s *Streamer) Comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	return s.flush()
}

func (s *Streamer) flush() error {
	return s.rc.Flush()
}
