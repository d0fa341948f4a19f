package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSE event names used by /search/stream.
const (
	eventStep     = "step"
	eventReport   = "report"
	eventError    = "error"
	eventComplete = "complete"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter sets the event-stream headers and returns a writer, or an error when
// the response cannot be flushed incrementally.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event with the status the request would have had.
func (s *SSEWriter) WriteError(err error) {
	s.WriteEvent(eventError, map[string]any{ //nolint:errcheck
		"error":  err.Error(),
		"status": HTTPStatus(err),
	})
}

// WriteComplete sends a completion event
func (s *SSEWriter) WriteComplete(runID, outcome string) {
	s.WriteEvent(eventComplete, map[string]string{ //nolint:errcheck
		"run_id":  runID,
		"outcome": outcome,
	})
}
