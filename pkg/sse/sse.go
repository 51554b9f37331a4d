// Package sse writes Server-Sent Events for clients that cannot hold a
// websocket open, such as an EventSource behind a proxy.
//
//	stream, err := sse.New(w, r)
//	if err != nil { return }
//	stream.Relay(r.Context(), "status", events, 25*time.Second)
package sse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnsupported is returned when the writer chain cannot flush.
var ErrUnsupported = errors.New("sse: streaming unsupported")

// Stream is one open event stream.
type Stream struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// New sets the event-stream headers and flushes them.
func New(w http.ResponseWriter, r *http.Request) (*Stream, error) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	return &Stream{w: w, rc: rc}, nil
}

// Send writes a named event whose data is an already-encoded JSON payload.
func (s *Stream) Send(event string, data []byte) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Comment writes a comment line; clients ignore it.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Relay forwards every payload from ch as event until ctx ends or ch is
// closed, writing a keepalive comment every heartbeat.
func (s *Stream) Relay(ctx context.Context, event string, ch <-chan []byte, heartbeat time.Duration) error {
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := s.Send(event, msg); err != nil {
				return err
			}
		case <-ticker.C:
			if err := s.Comment("keepalive"); err != nil {
				return err
			}
		}
	}
}
