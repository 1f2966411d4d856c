// Package sse streams hub messages to browsers as Server-Sent Events, for
// dashboards that cannot hold a WebSocket open.
//
//	router.Get("/sse/pharmacy/{name}", "sse.pharmacy", func(w http.ResponseWriter, r *http.Request) {
//	    msgs, leave := hub.Subscribe(chi.URLParam(r, "name"))
//	    defer leave()
//	    sse.Pipe(w, r, msgs)
//	})
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Heartbeat is how often an idle stream sends a keepalive comment.
var Heartbeat = 25 * time.Second

var ErrUnsupported = errors.New("sse: response writer cannot flush")

// Stream is an open event stream to one client.
type Stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// New sets the event-stream headers and commits the response.
func New(w http.ResponseWriter) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrUnsupported
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // nginx
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &Stream{w: w, flusher: flusher}, nil
}

// Send writes one named event. data must be a single line of JSON.
func (s *Stream) Send(name string, data []byte) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Comment writes a comment line, which clients ignore.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Pipe forwards msgs until the client goes away or msgs is closed. Each
// message is a JSON event and is named after its "type" field.
func Pipe(w http.ResponseWriter, r *http.Request, msgs <-chan []byte) error {
	s, err := New(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return err
	}

	tick := time.NewTicker(Heartbeat)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := s.Send(eventName(msg), msg); err != nil {
				return err
			}
		case <-tick.C:
			if err := s.Comment("ping"); err != nil {
				return err
			}
		}
	}
}

func eventName(msg []byte) string {
	var head struct {
		Type string `json:"type"`
	}
	if json.Unmarshal(msg, &head) != nil || head.Type == "" {
		return "message"
	}
	return head.Type
}
