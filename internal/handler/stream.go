package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pkordes/shiftbook/internal/domain"
)

// streamEvent is one server-sent event waiting to be written.
type streamEvent struct {
	name string
	data any
}

// StreamShifts handles GET /shifts/stream. It holds the connection open and
// writes a "snapshot" event with the full record set on subscribe and after
// every change. Store errors become "error" events and do not end the stream.
func (s *Server) StreamShifts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events := make(chan streamEvent)
	send := func(ev streamEvent) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	unsubscribe, err := s.shifts.Subscribe(namespace(r),
		func(set domain.RecordSet) { send(streamEvent{name: "snapshot", data: set}) },
		func(err error) {
			_, detail := serviceErrorBody(err)
			send(streamEvent{name: "error", data: detail})
		},
	)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	defer unsubscribe()

	rc := http.NewResponseController(w)
	// The server's WriteTimeout would otherwise cut the stream.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.log.WarnContext(ctx, "could not clear write deadline for stream", "error", err)
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.log.ErrorContext(ctx, "event stream not supported", "error", err)
		return
	}

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if err := writeEvent(w, ev); err != nil {
				s.log.DebugContext(ctx, "event stream closed", "error", err)
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, ev streamEvent) error {
	data, err := json.Marshal(ev.data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, data)
	return err
}
