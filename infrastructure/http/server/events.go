package server

import (
	"chat-rooms/domain/event"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// sseEmitter writes one `data:` frame per envelope and flushes it.
type sseEmitter struct {
	w  io.Writer
	rc *http.ResponseController
}

func (e sseEmitter) Emit(envelope event.Envelope) error {
	data, err := event.Encode(envelope)
	if err != nil {
		return err
	}
	if _, err = fmt.Fprintf(e.w, "data: %s\n\n", data); err != nil {
		return err
	}
	return e.rc.Flush()
}

// handleEvents opens the stream of a user. The credential is either the
// stream token or the current rotating token.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		s.writeError(w, err, "")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(s.shutdown, cancel)
	defer stop()

	session, err := s.streams.Open(ctx, userID, r.URL.Query().Get("token"))
	if err != nil {
		s.writeError(w, err, "")
		return
	}

	rc := http.NewResponseController(w)
	if err = rc.SetWriteDeadline(time.Time{}); err != nil {
		s.log.Debug("Write deadline kept", "error", err)
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err = rc.Flush(); err != nil {
		s.log.Debug("Stream flush failed", "user_id", userID, "error", err)
	}

	if err = session.Run(ctx, sseEmitter{w: w, rc: rc}); err != nil {
		s.log.Debug("Stream ended", "user_id", userID, "error", err)
	}
}
