package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// handleEvents streams live events of one creation as Server-Sent Events.
func handleEvents(logger *slog.Logger, broker Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creationID := chi.URLParam(r, "creationID")
		if creationID == "" {
			writeError(w, http.StatusNotFound, "creation not found")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		ch, unsubscribe, err := broker.Subscribe(r.Context(), creationID)
		if err != nil {
			logger.Error("live subscribe failed", "creation_id", creationID, "error", err)
			writeError(w, http.StatusServiceUnavailable, "live relay unavailable")
			return
		}
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				fmt.Fprintf(w, "event: live\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
