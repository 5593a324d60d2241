package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// heartbeatInterval is the interval for sending SSE heartbeat comments.
const heartbeatInterval = 20 * time.Second

// handleStream handles GET /api/v1/stream (SSE)
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported", nil)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	fmt.Fprintf(w, ": connected\n\n")

	// Tell the client where the catalog stands right now, so a client
	// that connected after the last refresh does not wait for the next
	// one to render.
	if s.catalog != nil {
		writeSSENotice(w, &Notice{
			Events:    s.catalog.Len(),
			Checksum:  s.catalog.Checksum(),
			UpdatedAt: s.catalog.UpdatedAt(),
		})
	}
	flusher.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	ctx := r.Context()

	for {
		select {
		case n, ok := <-sub.Notices():
			if !ok {
				// Channel closed, subscriber removed
				return
			}
			writeSSENotice(w, n)
			flusher.Flush()

		case <-ticker.C:
			// Heartbeat comment keeps proxies from closing the stream
			fmt.Fprintf(w, ":\n\n")
			flusher.Flush()

		case <-ctx.Done():
			// Client disconnected
			return

		case <-sub.Done():
			// Subscriber removed (hub stopped)
			return
		}
	}
}

// writeSSENotice writes a single notice in SSE format. The checksum
// doubles as the event id so clients can dedupe across reconnects.
func writeSSENotice(w http.ResponseWriter, n *Notice) {
	data, err := json.Marshal(n)
	if err != nil {
		return
	}

	fmt.Fprintf(w, "id: %s\n", n.Checksum)
	fmt.Fprintf(w, "event: catalog\n")
	fmt.Fprintf(w, "data: %s\n\n", data)
}
