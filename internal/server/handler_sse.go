package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/me/concdemo/pkg/model"
)

// handleSSEBatch streams batch updates via Server-Sent Events.
// GET /api/v1/sse/batches/{id}
func (s *Server) handleSSEBatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	reqID := RequestIDFromContext(r.Context())

	b, ok := s.controller.Batch(id)
	if !ok {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("batch", id))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// Set headers for SSE.
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	// Send initial state.
	rec := b.Snapshot()
	if err := sendSSEEvent(w, flusher, "init", rec); err != nil {
		s.logger.Debug("sse client disconnected", "id", id, "error", err)
		return
	}
	if rec.State.IsTerminal() {
		sendSSEEvent(w, flusher, "complete", rec)
		return
	}

	// Poll until the batch is terminal or the client disconnects.
	ticker := time.NewTicker(s.sseInterval)
	defer ticker.Stop()

	last := rec.TaskSummary
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			rec = b.Snapshot()

			// Send update if any task moved.
			if rec.TaskSummary != last {
				if err := sendSSEEvent(w, flusher, "update", rec); err != nil {
					s.logger.Debug("sse client disconnected", "id", id)
					return
				}
				last = rec.TaskSummary
			} else {
				fmt.Fprintf(w, ": heartbeat\n\n")
				flusher.Flush()
			}

			if rec.State.IsTerminal() {
				sendSSEEvent(w, flusher, "complete", rec)
				return
			}
		}
	}
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData)
	if err != nil {
		return err
	}

	flusher.Flush()
	return nil
}
