package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/me/concdemo/internal/demo"
	"github.com/me/concdemo/pkg/model"
)

type modeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleListModes(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	modes := make([]modeInfo, len(demo.Modes))
	for i, m := range demo.Modes {
		modes[i] = modeInfo{Name: string(m), Description: m.Description()}
	}
	respondOK(w, reqID, modes)
}

func (s *Server) handleStartBatch(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadJSON(w, reqID, err)
		return
	}
	if req.Mode == "" {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("missing required field",
				model.FieldError{Field: "mode", Message: "mode is required"}))
		return
	}
	mode, err := demo.ParseMode(req.Mode)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("invalid field",
				model.FieldError{Field: "mode", Message: err.Error()}))
		return
	}

	b, err := s.controller.Start(mode)
	if err != nil {
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
		return
	}
	s.logger.Info("batch created", "id", b.ID(), "mode", mode)
	respondCreated(w, reqID, b.Snapshot())
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opts := model.DefaultListOptions()
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest,
				model.NewValidationError("invalid query parameter",
					model.FieldError{Field: "limit", Message: "limit must be an integer"}))
			return
		}
		opts.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, reqID, http.StatusBadRequest,
				model.NewValidationError("invalid query parameter",
					model.FieldError{Field: "offset", Message: "offset must be an integer"}))
			return
		}
		opts.Offset = n
	}
	opts.State = model.BatchState(strings.ToUpper(strings.TrimSpace(q.Get("state"))))
	opts.Clamp()

	// Newest first; task lists are omitted from list responses.
	all := s.controller.Batches()
	recs := make([]model.Batch, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		rec := all[i].Snapshot()
		if !opts.Matches(rec.State) {
			continue
		}
		rec.Tasks = nil
		recs = append(recs, rec)
	}

	start, end, pg := opts.Page(len(recs))
	respondList(w, reqID, recs[start:end], pg)
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	b, ok := s.controller.Batch(id)
	if !ok {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("batch", id))
		return
	}
	respondOK(w, reqID, b.Snapshot())
}

func (s *Server) handleCancelBatch(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := s.controller.Cancel(id); err != nil {
		respondControllerError(w, reqID, id, err)
		return
	}
	b, _ := s.controller.Batch(id)
	respondOK(w, reqID, b.Snapshot())
}

func (s *Server) handleCancelCurrent(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	b, err := s.controller.CancelCurrent()
	if err != nil {
		respondControllerError(w, reqID, "", err)
		return
	}
	respondOK(w, reqID, b.Snapshot())
}
