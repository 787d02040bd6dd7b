package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/me/concdemo/internal/demo"
	"github.com/me/concdemo/pkg/model"
)

func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	g, err := s.controller.Gallery().Snapshot(r.Context())
	if err != nil {
		// The main loop is gone or did not answer before the client left.
		respondError(w, reqID, http.StatusServiceUnavailable, model.NewInternalError(err.Error()))
		return
	}
	respondOK(w, reqID, g)
}

type sliderResponse struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

func (s *Server) handleSlider(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	var req struct {
		Value *float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadJSON(w, reqID, err)
		return
	}
	if req.Value == nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("missing required field",
				model.FieldError{Field: "value", Message: "value is required"}))
		return
	}

	label, err := s.controller.SetSlider(*req.Value)
	if errors.Is(err, demo.ErrSinkClosed) {
		respondControllerError(w, reqID, "", err)
		return
	}
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest,
			model.NewValidationError("invalid field",
				model.FieldError{Field: "value", Message: err.Error()}))
		return
	}
	respondOK(w, reqID, sliderResponse{Value: *req.Value, Label: label})
}
