package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/me/concdemo/internal/demo"
	"github.com/me/concdemo/pkg/model"
)

func requestID() string {
	return "req_" + uuid.New().String()[:8]
}

func respondOK(w http.ResponseWriter, reqID string, data any) {
	writeEnvelope(w, http.StatusOK, model.Response{RequestID: reqID, Data: data})
}

// respondCreated is used when a batch was started.
func respondCreated(w http.ResponseWriter, reqID string, data any) {
	writeEnvelope(w, http.StatusCreated, model.Response{RequestID: reqID, Data: data})
}

func respondList(w http.ResponseWriter, reqID string, data any, pg *model.Pagination) {
	writeEnvelope(w, http.StatusOK, model.Response{RequestID: reqID, Data: data, Pagination: pg})
}

func respondError(w http.ResponseWriter, reqID string, status int, apiErr *model.APIError) {
	writeEnvelope(w, status, model.Response{RequestID: reqID, Error: apiErr})
}

// respondControllerError maps a demo.Controller error for batch id onto an
// HTTP status. Errors it does not recognise become 500s.
func respondControllerError(w http.ResponseWriter, reqID, id string, err error) {
	switch {
	case errors.Is(err, demo.ErrBatchNotFound):
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("batch", id))
	case errors.Is(err, demo.ErrNoBatch):
		respondError(w, reqID, http.StatusConflict, model.NewConflictError("no batch has been started"))
	case errors.Is(err, demo.ErrSinkClosed):
		respondError(w, reqID, http.StatusServiceUnavailable, model.NewInternalError("gallery is shutting down"))
	default:
		respondError(w, reqID, http.StatusInternalServerError, model.NewInternalError(err.Error()))
	}
}

// respondBadJSON reports an undecodable request body.
func respondBadJSON(w http.ResponseWriter, reqID string, err error) {
	respondError(w, reqID, http.StatusBadRequest, &model.APIError{
		Code:    model.ErrValidation,
		Message: "request body is not valid JSON: " + err.Error(),
	})
}

// writeEnvelope stamps resp and writes it. Status is "error" exactly when
// resp carries an APIError.
func writeEnvelope(w http.ResponseWriter, code int, resp model.Response) {
	resp.Timestamp = time.Now().UTC()
	resp.Status = "ok"
	if resp.Error != nil {
		resp.Status = "error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}
