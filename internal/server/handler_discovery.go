package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "concdemo API",
		Version:     "v1",
		Description: "Image gallery fetched through a dependency-aware work queue",
		Endpoints: []endpointInfo{
			{"/api/v1/modes", []string{"GET"}, "Available scheduling modes"},
			{"/api/v1/batches", []string{"GET", "POST"}, "List batches or start one (Start button)"},
			{"/api/v1/batches/cancel", []string{"PUT"}, "Cancel the most recent batch (Cancel button)"},
			{"/api/v1/batches/{id}", []string{"GET"}, "Single batch with its tasks"},
			{"/api/v1/batches/{id}/cancel", []string{"PUT"}, "Cancel a batch"},
			{"/api/v1/gallery", []string{"GET"}, "Image slots and slider label"},
			{"/api/v1/slider", []string{"PUT"}, "Move the slider"},
			{"/api/v1/sse/batches/{id}", []string{"GET"}, "Batch progress as Server-Sent Events"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
