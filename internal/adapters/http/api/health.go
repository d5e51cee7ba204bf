// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	scorerName func() string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(scorerName func() string) *HealthHandler {
	return &HealthHandler{scorerName: scorerName}
}

type healthResponse struct {
	Status string `json:"status"`
	Scorer string `json:"scorer,omitempty"`
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resp := healthResponse{Status: "ok"}
	if h.scorerName != nil {
		resp.Scorer = h.scorerName()
	}
	writeJSON(w, http.StatusOK, resp)
}
