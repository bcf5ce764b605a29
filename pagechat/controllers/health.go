package controllers

import (
	"encoding/json"
	"net/http"
)

type HealthController struct {
	activeSessions func() int
}

// NewHealthController reports liveness plus the live session count from
// activeSessions (may be nil).
func NewHealthController(activeSessions func() int) *HealthController {
	return &HealthController{activeSessions: activeSessions}
}

type healthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
}

func (h *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.activeSessions != nil {
		resp.ActiveSessions = h.activeSessions()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
