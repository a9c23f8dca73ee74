package handlers

import (
	"net/http"

	"fleetroute/internal/orchestrator"
)

// BackendHandler exposes the routing backend's connectivity check over HTTP.
type BackendHandler struct {
	Orchestrator *orchestrator.Orchestrator
}

func (h *BackendHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := h.Orchestrator.BackendStatus(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]any{
		"connected": status.Connected,
		"message":   status.Message,
	})
}
