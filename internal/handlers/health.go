package handlers

import "net/http"

// HealthHandler reports service availability
type HealthHandler struct {
	storageBackend string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storageBackend string) *HealthHandler {
	return &HealthHandler{storageBackend: storageBackend}
}

// HealthStatus handles GET /healthz
func (h *HealthHandler) HealthStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status":  "available",
		"storage": h.storageBackend,
	}, http.StatusOK)
}
