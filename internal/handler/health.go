package handler

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	rateLimiter string
	mailer      string
}

// NewHealthHandler reports which optional collaborators are active.
func NewHealthHandler(rateLimiterBackend, mailerBackend string) *HealthHandler {
	return &HealthHandler{
		rateLimiter: rateLimiterBackend,
		mailer:      mailerBackend,
	}
}

// GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"timestamp":   time.Now().UnixMilli(),
		"rateLimiter": h.rateLimiter,
		"mailer":      h.mailer,
	})
}
