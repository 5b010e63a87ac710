package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/campus-connect/internal/http/respond"
)

// Pinger is satisfied by storage.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports uptime and database reachability.
type HealthHandler struct {
	startedAt time.Time
	db        Pinger
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, db Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, db: db}
}

// Register wires the handler into the router.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"status":   "OK",
		"message":  "Campus Connect API is running",
		"uptime":   time.Since(h.startedAt).Truncate(time.Second).String(),
		"database": "ok",
	}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		body["status"] = "DEGRADED"
		body["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}
	respond.JSON(w, status, body)
}
