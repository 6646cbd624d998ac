package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/court-reservations/internal/logging"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	stores    []Pinger
	logger    *slog.Logger
	responder responder
}

// NewHealthHandler constructs a health handler that pings every store on readiness checks.
func NewHealthHandler(logger *slog.Logger, stores ...Pinger) *HealthHandler {
	logger = logging.OrDefault(logger)
	return &HealthHandler{stores: stores, logger: logger, responder: newResponder(logger)}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Live handles GET /.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.responder.writeText(r.Context(), w, http.StatusOK, "courtbot is running")
}

// Ready handles GET /healthz.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	for _, store := range h.stores {
		if err := store.Ping(ctx); err != nil {
			logging.For(ctx, h.logger).ErrorContext(ctx, "store unreachable", "error", err)
			h.responder.writeJSON(ctx, w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, healthResponse{Status: "ok"})
}
