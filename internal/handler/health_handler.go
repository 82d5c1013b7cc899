package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports whether the service and its database are reachable.
type HealthHandler struct {
	check  func(ctx context.Context) error
	logger zerolog.Logger
}

// NewHealthHandler creates a health handler. check may be nil, in which case the service
// always reports healthy.
func NewHealthHandler(check func(ctx context.Context) error, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		check:  check,
		logger: logger.With().Str("handler", "health").Logger(),
	}
}

// ServeHTTP handles GET /health requests.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.check(ctx); err != nil {
			h.logger.Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
