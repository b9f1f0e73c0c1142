package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"liaison/internal/platform/middleware"
	"liaison/internal/stats/service"
	"liaison/pkg/platform/httputil"
)

// Service defines the interface for aggregate stats.
type Service interface {
	Get(ctx context.Context) (*service.Stats, error)
}

// Handler handles the public stats endpoint. The endpoint is unauthenticated;
// it exposes only global counts.
type Handler struct {
	logger *slog.Logger
	stats  Service
}

// New creates a new stats Handler.
func New(stats Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		stats:  stats,
	}
}

// Register registers the stats route with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/stats", h.handleGet)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	stats, err := h.stats.Get(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to aggregate stats",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}
