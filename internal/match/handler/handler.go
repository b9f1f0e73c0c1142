package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"liaison/internal/match/models"
	"liaison/internal/platform/metrics"
	"liaison/internal/platform/middleware"
	id "liaison/pkg/domain"
	dErrors "liaison/pkg/domain-errors"
	"liaison/pkg/platform/httputil"
)

// Service defines the interface for match operations.
type Service interface {
	ListForOwner(ctx context.Context, ownerID id.UserID) ([]*models.View, error)
	UnreadCount(ctx context.Context, ownerID id.UserID) (int64, error)
	MarkSeen(ctx context.Context, ownerID id.UserID, matchID id.MatchID) error
}

// Handler handles match endpoints.
type Handler struct {
	logger  *slog.Logger
	matches Service
	metrics *metrics.Metrics
}

// New creates a new match Handler.
func New(matches Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:  logger,
		matches: matches,
		metrics: metrics,
	}
}

// Register registers the match routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/matches", h.handleList)
	r.Get("/matches/unread-count", h.handleUnreadCount)
	r.Post("/matches/{matchID}/seen", h.handleMarkSeen)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer func() {
		if h.metrics != nil {
			h.metrics.EndpointLatency.WithLabelValues("matches_list").Observe(time.Since(start).Seconds())
		}
	}()

	requestID := middleware.GetRequestID(ctx)
	ownerID, ok := h.owner(ctx, w, requestID)
	if !ok {
		return
	}

	views, err := h.matches.ListForOwner(ctx, ownerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list matches",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ListResponse{Matches: toMatchResponses(views)})
}

func (h *Handler) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	ownerID, ok := h.owner(ctx, w, requestID)
	if !ok {
		return
	}

	count, err := h.matches.UnreadCount(ctx, ownerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to count unread matches",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, UnreadCountResponse{Unread: count})
}

func (h *Handler) handleMarkSeen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	ownerID, ok := h.owner(ctx, w, requestID)
	if !ok {
		return
	}

	matchID, err := id.ParseMatchID(chi.URLParam(r, "matchID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid match ID"))
		return
	}

	if err := h.matches.MarkSeen(ctx, ownerID, matchID); err != nil {
		h.logger.WarnContext(ctx, "failed to mark match seen",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) owner(ctx context.Context, w http.ResponseWriter, requestID string) (id.UserID, bool) {
	ownerID := middleware.OwnerID(ctx)
	if ownerID.IsNil() {
		h.logger.ErrorContext(ctx, "owner missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return id.UserID{}, false
	}
	return ownerID, true
}
