package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"liaison/internal/platform/middleware"
	"liaison/internal/profile/models"
	id "liaison/pkg/domain"
	dErrors "liaison/pkg/domain-errors"
	"liaison/pkg/platform/httputil"
)

// Service defines the interface for profile reads.
type Service interface {
	Get(ctx context.Context, ownerID id.UserID) (*models.Profile, error)
}

// ProfileResponse is the owner's own activity summary.
type ProfileResponse struct {
	UserID            string    `json:"user_id"`
	TotalDeclarations int64     `json:"total_declarations"`
	TotalAlerts       int64     `json:"total_alerts"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Handler handles profile endpoints.
type Handler struct {
	logger   *slog.Logger
	profiles Service
}

// New creates a new profile Handler.
func New(profiles Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		profiles: profiles,
	}
}

// Register registers the profile routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/me/profile", h.handleGet)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	ownerID := middleware.OwnerID(ctx)
	if ownerID.IsNil() {
		h.logger.ErrorContext(ctx, "owner missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	profile, err := h.profiles.Get(ctx, ownerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read profile",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ProfileResponse{
		UserID:            profile.UserID.String(),
		TotalDeclarations: profile.TotalDeclarations,
		TotalAlerts:       profile.TotalAlerts,
		CreatedAt:         profile.CreatedAt,
		UpdatedAt:         profile.UpdatedAt,
	})
}
