package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"liaison/internal/declaration/models"
	"liaison/internal/declaration/service"
	"liaison/internal/platform/metrics"
	"liaison/internal/platform/middleware"
	id "liaison/pkg/domain"
	dErrors "liaison/pkg/domain-errors"
	"liaison/pkg/platform/httputil"
)

// Service defines the interface for declaration operations.
type Service interface {
	Submit(ctx context.Context, ownerID id.UserID, firstName, lastName, country string) (*service.SubmitResult, error)
	List(ctx context.Context, ownerID id.UserID) ([]*models.Declaration, error)
	Deactivate(ctx context.Context, ownerID id.UserID, declarationID id.DeclarationID) (*models.Declaration, error)
}

// Handler handles declaration endpoints.
type Handler struct {
	logger       *slog.Logger
	declarations Service
	metrics      *metrics.Metrics
}

// New creates a new declaration Handler.
func New(declarations Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:       logger,
		declarations: declarations,
		metrics:      metrics,
	}
}

// Register registers the declaration routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/declarations", h.handleSubmit)
	r.Get("/declarations", h.handleList)
	r.Post("/declarations/{declarationID}/deactivate", h.handleDeactivate)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	defer func() {
		if h.metrics != nil {
			h.metrics.EndpointLatency.WithLabelValues("declarations_submit").Observe(time.Since(start).Seconds())
		}
	}()

	requestID := middleware.GetRequestID(ctx)
	ownerID, ok := h.owner(ctx, w, requestID)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.declarations.Submit(ctx, ownerID, req.FirstName, req.LastName, req.Country)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to submit declaration",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, SubmitResponse{
		Declaration: toDeclarationResponse(result.Declaration),
		NewMatches:  result.NewMatches,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	ownerID, ok := h.owner(ctx, w, requestID)
	if !ok {
		return
	}

	declarations, err := h.declarations.List(ctx, ownerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list declarations",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ListResponse{Declarations: toDeclarationResponses(declarations)})
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	ownerID, ok := h.owner(ctx, w, requestID)
	if !ok {
		return
	}

	declarationID, err := id.ParseDeclarationID(chi.URLParam(r, "declarationID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid declaration ID"))
		return
	}

	declaration, err := h.declarations.Deactivate(ctx, ownerID, declarationID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to deactivate declaration",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toDeclarationResponse(declaration))
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
