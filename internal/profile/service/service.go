package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"liaison/internal/profile/models"
	"liaison/internal/profile/store"
	"liaison/internal/sentinel"
	id "liaison/pkg/domain"
	dErrors "liaison/pkg/domain-errors"
)

type Option func(*Service)

// Service reads owner profiles. Writes happen as side effects of
// declaration submission and matching, not through this service.
type Service struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(profiles store.Store, opts ...Option) *Service {
	svc := &Service{store: profiles, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithLogger sets the logger instance for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Get returns the owner's profile. Owners with no recorded activity get a
// zeroed profile rather than an error; a profile row is only materialized by
// the first declaration.
func (s *Service) Get(ctx context.Context, ownerID id.UserID) (*models.Profile, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	profile, err := s.store.Find(ctx, ownerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			now := s.now().UTC()
			return &models.Profile{UserID: ownerID, CreatedAt: now, UpdatedAt: now}, nil
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to read profile", err)
	}
	return profile, nil
}
