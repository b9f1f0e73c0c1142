package service

import (
	"context"
	"errors"
	"log/slog"

	declmodels "liaison/internal/declaration/models"
	"liaison/internal/match/models"
	"liaison/internal/match/store"
	"liaison/internal/platform/metrics"
	"liaison/internal/sentinel"
	id "liaison/pkg/domain"
	dErrors "liaison/pkg/domain-errors"
)

// DeclarationSource resolves match sides back to the owner's declarations.
type DeclarationSource interface {
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*declmodels.Declaration, error)
	FindByOwnerAndID(ctx context.Context, ownerID id.UserID, declarationID id.DeclarationID) (*declmodels.Declaration, error)
}

type Option func(*Service)

// Service exposes matches to their owners. Every read goes through the
// owner's own declarations, which is what keeps the product anonymous: an
// owner learns THAT a declaration of theirs matched, never WHO matched it.
type Service struct {
	matches      store.Store
	declarations DeclarationSource
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

func NewService(matches store.Store, declarations DeclarationSource, opts ...Option) *Service {
	svc := &Service{
		matches:      matches,
		declarations: declarations,
	}
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

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// ListForOwner returns the owner's matches as anonymized views, newest
// first. The display name on each view is the name the OWNER declared, so
// they can tell which of their declarations matched.
func (s *Service) ListForOwner(ctx context.Context, ownerID id.UserID) ([]*models.View, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	declarations, err := s.declarations.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list declarations", err)
	}
	if len(declarations) == 0 {
		return nil, nil
	}

	owned := make(map[id.DeclarationID]*declmodels.Declaration, len(declarations))
	declarationIDs := make([]id.DeclarationID, 0, len(declarations))
	for _, declaration := range declarations {
		owned[declaration.ID] = declaration
		declarationIDs = append(declarationIDs, declaration.ID)
	}

	matches, err := s.matches.ListByDeclarations(ctx, declarationIDs)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list matches", err)
	}

	var views []*models.View
	for _, match := range matches {
		declaration, side, ok := s.ownSide(owned, match)
		if !ok {
			continue
		}
		views = append(views, &models.View{
			MatchID:       match.ID,
			DeclarationID: declaration.ID,
			DisplayName:   declaration.DisplayName(),
			Score:         match.Score,
			Seen:          match.Notified(side),
			CreatedAt:     match.CreatedAt,
		})
	}
	return views, nil
}

// UnreadCount returns the number of matches the owner has not yet seen.
func (s *Service) UnreadCount(ctx context.Context, ownerID id.UserID) (int64, error) {
	if ownerID.IsNil() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	declarations, err := s.declarations.ListByOwner(ctx, ownerID)
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "failed to list declarations", err)
	}
	if len(declarations) == 0 {
		return 0, nil
	}
	declarationIDs := make([]id.DeclarationID, 0, len(declarations))
	for _, declaration := range declarations {
		declarationIDs = append(declarationIDs, declaration.ID)
	}
	count, err := s.matches.CountUnreadByDeclarations(ctx, declarationIDs)
	if err != nil {
		return 0, dErrors.Wrap(dErrors.CodeInternal, "failed to count unread matches", err)
	}
	return count, nil
}

// MarkSeen records that the owner has seen the match. Marking an already
// seen match is a no-op; the flag never unsets. Matches the owner is not a
// party to are reported as not found, never as forbidden, so match IDs leak
// nothing about other owners.
func (s *Service) MarkSeen(ctx context.Context, ownerID id.UserID, matchID id.MatchID) error {
	if ownerID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	match, err := s.matches.FindByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "match not found")
		}
		return dErrors.Wrap(dErrors.CodeInternal, "failed to read match", err)
	}

	side, err := s.sideForOwner(ctx, ownerID, match)
	if err != nil {
		return err
	}
	if match.Notified(side) {
		return nil
	}
	if err := s.matches.MarkNotified(ctx, matchID, side); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "failed to mark match seen", err)
	}
	if s.metrics != nil {
		s.metrics.MatchesSeen.Inc()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "match seen", "match_id", matchID)
	}
	return nil
}

func (s *Service) ownSide(owned map[id.DeclarationID]*declmodels.Declaration, match *models.Match) (*declmodels.Declaration, models.Side, bool) {
	if declaration, ok := owned[match.DeclarationID1]; ok {
		return declaration, models.Side1, true
	}
	if declaration, ok := owned[match.DeclarationID2]; ok {
		return declaration, models.Side2, true
	}
	return nil, 0, false
}

func (s *Service) sideForOwner(ctx context.Context, ownerID id.UserID, match *models.Match) (models.Side, error) {
	for _, candidate := range []struct {
		declarationID id.DeclarationID
		side          models.Side
	}{
		{match.DeclarationID1, models.Side1},
		{match.DeclarationID2, models.Side2},
	} {
		_, err := s.declarations.FindByOwnerAndID(ctx, ownerID, candidate.declarationID)
		if err == nil {
			return candidate.side, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return 0, dErrors.Wrap(dErrors.CodeInternal, "failed to read declaration", err)
		}
	}
	return 0, dErrors.New(dErrors.CodeNotFound, "match not found")
}
