package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"liaison/internal/declaration/models"
	"liaison/internal/declaration/store"
	"liaison/internal/identity"
	"liaison/internal/match/events"
	"liaison/internal/match/matcher"
	"liaison/internal/platform/metrics"
	"liaison/internal/sentinel"
	id "liaison/pkg/domain"
	dErrors "liaison/pkg/domain-errors"
	"liaison/pkg/platform/tx"
)

// maxFieldLength bounds the raw name and country fields. Input beyond this
// is not a plausible name and would only bloat storage.
const maxFieldLength = 100

// Matcher creates matches for a freshly saved declaration.
type Matcher interface {
	MatchNew(ctx context.Context, declaration *models.Declaration, now time.Time) ([]matcher.Created, error)
}

// ProfileCounter records declaration totals per owner.
type ProfileCounter interface {
	IncrementDeclarations(ctx context.Context, ownerID id.UserID, now time.Time) error
}

type Option func(*Service)

// Service owns the declaration lifecycle: submission (including the matching
// fan-out), listing, and retirement.
type Service struct {
	store    store.Store
	matcher  Matcher
	profiles ProfileCounter
	runner   tx.Runner
	events   events.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(declarations store.Store, m Matcher, profiles ProfileCounter, runner tx.Runner, opts ...Option) *Service {
	svc := &Service{
		store:    declarations,
		matcher:  m,
		profiles: profiles,
		runner:   runner,
		events:   events.NoopPublisher{},
		now:      time.Now,
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

// WithEvents sets the match event publisher.
func WithEvents(publisher events.Publisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.events = publisher
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// SubmitResult reports the stored declaration and how many matches the
// submission produced immediately.
type SubmitResult struct {
	Declaration *models.Declaration
	NewMatches  int
}

// Submit validates and stores a declaration, then runs the matching fan-out
// in the same transaction. Match events are published only after the
// transaction commits, so consumers never see a match that was rolled back.
//
// A second active declaration of the same person by the same owner is
// rejected with CodeConflict; the message names the earlier declaration so
// the owner understands which entry blocked them.
func (s *Service) Submit(ctx context.Context, ownerID id.UserID, firstName, lastName, country string) (*SubmitResult, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	country = strings.TrimSpace(country)
	if err := validateField("first_name", firstName); err != nil {
		return nil, err
	}
	if err := validateField("last_name", lastName); err != nil {
		return nil, err
	}
	if err := validateField("country", country); err != nil {
		return nil, err
	}

	fingerprint := identity.Fingerprint(firstName, lastName, country)
	now := s.now().UTC()

	// Friendly pre-check. The partial unique index is the real guard; this
	// lookup only exists to name the earlier declaration in the error.
	if existing, err := s.store.FindActiveByOwnerAndFingerprint(ctx, ownerID, fingerprint); err == nil {
		s.rejectDuplicate(ctx, ownerID)
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("you already declared %s", existing.DisplayName()))
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to check existing declarations", err)
	}

	declaration, err := models.NewDeclaration(id.DeclarationID(uuid.New()), ownerID, firstName, lastName, country, fingerprint, now)
	if err != nil {
		return nil, err
	}

	var created []matcher.Created
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Save(ctx, declaration); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				// Lost the race between pre-check and insert.
				s.rejectDuplicate(ctx, ownerID)
				return dErrors.New(dErrors.CodeConflict, "you already declared this person")
			}
			return dErrors.Wrap(dErrors.CodeInternal, "failed to save declaration", err)
		}
		if err := s.profiles.IncrementDeclarations(ctx, ownerID, now); err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "failed to update profile", err)
		}
		matched, err := s.matcher.MatchNew(ctx, declaration, now)
		if err != nil {
			return dErrors.Wrap(dErrors.CodeInternal, "failed to match declaration", err)
		}
		created = matched
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range created {
		s.events.MatchCreated(events.MatchCreated{
			MatchID:        c.Match.ID,
			DeclarationID1: c.Match.DeclarationID1,
			DeclarationID2: c.Match.DeclarationID2,
			Owner1:         c.Owner1,
			Owner2:         c.Owner2,
			Fingerprint:    c.Match.Fingerprint,
			Score:          c.Match.Score,
			CreatedAt:      c.Match.CreatedAt,
		})
	}

	if s.metrics != nil {
		s.metrics.DeclarationsCreated.Inc()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "declaration submitted",
			"declaration_id", declaration.ID,
			"new_matches", len(created),
		)
	}
	return &SubmitResult{Declaration: declaration, NewMatches: len(created)}, nil
}

// List returns the owner's active declarations, newest first. Retired
// declarations disappear from the listing; their matches remain visible
// through the match service.
func (s *Service) List(ctx context.Context, ownerID id.UserID) ([]*models.Declaration, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	declarations, err := s.store.ListActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list declarations", err)
	}
	return declarations, nil
}

// Deactivate retires the owner's declaration. Retiring an already retired
// declaration is a no-op; matches created while it was active survive.
func (s *Service) Deactivate(ctx context.Context, ownerID id.UserID, declarationID id.DeclarationID) (*models.Declaration, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	declaration, err := s.store.FindByOwnerAndID(ctx, ownerID, declarationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "declaration not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to read declaration", err)
	}
	if !declaration.Active {
		return declaration, nil
	}

	declaration.Retire(s.now().UTC())
	if err := s.store.Update(ctx, declaration); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to retire declaration", err)
	}
	if s.metrics != nil {
		s.metrics.DeclarationsRetired.Inc()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "declaration retired", "declaration_id", declaration.ID)
	}
	return declaration, nil
}

func (s *Service) rejectDuplicate(ctx context.Context, ownerID id.UserID) {
	if s.metrics != nil {
		s.metrics.DuplicatesRejected.Inc()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "duplicate declaration rejected", "owner_id", ownerID)
	}
}

func validateField(name, value string) error {
	if value == "" {
		return dErrors.New(dErrors.CodeValidation, name+" is required")
	}
	if len(value) > maxFieldLength {
		return dErrors.New(dErrors.CodeValidation, name+" is too long")
	}
	return nil
}
