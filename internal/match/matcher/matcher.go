// Package matcher creates match records when declarations from different
// owners collide on the same fingerprint.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	declmodels "liaison/internal/declaration/models"
	"liaison/internal/match/models"
	"liaison/internal/platform/metrics"
	"liaison/internal/sentinel"
	id "liaison/pkg/domain"
)

// DeclarationSource looks up match candidates.
type DeclarationSource interface {
	ListActiveByFingerprint(ctx context.Context, fingerprint string) ([]*declmodels.Declaration, error)
}

// MatchSink persists created matches.
// Save must return sentinel.ErrAlreadyUsed when the pair already matched.
type MatchSink interface {
	Save(ctx context.Context, match *models.Match) error
}

// ProfileCounter records alert totals per owner.
type ProfileCounter interface {
	IncrementAlerts(ctx context.Context, ownerID id.UserID, now time.Time) error
}

// Created pairs a stored match with the owners on each side, in side order.
// The matcher resolves owners while it still has both declarations in hand
// so event publishing never needs another lookup.
type Created struct {
	Match  *models.Match
	Owner1 id.UserID
	Owner2 id.UserID
}

type Option func(*Matcher)

// Matcher fans a new declaration out against all active declarations that
// share its fingerprint and creates one match per cross-owner counterpart.
//
// Exactly-once is enforced by storage, not by the matcher: the pair-unique
// constraint makes concurrent submissions race safely, and the loser of the
// race treats the conflict as success.
type Matcher struct {
	declarations DeclarationSource
	matches      MatchSink
	profiles     ProfileCounter
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

func New(declarations DeclarationSource, matches MatchSink, profiles ProfileCounter, opts ...Option) *Matcher {
	m := &Matcher{
		declarations: declarations,
		matches:      matches,
		profiles:     profiles,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithLogger sets the logger instance for the matcher.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

// WithMetrics sets the metrics instance for the matcher.
func WithMetrics(mx *metrics.Metrics) Option {
	return func(m *Matcher) {
		m.metrics = mx
	}
}

// MatchNew creates matches between the given declaration and every active
// declaration of another owner with the same fingerprint. Both owners'
// alert counters are incremented per created match. Runs in the caller's
// transaction when the context carries one.
func (m *Matcher) MatchNew(ctx context.Context, declaration *declmodels.Declaration, now time.Time) ([]Created, error) {
	// Read-committed: a cross-owner submission committing concurrently may
	// not be visible here yet, in which case neither transaction creates the
	// match. The pair constraint only guards against double-creation; closing
	// the under-creation window would need an advisory lock on the
	// fingerprint.
	candidates, err := m.declarations.ListActiveByFingerprint(ctx, declaration.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("list match candidates: %w", err)
	}

	var created []Created
	for _, candidate := range candidates {
		// Same-owner candidates include the declaration itself and anything
		// the duplicate guard let through; matches are strictly cross-owner.
		if candidate.OwnerID == declaration.OwnerID {
			continue
		}

		match, err := models.NewMatch(id.MatchID(uuid.New()), declaration.ID, candidate.ID, declaration.Fingerprint, now)
		if err != nil {
			return nil, fmt.Errorf("build match: %w", err)
		}

		if err := m.matches.Save(ctx, match); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				// Lost a race with a concurrent submission; the pair is
				// already matched, which is the outcome we wanted.
				continue
			}
			return nil, fmt.Errorf("save match: %w", err)
		}

		if err := m.profiles.IncrementAlerts(ctx, declaration.OwnerID, now); err != nil {
			return nil, fmt.Errorf("count alert for submitter: %w", err)
		}
		if err := m.profiles.IncrementAlerts(ctx, candidate.OwnerID, now); err != nil {
			return nil, fmt.Errorf("count alert for counterpart: %w", err)
		}

		owner1, owner2 := declaration.OwnerID, candidate.OwnerID
		if match.DeclarationID1 != declaration.ID {
			owner1, owner2 = owner2, owner1
		}
		created = append(created, Created{Match: match, Owner1: owner1, Owner2: owner2})

		if m.metrics != nil {
			m.metrics.MatchesCreated.Inc()
		}
		if m.logger != nil {
			m.logger.InfoContext(ctx, "match created",
				"match_id", match.ID,
				"fingerprint", match.Fingerprint,
			)
		}
	}
	return created, nil
}
