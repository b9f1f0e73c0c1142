package models

import (
	"time"

	id "liaison/pkg/domain"
	dErrors "liaison/pkg/domain-errors"
)

// DefaultScore is the confidence assigned to fingerprint-equality matches.
// The fingerprint either matches or it does not, so every match today scores
// 1.0; the column exists so a fuzzier comparator can be introduced without a
// schema change.
const DefaultScore = 1.0

// Side identifies which half of a match a declaration occupies.
type Side int

const (
	Side1 Side = 1
	Side2 Side = 2
)

// Match records that two declarations from different owners carry the same
// fingerprint. The pair is stored in canonical order (DeclarationID1 <
// DeclarationID2 by UUID ordering) so an unordered pair maps to exactly one
// row, and each side carries its own notification flag.
type Match struct {
	ID             id.MatchID
	DeclarationID1 id.DeclarationID
	DeclarationID2 id.DeclarationID
	Fingerprint    string
	Score          float64
	User1Notified  bool
	User2Notified  bool
	CreatedAt      time.Time
}

// NewMatch creates a Match from an unordered declaration pair.
func NewMatch(matchID id.MatchID, a, b id.DeclarationID, fingerprint string, now time.Time) (*Match, error) {
	if matchID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "match ID required")
	}
	if a.IsNil() || b.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "both declaration IDs required")
	}
	if a == b {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "a declaration cannot match itself")
	}
	if fingerprint == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "fingerprint required")
	}
	first, second := id.OrderPair(a, b)
	return &Match{
		ID:             matchID,
		DeclarationID1: first,
		DeclarationID2: second,
		Fingerprint:    fingerprint,
		Score:          DefaultScore,
		CreatedAt:      now,
	}, nil
}

// SideOf reports which side of the match the declaration occupies,
// or false when the declaration is not part of the match.
func (m Match) SideOf(declarationID id.DeclarationID) (Side, bool) {
	switch declarationID {
	case m.DeclarationID1:
		return Side1, true
	case m.DeclarationID2:
		return Side2, true
	default:
		return 0, false
	}
}

// Notified reports whether the given side has seen the match.
func (m Match) Notified(side Side) bool {
	if side == Side1 {
		return m.User1Notified
	}
	return m.User2Notified
}

// SetNotified marks the given side as having seen the match.
// The flag is monotonic: it never transitions back to false.
func (m *Match) SetNotified(side Side) {
	if side == Side1 {
		m.User1Notified = true
		return
	}
	m.User2Notified = true
}

// View is the owner-facing projection of a match. It carries only the
// owner's own declaration; nothing about the counterpart (who they are, what
// name they declared, how to reach them) is ever exposed.
type View struct {
	MatchID       id.MatchID
	DeclarationID id.DeclarationID
	DisplayName   string
	Score         float64
	Seen          bool
	CreatedAt     time.Time
}
