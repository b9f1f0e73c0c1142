// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "liaison/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a UserID where a MatchID is expected.
type (
	UserID        uuid.UUID
	DeclarationID uuid.UUID
	MatchID       uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseDeclarationID(s string) (DeclarationID, error) {
	id, err := parseUUID(s, "declaration ID")
	return DeclarationID(id), err
}

func ParseMatchID(s string) (MatchID, error) {
	id, err := parseUUID(s, "match ID")
	return MatchID(id), err
}

// String methods - for logging and debugging.

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id DeclarationID) String() string { return uuid.UUID(id).String() }
func (id MatchID) String() string       { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id UserID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id DeclarationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id MatchID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }

// OrderPair returns the two declaration IDs in canonical order (lexicographically
// smaller UUID first). Matches store their declaration pair in this order so the
// unordered pair maps to exactly one row.
func OrderPair(a, b DeclarationID) (DeclarationID, DeclarationID) {
	if uuid.UUID(a).String() <= uuid.UUID(b).String() {
		return a, b
	}
	return b, a
}

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here; use IsNil() at the service layer so store lookups
// can return proper "not found" errors for consistency.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	return id, nil
}
