package models

import (
	"time"

	id "liaison/pkg/domain"
	dErrors "liaison/pkg/domain-errors"
)

// Declaration is an owner's assertion that a specific person is their
// partner, keyed by the fingerprint of the person's normalized identity.
//
// # Scoping Invariant
//
// A DeclarationID is ALWAYS scoped by its OwnerID. The store layer requires
// the owner on every read and mutation so one owner can never see or retire
// another owner's declarations, even with a guessed ID.
type Declaration struct {
	ID          id.DeclarationID
	OwnerID     id.UserID
	FirstName   string
	LastName    string
	Country     string
	Fingerprint string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewDeclaration creates a Declaration with domain invariant checks.
// The raw name fields are kept verbatim for display back to the owner;
// only the fingerprint participates in matching.
func NewDeclaration(declarationID id.DeclarationID, ownerID id.UserID, firstName, lastName, country, fingerprint string, now time.Time) (*Declaration, error) {
	if declarationID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "declaration ID required")
	}
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "owner ID required")
	}
	if fingerprint == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "fingerprint required")
	}
	if now.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "creation time required")
	}
	return &Declaration{
		ID:          declarationID,
		OwnerID:     ownerID,
		FirstName:   firstName,
		LastName:    lastName,
		Country:     country,
		Fingerprint: fingerprint,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Retire marks the declaration inactive. Retiring is one-way: the row is
// kept for history and for matches that already reference it.
func (d *Declaration) Retire(now time.Time) {
	d.Active = false
	d.UpdatedAt = now
}

// DisplayName is the owner-facing rendering of the declared person.
func (d Declaration) DisplayName() string {
	return d.FirstName + " " + d.LastName
}
