package store

import (
	"context"
	"time"

	"liaison/internal/profile/models"
	id "liaison/pkg/domain"
)

// Store defines the persistence interface for owner profiles.
// Error Contract:
// - Find returns sentinel.ErrNotFound when no profile exists
// - Increment methods create the profile on first touch
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	Find(ctx context.Context, ownerID id.UserID) (*models.Profile, error)
	IncrementDeclarations(ctx context.Context, ownerID id.UserID, now time.Time) error
	IncrementAlerts(ctx context.Context, ownerID id.UserID, now time.Time) error
	Count(ctx context.Context) (int64, error)
}
