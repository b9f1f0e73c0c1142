package store

import (
	"context"

	"liaison/internal/declaration/models"
	id "liaison/pkg/domain"
)

// Store defines the persistence interface for declarations.
// Error Contract:
// - Save returns sentinel.ErrAlreadyUsed when the owner already has an
//   active declaration with the same fingerprint
// - Find methods return sentinel.ErrNotFound when no record exists
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	Save(ctx context.Context, declaration *models.Declaration) error
	FindByOwnerAndID(ctx context.Context, ownerID id.UserID, declarationID id.DeclarationID) (*models.Declaration, error)
	FindActiveByOwnerAndFingerprint(ctx context.Context, ownerID id.UserID, fingerprint string) (*models.Declaration, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Declaration, error)
	ListActiveByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Declaration, error)
	ListActiveByFingerprint(ctx context.Context, fingerprint string) ([]*models.Declaration, error)
	Update(ctx context.Context, declaration *models.Declaration) error
	CountActive(ctx context.Context) (int64, error)
}
