package store

import (
	"context"

	"liaison/internal/match/models"
	id "liaison/pkg/domain"
)

// Store defines the persistence interface for matches.
// Error Contract:
// - Save returns sentinel.ErrAlreadyUsed when a match for the same
//   declaration pair already exists
// - FindByID returns sentinel.ErrNotFound when no record exists
// - Other methods return nil on success or wrapped errors on failure
type Store interface {
	Save(ctx context.Context, match *models.Match) error
	FindByID(ctx context.Context, matchID id.MatchID) (*models.Match, error)
	ListByDeclarations(ctx context.Context, declarationIDs []id.DeclarationID) ([]*models.Match, error)
	MarkNotified(ctx context.Context, matchID id.MatchID, side models.Side) error
	CountUnreadByDeclarations(ctx context.Context, declarationIDs []id.DeclarationID) (int64, error)
	Count(ctx context.Context) (int64, error)
}
