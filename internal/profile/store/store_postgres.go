package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"liaison/internal/profile/models"
	"liaison/internal/sentinel"
	id "liaison/pkg/domain"
	"liaison/pkg/platform/tx"
)

// PostgresStore persists profiles in PostgreSQL.
//
// When the context carries a transaction (pkg/platform/tx), all statements
// run inside it; otherwise they run directly against the pool.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed profile store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresStore) Find(ctx context.Context, ownerID id.UserID) (*models.Profile, error) {
	query := `
		SELECT user_id, total_declarations, total_alerts, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`
	var profile models.Profile
	var userID uuid.UUID
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(ownerID)).Scan(
		&userID,
		&profile.TotalDeclarations,
		&profile.TotalAlerts,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	profile.UserID = id.UserID(userID)
	return &profile, nil
}

func (s *PostgresStore) IncrementDeclarations(ctx context.Context, ownerID id.UserID, now time.Time) error {
	return s.increment(ctx, "total_declarations", ownerID, now)
}

func (s *PostgresStore) IncrementAlerts(ctx context.Context, ownerID id.UserID, now time.Time) error {
	return s.increment(ctx, "total_alerts", ownerID, now)
}

// increment upserts the profile row so the first activity of a new owner
// creates it atomically. The column name is fixed by the callers above.
func (s *PostgresStore) increment(ctx context.Context, column string, ownerID id.UserID, now time.Time) error {
	query := fmt.Sprintf(`
		INSERT INTO profiles (user_id, %[1]s, created_at, updated_at)
		VALUES ($1, 1, $2, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET %[1]s = profiles.%[1]s + 1, updated_at = EXCLUDED.updated_at
	`, column)
	if _, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(ownerID), now); err != nil {
		return fmt.Errorf("increment profile %s: %w", column, err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return count, nil
}
