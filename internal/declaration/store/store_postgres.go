package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"liaison/internal/declaration/models"
	"liaison/internal/sentinel"
	id "liaison/pkg/domain"
	"liaison/pkg/platform/tx"
)

const pgUniqueViolation = "23505"

// PostgresStore persists declarations in PostgreSQL.
//
// When the context carries a transaction (pkg/platform/tx), all statements
// run inside it; otherwise they run directly against the pool.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed declaration store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *PostgresStore) Save(ctx context.Context, declaration *models.Declaration) error {
	if declaration == nil {
		return fmt.Errorf("declaration is required")
	}
	query := `
		INSERT INTO declarations (id, user_id, first_name, last_name, country, fingerprint, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(declaration.ID),
		uuid.UUID(declaration.OwnerID),
		declaration.FirstName,
		declaration.LastName,
		declaration.Country,
		declaration.Fingerprint,
		declaration.Active,
		declaration.CreatedAt,
		declaration.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("save declaration: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByOwnerAndID(ctx context.Context, ownerID id.UserID, declarationID id.DeclarationID) (*models.Declaration, error) {
	query := `
		SELECT id, user_id, first_name, last_name, country, fingerprint, active, created_at, updated_at
		FROM declarations
		WHERE id = $1 AND user_id = $2
	`
	declaration, err := scanDeclaration(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(declarationID), uuid.UUID(ownerID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find declaration: %w", err)
	}
	return declaration, nil
}

func (s *PostgresStore) FindActiveByOwnerAndFingerprint(ctx context.Context, ownerID id.UserID, fingerprint string) (*models.Declaration, error) {
	query := `
		SELECT id, user_id, first_name, last_name, country, fingerprint, active, created_at, updated_at
		FROM declarations
		WHERE user_id = $1 AND fingerprint = $2 AND active
	`
	declaration, err := scanDeclaration(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(ownerID), fingerprint))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find declaration by fingerprint: %w", err)
	}
	return declaration, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Declaration, error) {
	query := `
		SELECT id, user_id, first_name, last_name, country, fingerprint, active, created_at, updated_at
		FROM declarations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return s.list(ctx, query, uuid.UUID(ownerID))
}

func (s *PostgresStore) ListActiveByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Declaration, error) {
	query := `
		SELECT id, user_id, first_name, last_name, country, fingerprint, active, created_at, updated_at
		FROM declarations
		WHERE user_id = $1 AND active
		ORDER BY created_at DESC
	`
	return s.list(ctx, query, uuid.UUID(ownerID))
}

func (s *PostgresStore) ListActiveByFingerprint(ctx context.Context, fingerprint string) ([]*models.Declaration, error) {
	query := `
		SELECT id, user_id, first_name, last_name, country, fingerprint, active, created_at, updated_at
		FROM declarations
		WHERE fingerprint = $1 AND active
	`
	return s.list(ctx, query, fingerprint)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.Declaration, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list declarations: %w", err)
	}
	defer rows.Close()

	var declarations []*models.Declaration
	for rows.Next() {
		declaration, err := scanDeclaration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		declarations = append(declarations, declaration)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate declarations: %w", err)
	}
	return declarations, nil
}

func (s *PostgresStore) Update(ctx context.Context, declaration *models.Declaration) error {
	if declaration == nil {
		return fmt.Errorf("declaration is required")
	}
	query := `
		UPDATE declarations
		SET active = $3, updated_at = $4
		WHERE id = $1 AND user_id = $2
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(declaration.ID),
		uuid.UUID(declaration.OwnerID),
		declaration.Active,
		declaration.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update declaration: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update declaration rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM declarations WHERE active`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active declarations: %w", err)
	}
	return count, nil
}

type declarationRow interface {
	Scan(dest ...any) error
}

func scanDeclaration(row declarationRow) (*models.Declaration, error) {
	var declaration models.Declaration
	var declarationID, ownerID uuid.UUID
	if err := row.Scan(
		&declarationID,
		&ownerID,
		&declaration.FirstName,
		&declaration.LastName,
		&declaration.Country,
		&declaration.Fingerprint,
		&declaration.Active,
		&declaration.CreatedAt,
		&declaration.UpdatedAt,
	); err != nil {
		return nil, err
	}
	declaration.ID = id.DeclarationID(declarationID)
	declaration.OwnerID = id.UserID(ownerID)
	return &declaration, nil
}
