package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"liaison/internal/match/models"
	"liaison/internal/sentinel"
	id "liaison/pkg/domain"
	"liaison/pkg/platform/tx"
)

const pgUniqueViolation = "23505"

// PostgresStore persists matches in PostgreSQL.
//
// When the context carries a transaction (pkg/platform/tx), all statements
// run inside it; otherwise they run directly against the pool.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed match store.
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

func (s *PostgresStore) Save(ctx context.Context, match *models.Match) error {
	if match == nil {
		return fmt.Errorf("match is required")
	}
	query := `
		INSERT INTO matches (id, declaration_id_1, declaration_id_2, fingerprint, score, user_1_notified, user_2_notified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(match.ID),
		uuid.UUID(match.DeclarationID1),
		uuid.UUID(match.DeclarationID2),
		match.Fingerprint,
		match.Score,
		match.User1Notified,
		match.User2Notified,
		match.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("save match: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, matchID id.MatchID) (*models.Match, error) {
	query := `
		SELECT id, declaration_id_1, declaration_id_2, fingerprint, score, user_1_notified, user_2_notified, created_at
		FROM matches
		WHERE id = $1
	`
	match, err := scanMatch(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(matchID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find match: %w", err)
	}
	return match, nil
}

func (s *PostgresStore) ListByDeclarations(ctx context.Context, declarationIDs []id.DeclarationID) ([]*models.Match, error) {
	if len(declarationIDs) == 0 {
		return nil, nil
	}
	placeholders, args := declarationArgs(declarationIDs)
	query := fmt.Sprintf(`
		SELECT id, declaration_id_1, declaration_id_2, fingerprint, score, user_1_notified, user_2_notified, created_at
		FROM matches
		WHERE declaration_id_1 IN (%[1]s) OR declaration_id_2 IN (%[1]s)
		ORDER BY created_at DESC
	`, placeholders)

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

func (s *PostgresStore) MarkNotified(ctx context.Context, matchID id.MatchID, side models.Side) error {
	column := "user_1_notified"
	if side == models.Side2 {
		column = "user_2_notified"
	}
	query := fmt.Sprintf(`UPDATE matches SET %s = TRUE WHERE id = $1`, column)
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(matchID))
	if err != nil {
		return fmt.Errorf("mark match notified: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark match notified rows: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountUnreadByDeclarations(ctx context.Context, declarationIDs []id.DeclarationID) (int64, error) {
	if len(declarationIDs) == 0 {
		return 0, nil
	}
	placeholders, args := declarationArgs(declarationIDs)
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM matches
		WHERE (declaration_id_1 IN (%[1]s) AND NOT user_1_notified)
		   OR (declaration_id_2 IN (%[1]s) AND NOT user_2_notified)
	`, placeholders)

	var count int64
	if err := s.execer(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread matches: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.execer(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM matches`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return count, nil
}

// declarationArgs renders a positional placeholder list for the given IDs.
// The same placeholders are reused for both sides of the pair, so the
// argument list is bound once.
func declarationArgs(declarationIDs []id.DeclarationID) (string, []any) {
	placeholders := make([]string, len(declarationIDs))
	args := make([]any, len(declarationIDs))
	for i, declarationID := range declarationIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = uuid.UUID(declarationID)
	}
	return strings.Join(placeholders, ", "), args
}

type matchRow interface {
	Scan(dest ...any) error
}

func scanMatch(row matchRow) (*models.Match, error) {
	var match models.Match
	var matchID, decl1, decl2 uuid.UUID
	if err := row.Scan(
		&matchID,
		&decl1,
		&decl2,
		&match.Fingerprint,
		&match.Score,
		&match.User1Notified,
		&match.User2Notified,
		&match.CreatedAt,
	); err != nil {
		return nil, err
	}
	match.ID = id.MatchID(matchID)
	match.DeclarationID1 = id.DeclarationID(decl1)
	match.DeclarationID2 = id.DeclarationID(decl2)
	return &match, nil
}
