package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"goggins/internal/notes/models"
	"goggins/pkg/sentinel"
)

// PostgresStore persists notes in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the notes table when missing. Called once at startup.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS notes (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS notes_owner_idx ON notes (owner_id, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("ensure notes schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, n *models.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, owner_id, title, content, created_at, is_deleted)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, n.ID, n.OwnerID, n.Title, n.Content, n.CreatedAt, n.IsDeleted)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, content, created_at, is_deleted
		FROM notes WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []*models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt, &n.IsDeleted); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, ownerID, noteID uuid.UUID) (*models.Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, content, created_at, is_deleted
		FROM notes WHERE owner_id = $1 AND id = $2
	`, ownerID, noteID)

	var n models.Note
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.CreatedAt, &n.IsDeleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan note: %w", err)
	}
	return &n, nil
}

func (s *PostgresStore) UpdateContent(ctx context.Context, ownerID, noteID uuid.UUID, title, content string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes SET title = $3, content = $4
		WHERE owner_id = $1 AND id = $2
	`, ownerID, noteID, title, content)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return checkAffected(res)
}

func (s *PostgresStore) MarkDeleted(ctx context.Context, ownerID, noteID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes SET is_deleted = TRUE
		WHERE owner_id = $1 AND id = $2
	`, ownerID, noteID)
	if err != nil {
		return fmt.Errorf("soft delete note: %w", err)
	}
	return checkAffected(res)
}

func (s *PostgresStore) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM notes WHERE owner_id = $1 AND NOT is_deleted
	`, ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
