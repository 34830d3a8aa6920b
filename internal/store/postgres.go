package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dimitrije/standup-api/internal/database"
	"github.com/jackc/pgx/v5"
)

// Postgres stores documents in a single key→JSONB table. Writes are
// whole-document upserts; there is no field-level update path.
type Postgres struct {
	db *database.DB
}

func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var body json.RawMessage
	err := s.db.Pool.QueryRow(ctx, `
		SELECT body FROM documents WHERE key = $1
	`, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", key, err)
	}
	return body, nil
}

func (s *Postgres) Put(ctx context.Context, key string, doc json.RawMessage) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO documents (key, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
	`, key, doc)
	if err != nil {
		return fmt.Errorf("failed to put document %s: %w", key, err)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, key string) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM documents WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return nil
}

func (s *Postgres) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT key FROM documents WHERE key LIKE $1 || '%' ORDER BY key
	`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys with prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
