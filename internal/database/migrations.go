package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	// Single documents table: the whole application is a document store
	// client, so storage is one key→JSONB mapping.
	`CREATE TABLE IF NOT EXISTS documents (
		key TEXT PRIMARY KEY,
		body JSONB NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// Prefix scans (standup history, token cleanup) walk key ranges.
	`CREATE INDEX IF NOT EXISTS idx_documents_key_pattern ON documents (key text_pattern_ops)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
