package postgres

import (
	"context"
	"fmt"
)

// ensureSchema creates the pgvector extension, tables, and indexes if they
// do not exist. The vector column width is fixed at store construction, so
// changing dimensions requires a fresh schema.
func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS emails (
			id              UUID PRIMARY KEY,
			message_id      TEXT NOT NULL,
			thread_id       TEXT NOT NULL DEFAULT '',
			date            TIMESTAMPTZ NOT NULL,
			sender          TEXT NOT NULL,
			sender_name     TEXT NOT NULL DEFAULT '',
			recipients      TEXT[] NOT NULL DEFAULT '{}',
			subject         TEXT NOT NULL DEFAULT '',
			body_text       TEXT NOT NULL DEFAULT '',
			body_word_count INT NOT NULL DEFAULT 0,
			is_sent         BOOLEAN NOT NULL DEFAULT FALSE,
			has_attachments BOOLEAN NOT NULL DEFAULT FALSE,
			tier            SMALLINT NOT NULL,
			embedding       vector(%d),
			embedded_at     TIMESTAMPTZ,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.dimensions),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS attachments (
			id             UUID PRIMARY KEY,
			email_id       UUID NOT NULL REFERENCES emails(id) ON DELETE CASCADE,
			filename       TEXT NOT NULL,
			mime_type      TEXT NOT NULL DEFAULT '',
			size_bytes     BIGINT NOT NULL DEFAULT 0,
			extracted_text TEXT NOT NULL DEFAULT '',
			embedding      vector(%d),
			embedded_at    TIMESTAMPTZ,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.dimensions),
		`CREATE INDEX IF NOT EXISTS idx_emails_date ON emails (date)`,
		`CREATE INDEX IF NOT EXISTS idx_emails_sender ON emails (sender)`,
		`CREATE INDEX IF NOT EXISTS idx_emails_pending ON emails (date) WHERE tier = 3 AND embedded_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_attachments_email ON attachments (email_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
