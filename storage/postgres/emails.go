package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/storage"
)

const emailColumns = `id, message_id, thread_id, date, sender, sender_name,
	recipients, subject, body_text, is_sent, has_attachments, tier,
	embedding, embedded_at, created_at`

// AddEmail persists an email with its ingest-assigned tier.
func (s *Store) AddEmail(ctx context.Context, email *core.Email) error {
	if err := core.ValidateEmail(email); err != nil {
		return err
	}

	query := `
		INSERT INTO emails (id, message_id, thread_id, date, sender, sender_name,
			recipients, subject, body_text, body_word_count, is_sent, has_attachments, tier, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())`

	_, err := s.pool.Exec(ctx, query,
		email.Id, email.MessageId, email.ThreadId, email.Date,
		email.Sender, email.SenderName, email.Recipients,
		email.Subject, email.BodyText, email.BodyWordCount(), email.IsSent,
		email.HasAttachments, int16(email.Tier))
	if err != nil {
		return fmt.Errorf("inserting email: %w", err)
	}
	return nil
}

// GetEmail retrieves a single email by id.
func (s *Store) GetEmail(ctx context.Context, id string) (*core.Email, error) {
	query := `SELECT ` + emailColumns + ` FROM emails WHERE id = $1`

	email, err := scanEmail(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("email %s: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("querying email: %w", err)
	}
	return email, nil
}

// DeleteEmails removes emails and, by cascade, their attachments.
func (s *Store) DeleteEmails(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM emails WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("deleting emails: %w", err)
	}
	if int(tag.RowsAffected()) != len(ids) {
		return fmt.Errorf("deleted %d of %d emails: %w", tag.RowsAffected(), len(ids), storage.ErrNotFound)
	}
	return nil
}

// UnembeddedEmails returns Vectorize-tier emails with no embedding,
// most recent first.
func (s *Store) UnembeddedEmails(ctx context.Context, limit int) ([]*core.Email, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	query := `SELECT ` + emailColumns + `
		FROM emails
		WHERE tier = $1 AND embedded_at IS NULL
		ORDER BY date DESC, id
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, int16(core.TierVectorize), limit)
	if err != nil {
		return nil, fmt.Errorf("querying unembedded emails: %w", err)
	}
	defer rows.Close()

	emails := make([]*core.Email, 0)
	for rows.Next() {
		email, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// SetEmailEmbedding writes an embedding vector and its timestamp.
func (s *Store) SetEmailEmbedding(ctx context.Context, id string, vector []float32, embeddedAt time.Time) error {
	if len(vector) != s.dimensions {
		return fmt.Errorf("%w: got %d, schema is %d", storage.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	query := `UPDATE emails SET embedding = $2, embedded_at = $3 WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, pgvector.NewVector(vector), embeddedAt.UTC())
	if err != nil {
		return fmt.Errorf("updating email embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("email %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanEmail(row pgx.Row) (*core.Email, error) {
	var (
		email core.Email
		tier  int16
		vec   *pgvector.Vector
	)
	err := row.Scan(&email.Id, &email.MessageId, &email.ThreadId, &email.Date,
		&email.Sender, &email.SenderName, &email.Recipients,
		&email.Subject, &email.BodyText, &email.IsSent,
		&email.HasAttachments, &tier, &vec, &email.EmbeddedAt, &email.CreatedAt)
	if err != nil {
		return nil, err
	}

	email.Tier = core.Tier(tier)
	if vec != nil {
		email.Vector = vec.Slice()
	}
	return &email, nil
}
