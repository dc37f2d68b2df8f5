package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/storage"
)

const attachmentColumns = `id, email_id, filename, mime_type, size_bytes,
	extracted_text, embedding, embedded_at, created_at`

// foreignKeyViolation is the PostgreSQL error code raised when an
// attachment references a missing email.
const foreignKeyViolation = "23503"

// AddAttachment persists an attachment under its owning email.
func (s *Store) AddAttachment(ctx context.Context, attachment *core.Attachment) error {
	if err := core.ValidateAttachment(attachment); err != nil {
		return err
	}

	query := `
		INSERT INTO attachments (id, email_id, filename, mime_type, size_bytes, extracted_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`

	_, err := s.pool.Exec(ctx, query,
		attachment.Id, attachment.EmailId, attachment.Filename,
		attachment.MimeType, attachment.SizeBytes, attachment.ExtractedText)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return fmt.Errorf("owning email %s: %w", attachment.EmailId, storage.ErrNotFound)
		}
		return fmt.Errorf("inserting attachment: %w", err)
	}
	return nil
}

// GetAttachment retrieves a single attachment by id.
func (s *Store) GetAttachment(ctx context.Context, id string) (*core.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = $1`

	attachment, err := scanAttachment(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("attachment %s: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("querying attachment: %w", err)
	}
	return attachment, nil
}

// UnembeddedAttachments returns attachments with extracted text and no
// embedding, most recent first. Eligibility trims whitespace, matching
// Attachment.HasText, so whitespace-only rows are never selected.
func (s *Store) UnembeddedAttachments(ctx context.Context, limit int) ([]*core.Attachment, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	query := `SELECT ` + attachmentColumns + `
		FROM attachments
		WHERE btrim(extracted_text, E' \t\r\n') <> '' AND embedded_at IS NULL
		ORDER BY created_at DESC, id
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying unembedded attachments: %w", err)
	}
	defer rows.Close()

	attachments := make([]*core.Attachment, 0)
	for rows.Next() {
		attachment, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		attachments = append(attachments, attachment)
	}
	return attachments, rows.Err()
}

// SetAttachmentEmbedding writes an embedding vector and its timestamp.
func (s *Store) SetAttachmentEmbedding(ctx context.Context, id string, vector []float32, embeddedAt time.Time) error {
	if len(vector) != s.dimensions {
		return fmt.Errorf("%w: got %d, schema is %d", storage.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	query := `UPDATE attachments SET embedding = $2, embedded_at = $3 WHERE id = $1`
	tag, err := s.pool.Exec(ctx, query, id, pgvector.NewVector(vector), embeddedAt.UTC())
	if err != nil {
		return fmt.Errorf("updating attachment embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("attachment %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func scanAttachment(row pgx.Row) (*core.Attachment, error) {
	var (
		attachment core.Attachment
		vec        *pgvector.Vector
	)
	err := row.Scan(&attachment.Id, &attachment.EmailId, &attachment.Filename,
		&attachment.MimeType, &attachment.SizeBytes, &attachment.ExtractedText,
		&vec, &attachment.EmbeddedAt, &attachment.CreatedAt)
	if err != nil {
		return nil, err
	}

	if vec != nil {
		attachment.Vector = vec.Slice()
	}
	return &attachment, nil
}
