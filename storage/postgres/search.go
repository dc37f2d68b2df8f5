package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/storage"
)

// SearchEmails ranks embedded emails by cosine similarity to the query
// vector, applying the optional filters before ranking. Ranking happens in
// the database: pgvector's <=> operator is cosine distance, so similarity
// is 1 - distance.
func (s *Store) SearchEmails(ctx context.Context, vector []float32, limit int, filters *storage.SearchFilters) ([]*core.EmailMatch, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: got %d, schema is %d", storage.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	args := []any{pgvector.NewVector(vector)}
	conditions := []string{"embedded_at IS NOT NULL"}

	if filters != nil {
		if filters.From != nil {
			args = append(args, *filters.From)
			conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
		}
		if filters.To != nil {
			args = append(args, *filters.To)
			conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
		}
		if filters.Sender != "" {
			args = append(args, "%"+filters.Sender+"%")
			conditions = append(conditions,
				fmt.Sprintf("(sender ILIKE $%d OR sender_name ILIKE $%d)", len(args), len(args)))
		}
	}

	args = append(args, limit)
	query := fmt.Sprintf(`SELECT `+emailColumns+`, 1 - (embedding <=> $1) AS similarity
		FROM emails
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT $%d`, strings.Join(conditions, " AND "), len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching emails: %w", err)
	}
	defer rows.Close()

	matches := make([]*core.EmailMatch, 0)
	for rows.Next() {
		var (
			email core.Email
			tier  int16
			vec   *pgvector.Vector
			match core.EmailMatch
		)
		err := rows.Scan(&email.Id, &email.MessageId, &email.ThreadId, &email.Date,
			&email.Sender, &email.SenderName, &email.Recipients,
			&email.Subject, &email.BodyText, &email.IsSent,
			&email.HasAttachments, &tier, &vec, &email.EmbeddedAt, &email.CreatedAt,
			&match.Similarity)
		if err != nil {
			return nil, fmt.Errorf("scanning email match: %w", err)
		}

		email.Tier = core.Tier(tier)
		if vec != nil {
			email.Vector = vec.Slice()
		}
		match.Email = &email
		matches = append(matches, &match)
	}
	return matches, rows.Err()
}

// SearchAttachments ranks embedded attachments by cosine similarity,
// joining each to its owning email for display context.
func (s *Store) SearchAttachments(ctx context.Context, vector []float32, limit int) ([]*core.AttachmentMatch, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: got %d, schema is %d", storage.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	query := `SELECT a.id, a.email_id, a.filename, a.mime_type, a.size_bytes,
			a.extracted_text, a.embedding, a.embedded_at, a.created_at,
			1 - (a.embedding <=> $1) AS similarity,
			e.date, e.sender, e.subject
		FROM attachments a
		JOIN emails e ON e.id = a.email_id
		WHERE a.embedded_at IS NOT NULL
		ORDER BY a.embedding <=> $1
		LIMIT $2`

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("searching attachments: %w", err)
	}
	defer rows.Close()

	matches := make([]*core.AttachmentMatch, 0)
	for rows.Next() {
		var (
			attachment core.Attachment
			vec        *pgvector.Vector
			match      core.AttachmentMatch
		)
		err := rows.Scan(&attachment.Id, &attachment.EmailId, &attachment.Filename,
			&attachment.MimeType, &attachment.SizeBytes, &attachment.ExtractedText,
			&vec, &attachment.EmbeddedAt, &attachment.CreatedAt,
			&match.Similarity, &match.EmailDate, &match.EmailSender, &match.EmailSubject)
		if err != nil {
			return nil, fmt.Errorf("scanning attachment match: %w", err)
		}

		if vec != nil {
			attachment.Vector = vec.Slice()
		}
		match.Attachment = &attachment
		matches = append(matches, &match)
	}
	return matches, rows.Err()
}
