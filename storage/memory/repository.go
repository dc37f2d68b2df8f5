package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/storage"
)

// Store is an in-memory storage.Store implementation. Searches rank by
// brute-force cosine similarity over every embedded row, which is plenty for
// tests and small archives.
type Store struct {
	mu          sync.RWMutex
	dimensions  int
	emails      map[string]*core.Email
	attachments map[string]*core.Attachment
	closed      bool
}

var _ storage.Store = (*Store)(nil)

// NewStore creates an empty in-memory store. dimensions fixes the
// dimensionality every stored vector must have.
func NewStore(dimensions int) *Store {
	return &Store{
		dimensions:  dimensions,
		emails:      make(map[string]*core.Email),
		attachments: make(map[string]*core.Attachment),
	}
}

// AddEmail persists an email with its ingest-assigned tier.
func (s *Store) AddEmail(ctx context.Context, email *core.Email) error {
	if err := core.ValidateEmail(email); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStorageClosed
	}

	stored := cloneEmail(email)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.emails[stored.Id] = stored
	return nil
}

// GetEmail retrieves a single email by id.
func (s *Store) GetEmail(ctx context.Context, id string) (*core.Email, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	email, ok := s.emails[id]
	if !ok {
		return nil, fmt.Errorf("email %s: %w", id, storage.ErrNotFound)
	}
	return cloneEmail(email), nil
}

// DeleteEmails removes emails and, by cascade, their attachments.
func (s *Store) DeleteEmails(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStorageClosed
	}

	for _, id := range ids {
		if _, ok := s.emails[id]; !ok {
			return fmt.Errorf("email %s: %w", id, storage.ErrNotFound)
		}
	}

	for _, id := range ids {
		delete(s.emails, id)
		for attID, att := range s.attachments {
			if att.EmailId == id {
				delete(s.attachments, attID)
			}
		}
	}
	return nil
}

// UnembeddedEmails returns Vectorize-tier emails with no embedding,
// most recent first.
func (s *Store) UnembeddedEmails(ctx context.Context, limit int) ([]*core.Email, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	pending := make([]*core.Email, 0)
	for _, email := range s.emails {
		if email.Tier == core.TierVectorize && email.EmbeddedAt == nil {
			pending = append(pending, email)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].Date.Equal(pending[j].Date) {
			return pending[i].Date.After(pending[j].Date)
		}
		return pending[i].Id < pending[j].Id
	})

	if len(pending) > limit {
		pending = pending[:limit]
	}

	result := make([]*core.Email, len(pending))
	for i, email := range pending {
		result[i] = cloneEmail(email)
	}
	return result, nil
}

// SetEmailEmbedding writes an embedding vector and its timestamp.
func (s *Store) SetEmailEmbedding(ctx context.Context, id string, vector []float32, embeddedAt time.Time) error {
	if len(vector) != s.dimensions {
		return fmt.Errorf("%w: got %d, schema is %d", storage.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStorageClosed
	}

	email, ok := s.emails[id]
	if !ok {
		return fmt.Errorf("email %s: %w", id, storage.ErrNotFound)
	}

	email.Vector = append([]float32(nil), vector...)
	at := embeddedAt.UTC()
	email.EmbeddedAt = &at
	return nil
}

// AddAttachment persists an attachment under its owning email.
func (s *Store) AddAttachment(ctx context.Context, attachment *core.Attachment) error {
	if err := core.ValidateAttachment(attachment); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStorageClosed
	}

	if _, ok := s.emails[attachment.EmailId]; !ok {
		return fmt.Errorf("owning email %s: %w", attachment.EmailId, storage.ErrNotFound)
	}

	stored := cloneAttachment(attachment)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.attachments[stored.Id] = stored
	return nil
}

// GetAttachment retrieves a single attachment by id.
func (s *Store) GetAttachment(ctx context.Context, id string) (*core.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	attachment, ok := s.attachments[id]
	if !ok {
		return nil, fmt.Errorf("attachment %s: %w", id, storage.ErrNotFound)
	}
	return cloneAttachment(attachment), nil
}

// UnembeddedAttachments returns attachments with extracted text and no
// embedding, most recent first.
func (s *Store) UnembeddedAttachments(ctx context.Context, limit int) ([]*core.Attachment, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	pending := make([]*core.Attachment, 0)
	for _, att := range s.attachments {
		if att.HasText() && att.EmbeddedAt == nil {
			pending = append(pending, att)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].CreatedAt.Equal(pending[j].CreatedAt) {
			return pending[i].CreatedAt.After(pending[j].CreatedAt)
		}
		return pending[i].Id < pending[j].Id
	})

	if len(pending) > limit {
		pending = pending[:limit]
	}

	result := make([]*core.Attachment, len(pending))
	for i, att := range pending {
		result[i] = cloneAttachment(att)
	}
	return result, nil
}

// SetAttachmentEmbedding writes an embedding vector and its timestamp.
func (s *Store) SetAttachmentEmbedding(ctx context.Context, id string, vector []float32, embeddedAt time.Time) error {
	if len(vector) != s.dimensions {
		return fmt.Errorf("%w: got %d, schema is %d", storage.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStorageClosed
	}

	attachment, ok := s.attachments[id]
	if !ok {
		return fmt.Errorf("attachment %s: %w", id, storage.ErrNotFound)
	}

	attachment.Vector = append([]float32(nil), vector...)
	at := embeddedAt.UTC()
	attachment.EmbeddedAt = &at
	return nil
}

// Truncate deletes all stored data.
func (s *Store) Truncate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStorageClosed
	}

	s.emails = make(map[string]*core.Email)
	s.attachments = make(map[string]*core.Attachment)
	return nil
}

// Close marks the store closed. Subsequent operations fail with
// ErrStorageClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func cloneEmail(email *core.Email) *core.Email {
	clone := *email
	clone.Recipients = append([]string(nil), email.Recipients...)
	clone.Vector = append([]float32(nil), email.Vector...)
	if email.EmbeddedAt != nil {
		at := *email.EmbeddedAt
		clone.EmbeddedAt = &at
	}
	return &clone
}

func cloneAttachment(attachment *core.Attachment) *core.Attachment {
	clone := *attachment
	clone.Vector = append([]float32(nil), attachment.Vector...)
	if attachment.EmbeddedAt != nil {
		at := *attachment.EmbeddedAt
		clone.EmbeddedAt = &at
	}
	return &clone
}
