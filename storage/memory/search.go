package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/storage"
)

// SearchEmails ranks embedded emails by cosine similarity to the query
// vector, applying the optional filters before ranking.
func (s *Store) SearchEmails(ctx context.Context, vector []float32, limit int, filters *storage.SearchFilters) ([]*core.EmailMatch, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: got %d, schema is %d", storage.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	matches := make([]*core.EmailMatch, 0)
	for _, email := range s.emails {
		if email.EmbeddedAt == nil || len(email.Vector) == 0 {
			continue
		}
		if !matchesFilters(email, filters) {
			continue
		}

		matches = append(matches, &core.EmailMatch{
			Email:      cloneEmail(email),
			Similarity: cosineSimilarity(vector, email.Vector),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Email.Id < matches[j].Email.Id
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// SearchAttachments ranks embedded attachments by cosine similarity, joining
// each to its owning email for display context.
func (s *Store) SearchAttachments(ctx context.Context, vector []float32, limit int) ([]*core.AttachmentMatch, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: got %d, schema is %d", storage.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	matches := make([]*core.AttachmentMatch, 0)
	for _, att := range s.attachments {
		if att.EmbeddedAt == nil || len(att.Vector) == 0 {
			continue
		}

		match := &core.AttachmentMatch{
			Attachment: cloneAttachment(att),
			Similarity: cosineSimilarity(vector, att.Vector),
		}
		if owner, ok := s.emails[att.EmailId]; ok {
			match.EmailDate = owner.Date
			match.EmailSender = owner.Sender
			match.EmailSubject = owner.Subject
		}
		matches = append(matches, match)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Attachment.Id < matches[j].Attachment.Id
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func matchesFilters(email *core.Email, filters *storage.SearchFilters) bool {
	if filters == nil {
		return true
	}

	if filters.From != nil && email.Date.Before(*filters.From) {
		return false
	}
	if filters.To != nil && email.Date.After(*filters.To) {
		return false
	}

	if filters.Sender != "" {
		needle := strings.ToLower(filters.Sender)
		if !strings.Contains(strings.ToLower(email.Sender), needle) &&
			!strings.Contains(strings.ToLower(email.SenderName), needle) {
			return false
		}
	}

	return true
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero vectors yield zero similarity.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
