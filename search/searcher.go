// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/mailvec/ai"
	"github.com/poiesic/mailvec/backfill"
	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/storage"
)

// DefaultLimit caps each result kind when the query does not specify one.
const DefaultLimit = 10

// Query describes one search invocation. Limit caps emails and attachments
// independently. The date and sender filters apply to emails only.
type Query struct {
	Text            string
	Limit           int
	From            *time.Time
	To              *time.Time
	Sender          string
	EmailsOnly      bool
	AttachmentsOnly bool
}

// Results holds the ranked matches for both kinds.
type Results struct {
	Emails      []*core.EmailMatch
	Attachments []*core.AttachmentMatch
}

// Searcher embeds query text and ranks stored rows against it. The embedder
// must be the same model family used at backfill time; vectors from a
// different model compare meaninglessly.
type Searcher struct {
	store    storage.Store
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets the logger the searcher reports through.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a Searcher.
func NewSearcher(store storage.Store, embedder ai.Embedder, options ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	searcher := &Searcher{
		store:    store,
		embedder: embedder,
		logger:   slog.Default().With("component", "search"),
	}
	for _, option := range options {
		if err := option(searcher); err != nil {
			return nil, err
		}
	}
	return searcher, nil
}

// Search embeds the query and returns ranked matches. An archive with no
// embedded rows yields empty results, not an error.
func (s *Searcher) Search(ctx context.Context, query Query) (*Results, error) {
	text := backfill.Normalize(query.Text)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	if query.Limit < 0 {
		return nil, ErrInvalidLimit
	}

	limit := query.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	vector, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results := &Results{}

	if !query.AttachmentsOnly {
		filters := &storage.SearchFilters{
			From:   query.From,
			To:     query.To,
			Sender: query.Sender,
		}
		matches, err := s.store.SearchEmails(ctx, vector, limit, filters)
		if err != nil {
			return nil, fmt.Errorf("searching emails: %w", err)
		}
		for _, match := range matches {
			match.Snippet = Snippet(match.Email.BodyText, SnippetLength)
		}
		results.Emails = matches
	}

	if !query.EmailsOnly {
		matches, err := s.store.SearchAttachments(ctx, vector, limit)
		if err != nil {
			return nil, fmt.Errorf("searching attachments: %w", err)
		}
		for _, match := range matches {
			match.Snippet = Snippet(match.Attachment.ExtractedText, SnippetLength)
		}
		results.Attachments = matches
	}

	s.logger.Debug("search complete",
		"emails", len(results.Emails), "attachments", len(results.Attachments))
	return results, nil
}
