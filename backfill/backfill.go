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

package backfill

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/mailvec/ai"
	"github.com/poiesic/mailvec/storage"
)

const (
	// DefaultBatchSize is how many unembedded rows one pull requests.
	DefaultBatchSize = 100

	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// Result reports how many rows one Run embedded.
type Result struct {
	Emails      int
	Attachments int
}

// Backfiller embeds stored rows that do not have a vector yet.
type Backfiller struct {
	store       storage.Store
	embedder    ai.Embedder
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration
	progress    io.Writer
	logger      *slog.Logger
}

// Option configures a Backfiller.
type Option func(*Backfiller) error

// WithBatchSize sets how many rows each pull requests.
func WithBatchSize(size int) Option {
	return func(b *Backfiller) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		b.batchSize = size
		return nil
	}
}

// WithRetry sets the provider-call retry policy.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(b *Backfiller) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		b.maxAttempts = maxAttempts
		b.baseDelay = baseDelay
		return nil
	}
}

// WithProgress writes a progress line to the given writer, typically
// os.Stderr.
func WithProgress(writer io.Writer) Option {
	return func(b *Backfiller) error {
		b.progress = writer
		return nil
	}
}

// WithLogger sets the logger the backfiller reports through.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backfiller) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		b.logger = logger
		return nil
	}
}

// NewBackfiller creates a Backfiller with the default batch size and retry
// policy.
func NewBackfiller(store storage.Store, embedder ai.Embedder, options ...Option) (*Backfiller, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	backfiller := &Backfiller{
		store:       store,
		embedder:    embedder,
		batchSize:   DefaultBatchSize,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		logger:      slog.Default().With("component", "backfill"),
	}
	for _, option := range options {
		if err := option(backfiller); err != nil {
			return nil, err
		}
	}
	return backfiller, nil
}

// Run embeds pending emails, then pending attachments.
func (b *Backfiller) Run(ctx context.Context) (*Result, error) {
	emails, err := b.RunEmails(ctx)
	if err != nil {
		return &Result{Emails: emails}, err
	}

	attachments, err := b.RunAttachments(ctx)
	return &Result{Emails: emails, Attachments: attachments}, err
}

// RunEmails embeds Vectorize-tier emails without a vector, batch by batch,
// until a pull returns nothing embeddable. Returns the number embedded.
func (b *Backfiller) RunEmails(ctx context.Context) (int, error) {
	tracker := b.newTracker(ctx, true)

	embedded := 0
	for {
		rows, err := b.store.UnembeddedEmails(ctx, b.batchSize)
		if err != nil {
			return embedded, fmt.Errorf("pulling unembedded emails: %w", err)
		}
		if len(rows) == 0 {
			break
		}

		inputs := make([]string, len(rows))
		for i, row := range rows {
			inputs[i] = Normalize(BuildEmailInput(row))
		}

		vectors, err := b.embedSparse(ctx, inputs)
		if err != nil {
			return embedded, err
		}

		batchEmbedded := 0
		for i, vector := range vectors {
			if vector == nil {
				continue
			}
			if err := b.store.SetEmailEmbedding(ctx, rows[i].Id, vector, time.Now().UTC()); err != nil {
				return embedded, fmt.Errorf("writing email embedding: %w", err)
			}
			batchEmbedded++
		}

		embedded += batchEmbedded
		if tracker != nil {
			tracker.Increment(batchEmbedded)
		}

		// Rows with empty inputs stay unembedded and would be selected
		// again immediately. A batch that embeds nothing means only such
		// rows remain.
		if batchEmbedded == 0 {
			break
		}
	}

	if tracker != nil {
		tracker.Finish()
	}
	b.logger.Info("email backfill complete", "embedded", embedded)
	return embedded, nil
}

// RunAttachments embeds attachments with extracted text and no vector.
// Returns the number embedded.
func (b *Backfiller) RunAttachments(ctx context.Context) (int, error) {
	tracker := b.newTracker(ctx, false)

	embedded := 0
	for {
		rows, err := b.store.UnembeddedAttachments(ctx, b.batchSize)
		if err != nil {
			return embedded, fmt.Errorf("pulling unembedded attachments: %w", err)
		}
		if len(rows) == 0 {
			break
		}

		inputs := make([]string, len(rows))
		for i, row := range rows {
			inputs[i] = Normalize(row.ExtractedText)
		}

		vectors, err := b.embedSparse(ctx, inputs)
		if err != nil {
			return embedded, err
		}

		batchEmbedded := 0
		for i, vector := range vectors {
			if vector == nil {
				continue
			}
			if err := b.store.SetAttachmentEmbedding(ctx, rows[i].Id, vector, time.Now().UTC()); err != nil {
				return embedded, fmt.Errorf("writing attachment embedding: %w", err)
			}
			batchEmbedded++
		}

		embedded += batchEmbedded
		if tracker != nil {
			tracker.Increment(batchEmbedded)
		}
		if batchEmbedded == 0 {
			break
		}
	}

	if tracker != nil {
		tracker.Finish()
	}
	b.logger.Info("attachment backfill complete", "embedded", embedded)
	return embedded, nil
}

// embedSparse embeds the non-empty inputs in one provider call and restores
// positional correspondence: empty inputs get a nil vector.
func (b *Backfiller) embedSparse(ctx context.Context, inputs []string) ([][]float32, error) {
	indices := make([]int, 0, len(inputs))
	texts := make([]string, 0, len(inputs))
	for i, input := range inputs {
		if strings.TrimSpace(input) == "" {
			continue
		}
		indices = append(indices, i)
		texts = append(texts, input)
	}

	vectors := make([][]float32, len(inputs))
	if len(texts) == 0 {
		return vectors, nil
	}

	var embedded [][]float32
	err := retryWithBackoff(ctx, func() error {
		var embedErr error
		embedded, embedErr = b.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, b.maxAttempts, b.baseDelay)
	if err != nil {
		return nil, fmt.Errorf("embedding batch of %d: %w", len(texts), err)
	}
	if len(embedded) != len(texts) {
		return nil, fmt.Errorf("provider returned %d vectors for %d inputs", len(embedded), len(texts))
	}

	for i, vector := range embedded {
		vectors[indices[i]] = vector
	}
	return vectors, nil
}

// newTracker sizes a progress tracker from the store's pending counts.
// Returns nil when no progress writer is configured.
func (b *Backfiller) newTracker(ctx context.Context, emails bool) *ProgressTracker {
	if b.progress == nil {
		return nil
	}

	counts, err := b.store.StatusCounts(ctx)
	if err != nil {
		return nil
	}

	total := counts.Vectorize - counts.EmailsEmbedded
	if !emails {
		total = counts.AttachmentsWithText - counts.AttachmentsEmbedded
	}
	if total < 0 {
		total = 0
	}

	tracker := NewProgressTracker(b.progress, total, b.batchSize)
	tracker.Start()
	return tracker
}
