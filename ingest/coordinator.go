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

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/poiesic/mailvec/classify"
	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/extract"
	"github.com/poiesic/mailvec/mailbox"
	"github.com/poiesic/mailvec/storage"
)

// Counts accumulates the outcome of one ingest run.
type Counts struct {
	Total               int
	Excluded            int
	MetadataOnly        int
	Vectorize           int
	Attachments         int
	AttachmentsWithText int
	Skipped             int
}

// Coordinator drives one ingest run: parse, classify, persist.
type Coordinator struct {
	store  storage.Store
	rules  *classify.Ruleset
	owner  string
	logger *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithRuleset swaps the classification ruleset.
func WithRuleset(rules *classify.Ruleset) Option {
	return func(c *Coordinator) error {
		if rules == nil {
			return fmt.Errorf("ruleset cannot be nil")
		}
		c.rules = rules
		return nil
	}
}

// WithOwnerAddress marks messages sent from this address as sent rather
// than received.
func WithOwnerAddress(address string) Option {
	return func(c *Coordinator) error {
		c.owner = strings.ToLower(strings.TrimSpace(address))
		return nil
	}
}

// WithLogger sets the logger the coordinator reports through.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates a Coordinator with the default ruleset.
func NewCoordinator(store storage.Store, options ...Option) (*Coordinator, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	coordinator := &Coordinator{
		store:  store,
		rules:  classify.DefaultRuleset(),
		logger: slog.Default().With("component", "ingest"),
	}
	for _, option := range options {
		if err := option(coordinator); err != nil {
			return nil, err
		}
	}
	return coordinator, nil
}

// Run consumes the source to exhaustion. Per-message parse and validation
// failures are skipped and counted; a store failure ends the run early and
// returns the counts accumulated up to that point.
func (c *Coordinator) Run(ctx context.Context, source mailbox.Source) (*Counts, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	counts := &Counts{}
	for {
		parsed, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if errors.Is(err, mailbox.ErrMessageParse) {
				counts.Skipped++
				c.logger.Warn("skipping undecodable message", "error", err)
				continue
			}
			return counts, err
		}

		if err := c.processMessage(ctx, parsed, counts); err != nil {
			return counts, err
		}
	}

	c.logger.Info("ingest complete",
		"total", counts.Total,
		"excluded", counts.Excluded,
		"metadata_only", counts.MetadataOnly,
		"vectorize", counts.Vectorize,
		"attachments", counts.Attachments,
		"attachments_with_text", counts.AttachmentsWithText,
		"skipped", counts.Skipped)
	return counts, nil
}

func (c *Coordinator) processMessage(ctx context.Context, parsed *core.ParsedEmail, counts *Counts) error {
	counts.Total++
	email := parsed.Email

	if email.MessageId == "" {
		email.MessageId = core.SyntheticMessageID(email.Sender, email.Subject, email.Date)
	}
	if c.owner != "" && strings.EqualFold(email.Sender, c.owner) {
		email.IsSent = true
	}

	email.Tier = c.rules.Classify(email, hasCalendarAttachment(parsed.Attachments))
	if email.Tier == core.TierExcluded {
		counts.Excluded++
		return nil
	}

	if err := c.store.AddEmail(ctx, email); err != nil {
		if errors.Is(err, core.ErrInvalidEmail) {
			counts.Skipped++
			c.logger.Warn("skipping invalid message", "message_id", email.MessageId, "error", err)
			return nil
		}
		return fmt.Errorf("persisting message: %w", err)
	}

	switch email.Tier {
	case core.TierMetadataOnly:
		counts.MetadataOnly++
	case core.TierVectorize:
		counts.Vectorize++
	}

	if email.Tier == core.TierVectorize {
		c.processAttachments(ctx, email, parsed.Attachments, counts)
	}
	return nil
}

// processAttachments stores one row per raw attachment. Extraction failures
// leave extracted_text empty but never abort the run; a row the store
// rejects is counted as skipped.
func (c *Coordinator) processAttachments(ctx context.Context, email *core.Email, raw []*core.RawAttachment, counts *Counts) {
	for _, attachment := range raw {
		mimeType := attachment.MimeType
		if mimeType == "" {
			mimeType = extract.MimeType(attachment.Filename)
		}

		result := extract.Text(attachment.Filename, mimeType, attachment.Content)
		text := ""
		if result.OK() {
			text = result.Text
		} else if result.Status != extract.StatusUnsupported {
			c.logger.Debug("attachment extraction failed",
				"filename", attachment.Filename, "status", result.Status.String())
		}

		row := &core.Attachment{
			Id:            core.NewID(),
			EmailId:       email.Id,
			Filename:      attachment.Filename,
			MimeType:      mimeType,
			SizeBytes:     attachment.SizeBytes,
			ExtractedText: text,
		}
		if err := c.store.AddAttachment(ctx, row); err != nil {
			counts.Skipped++
			c.logger.Warn("skipping attachment", "filename", attachment.Filename, "error", err)
			continue
		}

		counts.Attachments++
		if text != "" {
			counts.AttachmentsWithText++
		}
	}
}

func hasCalendarAttachment(attachments []*core.RawAttachment) bool {
	for _, attachment := range attachments {
		if strings.Contains(strings.ToLower(attachment.MimeType), "text/calendar") {
			return true
		}
		if strings.HasSuffix(strings.ToLower(attachment.Filename), ".ics") {
			return true
		}
	}
	return false
}
