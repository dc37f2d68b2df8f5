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

package mailbox

import (
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/jhillyerd/enmime"

	"github.com/poiesic/mailvec/core"
)

// Parser decodes a single RFC 5322 message into a core.ParsedEmail.
type Parser struct {
	recipients RecipientExtractor
	logger     *slog.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser) error

// WithRecipientExtractor swaps the recipient adapter.
func WithRecipientExtractor(extractor RecipientExtractor) ParserOption {
	return func(p *Parser) error {
		if extractor == nil {
			return fmt.Errorf("recipient extractor cannot be nil")
		}
		p.recipients = extractor
		return nil
	}
}

// WithParserLogger sets the logger the parser reports through.
func WithParserLogger(logger *slog.Logger) ParserOption {
	return func(p *Parser) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		p.logger = logger
		return nil
	}
}

// NewParser creates a Parser with the default recipient adapter.
func NewParser(options ...ParserOption) (*Parser, error) {
	parser := &Parser{
		recipients: DefaultRecipientExtractor(),
		logger:     slog.Default().With("component", "mailbox-parser"),
	}
	for _, option := range options {
		if err := option(parser); err != nil {
			return nil, err
		}
	}
	return parser, nil
}

// Parse decodes one message. Decode failures are reported wrapped in
// ErrMessageParse so iterating callers can skip the message and continue.
func (p *Parser) Parse(r io.Reader) (*core.ParsedEmail, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMessageParse, err)
	}

	email := &core.Email{
		Id:        core.NewID(),
		MessageId: strings.TrimSpace(env.GetHeader("Message-Id")),
		ThreadId:  threadID(env),
		Subject:   env.GetHeader("Subject"),
		BodyText:  env.Text,
		Tier:      core.TierUnclassified,
	}

	if from, err := env.AddressList("From"); err == nil && len(from) > 0 {
		email.Sender = from[0].Address
		email.SenderName = from[0].Name
	}

	if raw := env.GetHeader("Date"); raw != "" {
		if date, err := mail.ParseDate(raw); err == nil {
			email.Date = date.UTC()
		} else {
			p.logger.Debug("unparseable date header", "value", raw)
		}
	}

	recipients := p.recipients.Extract(env)
	email.Recipients = recipients.Addresses
	if len(recipients.Addresses) == 0 {
		p.logger.Debug("no recipients extracted",
			"adapter", p.recipients.Version(), "reason", recipients.Reason)
	}

	parsed := &core.ParsedEmail{Email: email}
	for _, part := range append(env.Attachments, env.OtherParts...) {
		if len(part.Content) == 0 {
			continue
		}
		parsed.Attachments = append(parsed.Attachments, &core.RawAttachment{
			Filename:  part.FileName,
			MimeType:  part.ContentType,
			Content:   part.Content,
			SizeBytes: int64(len(part.Content)),
		})
	}
	email.HasAttachments = len(parsed.Attachments) > 0

	return parsed, nil
}

// threadID takes the root of the References chain, falling back to
// In-Reply-To, so every message in a thread lands on the same identifier.
func threadID(env *enmime.Envelope) string {
	if refs := strings.Fields(env.GetHeader("References")); len(refs) > 0 {
		return refs[0]
	}
	return strings.TrimSpace(env.GetHeader("In-Reply-To"))
}
