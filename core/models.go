package core

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// Tier is the classification outcome for an email. It controls how much of
// the message is retained and whether it is eligible for embedding.
// The order is increasing retention and processing cost.
type Tier int

const (
	// TierUnclassified is the initial state before classification.
	// It is never persisted.
	TierUnclassified Tier = iota
	// TierExcluded emails are dropped entirely and never stored.
	TierExcluded
	// TierMetadataOnly emails are stored but never embedded.
	TierMetadataOnly
	// TierVectorize emails are stored and eligible for embedding.
	TierVectorize
)

// String returns a human-readable tier name.
func (t Tier) String() string {
	switch t {
	case TierUnclassified:
		return "unclassified"
	case TierExcluded:
		return "excluded"
	case TierMetadataOnly:
		return "metadata-only"
	case TierVectorize:
		return "vectorize"
	default:
		return "unknown"
	}
}

// NewID generates a unique identifier for domain entities.
func NewID() string {
	return uuid.NewString()
}

// SyntheticMessageID generates a deterministic message identifier for parsed
// emails that carry no Message-ID header. The same sender, subject and date
// always produce the same identifier.
func SyntheticMessageID(sender, subject string, date time.Time) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(sender))
	h.Write([]byte{0})
	h.Write([]byte(subject))
	h.Write([]byte{0})
	h.Write([]byte(date.UTC().Format(time.RFC3339)))
	return "<synthetic-" + hex.EncodeToString(h.Sum(nil)) + "@mailvec>"
}

// Email represents an ingested email. The Tier is assigned exactly once at
// ingest time; Vector and EmbeddedAt are populated later by the backfill and
// are either both set or both absent.
type Email struct {
	Id             string
	MessageId      string
	ThreadId       string // empty when the source carries no thread identifier
	Date           time.Time
	Sender         string
	SenderName     string
	Recipients     []string
	Subject        string
	BodyText       string
	IsSent         bool
	HasAttachments bool
	Tier           Tier
	Vector         []float32
	EmbeddedAt     *time.Time
	CreatedAt      time.Time
}

// BodyWordCount returns the whitespace-delimited token count of the body.
func (e *Email) BodyWordCount() int {
	return len(strings.Fields(e.BodyText))
}

// Embedded reports whether the email has been embedded.
func (e *Email) Embedded() bool {
	return e.EmbeddedAt != nil
}

// Attachment represents a file attached to an ingested email. Attachments are
// exclusively owned by one email and are deleted with it.
type Attachment struct {
	Id            string
	EmailId       string
	Filename      string
	MimeType      string
	SizeBytes     int64
	ExtractedText string // empty when extraction failed or was unsupported
	Vector        []float32
	EmbeddedAt    *time.Time
	CreatedAt     time.Time
}

// HasText reports whether extraction produced usable text.
func (a *Attachment) HasText() bool {
	return strings.TrimSpace(a.ExtractedText) != ""
}

// Embedded reports whether the attachment has been embedded.
func (a *Attachment) Embedded() bool {
	return a.EmbeddedAt != nil
}

// RawAttachment is the undecoded attachment payload produced by the parser.
type RawAttachment struct {
	Filename  string
	MimeType  string // empty when the source did not declare one
	Content   []byte
	SizeBytes int64
}

// ParsedEmail is a parsed message together with its raw attachment payloads,
// as yielded by a mailbox source before classification.
type ParsedEmail struct {
	Email       *Email
	Attachments []*RawAttachment
}

// EmailMatch is an email search hit with its similarity score and snippet.
type EmailMatch struct {
	Email      *Email
	Similarity float64
	Snippet    string
}

// AttachmentMatch is an attachment search hit joined to its owning email for
// display context.
type AttachmentMatch struct {
	Attachment   *Attachment
	Similarity   float64
	Snippet      string
	EmailDate    time.Time
	EmailSender  string
	EmailSubject string
}
