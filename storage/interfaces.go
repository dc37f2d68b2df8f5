package storage

import (
	"context"
	"time"

	"github.com/poiesic/mailvec/core"
)

// SearchFilters narrows an email similarity search. Filters apply to emails
// only; attachment search is unfiltered. A nil field means no constraint.
type SearchFilters struct {
	// From is the inclusive lower bound on the email date.
	From *time.Time

	// To is the inclusive upper bound on the email date.
	To *time.Time

	// Sender is matched case-insensitively as a substring of either the
	// sender address or the sender display name.
	Sender string
}

// StatusCounts aggregates archive state for the status command. Excluded
// emails are never stored, so they do not appear here; the ingest run reports
// them from its own counters.
type StatusCounts struct {
	TotalEmails         int
	MetadataOnly        int
	Vectorize           int
	EmailsEmbedded      int
	Attachments         int
	AttachmentsWithText int
	AttachmentsEmbedded int
}

// ArchiveSummary is a high-level overview of the stored archive.
type ArchiveSummary struct {
	TotalEmails    int
	UniqueContacts int
	EarliestEmail  time.Time
	LatestEmail    time.Time
	AvgPerDay      float64
}

// TimelinePeriod is email volume for one year or one month.
// Month is zero when grouping by year.
type TimelinePeriod struct {
	Year          int
	Month         int
	EmailCount    int
	SentCount     int
	ReceivedCount int
}

// ActivityBreakdown is email volume by hour of day and by day of week.
// Weekday indices follow time.Weekday (Sunday is 0). Emails with an
// unparseable (zero) date are not counted.
type ActivityBreakdown struct {
	ByHour    [24]int
	ByWeekday [7]int
}

// ContactStats is per-correspondent email volume.
type ContactStats struct {
	Email        string
	Name         string
	TotalEmails  int
	SentTo       int
	ReceivedFrom int
	FirstContact time.Time
	LastContact  time.Time
}

// Repository provides operations common to all repositories.
type Repository interface {
	// Truncate deletes all stored data.
	Truncate(ctx context.Context) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// EmailRepository provides operations for managing stored emails.
type EmailRepository interface {
	Repository

	// AddEmail persists an email with its ingest-assigned tier.
	// The caller must never pass an Excluded or Unclassified email.
	// No uniqueness is enforced on MessageId: re-ingesting the same source
	// re-inserts every email.
	AddEmail(ctx context.Context, email *core.Email) error

	// GetEmail retrieves a single email by id.
	// Returns ErrNotFound if the email doesn't exist.
	GetEmail(ctx context.Context, id string) (*core.Email, error)

	// DeleteEmails removes emails by id. Owned attachments are removed with
	// their email (cascade).
	DeleteEmails(ctx context.Context, ids ...string) error

	// UnembeddedEmails returns up to limit Vectorize-tier emails with no
	// embedding yet, most recent first.
	UnembeddedEmails(ctx context.Context, limit int) ([]*core.Email, error)

	// SetEmailEmbedding writes an embedding vector and its timestamp.
	// This is the only mutation performed on a stored email.
	SetEmailEmbedding(ctx context.Context, id string, vector []float32, embeddedAt time.Time) error

	// SearchEmails returns up to limit embedded emails nearest to the query
	// vector by cosine distance, optionally filtered. Similarity is
	// 1 - cosine distance; results are ordered by descending similarity.
	SearchEmails(ctx context.Context, vector []float32, limit int, filters *SearchFilters) ([]*core.EmailMatch, error)
}

// AttachmentRepository provides operations for managing stored attachments.
type AttachmentRepository interface {
	Repository

	// AddAttachment persists an attachment under its owning email.
	AddAttachment(ctx context.Context, attachment *core.Attachment) error

	// GetAttachment retrieves a single attachment by id.
	// Returns ErrNotFound if the attachment doesn't exist.
	GetAttachment(ctx context.Context, id string) (*core.Attachment, error)

	// UnembeddedAttachments returns up to limit attachments that have
	// extracted text but no embedding yet, most recent first.
	UnembeddedAttachments(ctx context.Context, limit int) ([]*core.Attachment, error)

	// SetAttachmentEmbedding writes an embedding vector and its timestamp.
	SetAttachmentEmbedding(ctx context.Context, id string, vector []float32, embeddedAt time.Time) error

	// SearchAttachments returns up to limit embedded attachments nearest to
	// the query vector by cosine distance, joined to their owning email for
	// display context.
	SearchAttachments(ctx context.Context, vector []float32, limit int) ([]*core.AttachmentMatch, error)
}

// StatsRepository provides aggregate queries over the stored archive.
type StatsRepository interface {
	// StatusCounts reports tier and embedding-progress counts.
	StatusCounts(ctx context.Context) (*StatusCounts, error)

	// Summary reports archive-wide totals and the covered date range.
	Summary(ctx context.Context) (*ArchiveSummary, error)

	// Timeline reports email volume grouped by year, or by month when
	// monthly is true, in chronological order.
	Timeline(ctx context.Context, monthly bool) ([]*TimelinePeriod, error)

	// Activity reports email volume by hour of day and by day of week.
	Activity(ctx context.Context) (*ActivityBreakdown, error)

	// TopContacts reports the limit most frequent correspondents.
	TopContacts(ctx context.Context, limit int) ([]*ContactStats, error)
}

// Store aggregates every repository facet of one archive backend.
type Store interface {
	EmailRepository
	AttachmentRepository
	StatsRepository
}
