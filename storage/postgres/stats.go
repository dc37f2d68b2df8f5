package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/storage"
)

// StatusCounts reports tier and embedding-progress counts.
func (s *Store) StatusCounts(ctx context.Context) (*storage.StatusCounts, error) {
	counts := &storage.StatusCounts{}

	emailQuery := `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE tier = $1),
			COUNT(*) FILTER (WHERE tier = $2),
			COUNT(*) FILTER (WHERE embedded_at IS NOT NULL)
		FROM emails`
	err := s.pool.QueryRow(ctx, emailQuery,
		int16(core.TierMetadataOnly), int16(core.TierVectorize)).
		Scan(&counts.TotalEmails, &counts.MetadataOnly, &counts.Vectorize, &counts.EmailsEmbedded)
	if err != nil {
		return nil, fmt.Errorf("counting emails: %w", err)
	}

	attachmentQuery := `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE btrim(extracted_text, E' \t\r\n') <> ''),
			COUNT(*) FILTER (WHERE embedded_at IS NOT NULL)
		FROM attachments`
	err = s.pool.QueryRow(ctx, attachmentQuery).
		Scan(&counts.Attachments, &counts.AttachmentsWithText, &counts.AttachmentsEmbedded)
	if err != nil {
		return nil, fmt.Errorf("counting attachments: %w", err)
	}

	return counts, nil
}

// Summary reports archive-wide totals and the covered date range.
func (s *Store) Summary(ctx context.Context) (*storage.ArchiveSummary, error) {
	summary := &storage.ArchiveSummary{}

	query := `SELECT COUNT(*), COUNT(DISTINCT sender), MIN(date), MAX(date) FROM emails`
	var earliest, latest *time.Time
	err := s.pool.QueryRow(ctx, query).
		Scan(&summary.TotalEmails, &summary.UniqueContacts, &earliest, &latest)
	if err != nil {
		return nil, fmt.Errorf("summarizing archive: %w", err)
	}

	if summary.TotalEmails > 0 {
		summary.EarliestEmail = *earliest
		summary.LatestEmail = *latest
		days := summary.LatestEmail.Sub(summary.EarliestEmail).Hours() / 24
		if days < 1 {
			days = 1
		}
		summary.AvgPerDay = float64(summary.TotalEmails) / days
	}
	return summary, nil
}

// Timeline reports email volume grouped by year or by month.
func (s *Store) Timeline(ctx context.Context, monthly bool) ([]*storage.TimelinePeriod, error) {
	monthExpr := "0"
	if monthly {
		monthExpr = "EXTRACT(MONTH FROM date)::int"
	}

	query := fmt.Sprintf(`SELECT
			EXTRACT(YEAR FROM date)::int AS year,
			%s AS month,
			COUNT(*),
			COUNT(*) FILTER (WHERE is_sent),
			COUNT(*) FILTER (WHERE NOT is_sent)
		FROM emails
		GROUP BY year, month
		ORDER BY year, month`, monthExpr)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying timeline: %w", err)
	}
	defer rows.Close()

	periods := make([]*storage.TimelinePeriod, 0)
	for rows.Next() {
		period := &storage.TimelinePeriod{}
		err := rows.Scan(&period.Year, &period.Month,
			&period.EmailCount, &period.SentCount, &period.ReceivedCount)
		if err != nil {
			return nil, fmt.Errorf("scanning timeline period: %w", err)
		}
		periods = append(periods, period)
	}
	return periods, rows.Err()
}

// Activity reports email volume by hour of day and by day of week.
// EXTRACT(DOW) numbers Sunday as 0, matching time.Weekday. Rows carrying
// the zero date stand for unparseable Date headers and are left out.
func (s *Store) Activity(ctx context.Context) (*storage.ActivityBreakdown, error) {
	activity := &storage.ActivityBreakdown{}

	query := `SELECT
			EXTRACT(HOUR FROM date)::int AS hour,
			EXTRACT(DOW FROM date)::int AS weekday,
			COUNT(*)
		FROM emails
		WHERE date > '0001-01-01'
		GROUP BY hour, weekday`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying activity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hour, weekday, count int
		if err := rows.Scan(&hour, &weekday, &count); err != nil {
			return nil, fmt.Errorf("scanning activity bucket: %w", err)
		}
		if hour < 0 || hour > 23 || weekday < 0 || weekday > 6 {
			return nil, fmt.Errorf("%w: activity bucket hour=%d weekday=%d", storage.ErrInvalidQuery, hour, weekday)
		}
		activity.ByHour[hour] += count
		activity.ByWeekday[weekday] += count
	}
	return activity, rows.Err()
}

// TopContacts reports the most frequent correspondents by email volume.
func (s *Store) TopContacts(ctx context.Context, limit int) ([]*storage.ContactStats, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	query := `SELECT
			sender,
			MAX(sender_name),
			COUNT(*),
			COUNT(*) FILTER (WHERE is_sent),
			COUNT(*) FILTER (WHERE NOT is_sent),
			MIN(date),
			MAX(date)
		FROM emails
		GROUP BY sender
		ORDER BY COUNT(*) DESC, sender
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*storage.ContactStats, 0)
	for rows.Next() {
		stats := &storage.ContactStats{}
		err := rows.Scan(&stats.Email, &stats.Name, &stats.TotalEmails,
			&stats.SentTo, &stats.ReceivedFrom, &stats.FirstContact, &stats.LastContact)
		if err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		contacts = append(contacts, stats)
	}
	return contacts, rows.Err()
}
