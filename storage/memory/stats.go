package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/storage"
)

// StatusCounts reports tier and embedding-progress counts.
func (s *Store) StatusCounts(ctx context.Context) (*storage.StatusCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	counts := &storage.StatusCounts{}
	for _, email := range s.emails {
		counts.TotalEmails++
		switch email.Tier {
		case core.TierMetadataOnly:
			counts.MetadataOnly++
		case core.TierVectorize:
			counts.Vectorize++
		}
		if email.EmbeddedAt != nil {
			counts.EmailsEmbedded++
		}
	}

	for _, att := range s.attachments {
		counts.Attachments++
		if att.HasText() {
			counts.AttachmentsWithText++
		}
		if att.EmbeddedAt != nil {
			counts.AttachmentsEmbedded++
		}
	}

	return counts, nil
}

// Summary reports archive-wide totals and the covered date range.
func (s *Store) Summary(ctx context.Context) (*storage.ArchiveSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	summary := &storage.ArchiveSummary{}
	contacts := make(map[string]struct{})

	for _, email := range s.emails {
		summary.TotalEmails++
		contacts[email.Sender] = struct{}{}

		if summary.EarliestEmail.IsZero() || email.Date.Before(summary.EarliestEmail) {
			summary.EarliestEmail = email.Date
		}
		if email.Date.After(summary.LatestEmail) {
			summary.LatestEmail = email.Date
		}
	}

	summary.UniqueContacts = len(contacts)
	if summary.TotalEmails > 0 {
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
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	type key struct{ year, month int }
	periods := make(map[key]*storage.TimelinePeriod)

	for _, email := range s.emails {
		k := key{year: email.Date.Year()}
		if monthly {
			k.month = int(email.Date.Month())
		}

		period, ok := periods[k]
		if !ok {
			period = &storage.TimelinePeriod{Year: k.year, Month: k.month}
			periods[k] = period
		}

		period.EmailCount++
		if email.IsSent {
			period.SentCount++
		} else {
			period.ReceivedCount++
		}
	}

	result := make([]*storage.TimelinePeriod, 0, len(periods))
	for _, period := range periods {
		result = append(result, period)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Month < result[j].Month
	})
	return result, nil
}

// Activity reports email volume by hour of day and by day of week.
func (s *Store) Activity(ctx context.Context) (*storage.ActivityBreakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	activity := &storage.ActivityBreakdown{}
	for _, email := range s.emails {
		if email.Date.IsZero() {
			continue
		}
		activity.ByHour[email.Date.Hour()]++
		activity.ByWeekday[int(email.Date.Weekday())]++
	}
	return activity, nil
}

// TopContacts reports the most frequent correspondents by email volume.
func (s *Store) TopContacts(ctx context.Context, limit int) ([]*storage.ContactStats, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	contacts := make(map[string]*storage.ContactStats)
	for _, email := range s.emails {
		stats, ok := contacts[email.Sender]
		if !ok {
			stats = &storage.ContactStats{
				Email:        email.Sender,
				Name:         email.SenderName,
				FirstContact: email.Date,
				LastContact:  email.Date,
			}
			contacts[email.Sender] = stats
		}

		stats.TotalEmails++
		if email.IsSent {
			stats.SentTo++
		} else {
			stats.ReceivedFrom++
		}
		if email.SenderName != "" {
			stats.Name = email.SenderName
		}
		if email.Date.Before(stats.FirstContact) {
			stats.FirstContact = email.Date
		}
		if email.Date.After(stats.LastContact) {
			stats.LastContact = email.Date
		}
	}

	result := make([]*storage.ContactStats, 0, len(contacts))
	for _, stats := range contacts {
		result = append(result, stats)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalEmails != result[j].TotalEmails {
			return result[i].TotalEmails > result[j].TotalEmails
		}
		return result[i].Email < result[j].Email
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
