package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/mailvec/ai/mock"
	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/storage"
)

// Integration tests run only when MAILVEC_TEST_DATABASE_URL points at a
// PostgreSQL instance with the pgvector extension available.
func integrationStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("MAILVEC_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("MAILVEC_TEST_DATABASE_URL not set")
	}

	store, err := NewStore(context.Background(), dsn, 8)
	require.NoError(t, err)
	require.NoError(t, store.Truncate(context.Background()))

	t.Cleanup(func() {
		_ = store.Truncate(context.Background())
		_ = store.Close()
	})
	return store
}

func integrationEmail() *core.Email {
	return &core.Email{
		Id:         core.NewID(),
		MessageId:  "<msg@example.com>",
		Date:       time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Sender:     "alice@example.com",
		SenderName: "Alice",
		Recipients: []string{"bob@example.com"},
		Subject:    "Project update",
		BodyText:   "body",
		Tier:       core.TierVectorize,
	}
}

func TestIntegration_EmailRoundTrip(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	email := integrationEmail()
	require.NoError(t, store.AddEmail(ctx, email))

	got, err := store.GetEmail(ctx, email.Id)
	require.NoError(t, err)
	assert.Equal(t, email.MessageId, got.MessageId)
	assert.Equal(t, email.Recipients, got.Recipients)
	assert.Equal(t, core.TierVectorize, got.Tier)
	assert.Nil(t, got.EmbeddedAt)
}

func TestIntegration_CascadeDelete(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	email := integrationEmail()
	require.NoError(t, store.AddEmail(ctx, email))

	att := &core.Attachment{
		Id:            core.NewID(),
		EmailId:       email.Id,
		Filename:      "report.pdf",
		ExtractedText: "quarterly numbers",
	}
	require.NoError(t, store.AddAttachment(ctx, att))
	require.NoError(t, store.DeleteEmails(ctx, email.Id))

	_, err := store.GetAttachment(ctx, att.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIntegration_AttachmentEligibility(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	email := integrationEmail()
	require.NoError(t, store.AddEmail(ctx, email))

	blank := &core.Attachment{
		Id: core.NewID(), EmailId: email.Id, Filename: "blank.txt",
		ExtractedText: " \n\t ",
	}
	withText := &core.Attachment{
		Id: core.NewID(), EmailId: email.Id, Filename: "notes.txt",
		ExtractedText: "meeting notes",
	}
	require.NoError(t, store.AddAttachment(ctx, blank))
	require.NoError(t, store.AddAttachment(ctx, withText))

	pending, err := store.UnembeddedAttachments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1, "whitespace-only text is not embeddable")
	assert.Equal(t, withText.Id, pending[0].Id)

	counts, err := store.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Attachments)
	assert.Equal(t, 1, counts.AttachmentsWithText)
}

func TestIntegration_Activity(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	// integrationEmail dates messages Saturday 2024-06-01 10:00 UTC.
	require.NoError(t, store.AddEmail(ctx, integrationEmail()))

	activity, err := store.Activity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, activity.ByHour[10])
	assert.Equal(t, 1, activity.ByWeekday[int(time.Saturday)])
}

func TestIntegration_EmbedAndSearch(t *testing.T) {
	store := integrationStore(t)
	ctx := context.Background()

	email := integrationEmail()
	require.NoError(t, store.AddEmail(ctx, email))

	pending, err := store.UnembeddedEmails(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	vector := mock.DeterministicVector("budget review", 8)
	require.NoError(t, store.SetEmailEmbedding(ctx, email.Id, vector, time.Now()))

	pending, err = store.UnembeddedEmails(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	matches, err := store.SearchEmails(ctx, vector, 10, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, email.Id, matches[0].Email.Id)
	assert.GreaterOrEqual(t, matches[0].Similarity, 0.99)

	// Sender filter is a case-insensitive substring.
	matches, err = store.SearchEmails(ctx, vector, 10, &storage.SearchFilters{Sender: "ALICE"})
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	matches, err = store.SearchEmails(ctx, vector, 10, &storage.SearchFilters{Sender: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, matches)
}
