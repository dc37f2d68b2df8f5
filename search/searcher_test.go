package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/mailvec/ai/mock"
	"github.com/poiesic/mailvec/backfill"
	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/storage/memory"
)

// seedEmbedded stores an email and embeds it the way the backfill would:
// templated, normalized, through the same mock provider the searcher uses.
func seedEmbedded(t *testing.T, store *memory.Store, embedder *mock.Embedder, subject, body string, date time.Time, sender string) *core.Email {
	t.Helper()
	ctx := context.Background()

	email := &core.Email{
		Id:        core.NewID(),
		MessageId: "<" + core.NewID() + "@example.com>",
		Date:      date,
		Sender:    sender,
		Subject:   subject,
		BodyText:  body,
		Tier:      core.TierVectorize,
	}
	require.NoError(t, store.AddEmail(ctx, email))

	input := backfill.Normalize(backfill.BuildEmailInput(email))
	vector, err := embedder.EmbedText(ctx, input)
	require.NoError(t, err)
	require.NoError(t, store.SetEmailEmbedding(ctx, email.Id, vector, time.Now()))
	return email
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	store := memory.NewStore(8)
	embedder := mock.NewEmbedder()

	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	budget := seedEmbedded(t, store, embedder, "Budget", "quarterly budget numbers", date, "alice@example.com")
	seedEmbedded(t, store, embedder, "Lunch", "where should we eat", date, "bob@example.com")

	searcher, err := NewSearcher(store, embedder)
	require.NoError(t, err)

	// Embed the exact stored input as the query: its row must rank first
	// with similarity ~1.
	query := backfill.Normalize(backfill.BuildEmailInput(budget))
	results, err := searcher.Search(context.Background(), Query{Text: query})
	require.NoError(t, err)

	require.Len(t, results.Emails, 2)
	assert.Equal(t, budget.Id, results.Emails[0].Email.Id)
	assert.GreaterOrEqual(t, results.Emails[0].Similarity, 0.99)
}

func TestSearch_EmptyArchive(t *testing.T) {
	searcher, err := NewSearcher(memory.NewStore(8), mock.NewEmbedder())
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), Query{Text: "anything"})
	require.NoError(t, err, "an unembedded archive returns no matches, not an error")
	assert.Empty(t, results.Emails)
	assert.Empty(t, results.Attachments)
}

func TestSearch_EmptyQuery(t *testing.T) {
	searcher, err := NewSearcher(memory.NewStore(8), mock.NewEmbedder())
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), Query{Text: "   \n "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_Filters(t *testing.T) {
	store := memory.NewStore(8)
	embedder := mock.NewEmbedder()

	march := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	june := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	inRange := seedEmbedded(t, store, embedder, "In range", "spring planning", march, "alice@example.com")
	seedEmbedded(t, store, embedder, "Out of range", "summer planning", june, "carol@example.com")

	searcher, err := NewSearcher(store, embedder)
	require.NoError(t, err)
	ctx := context.Background()

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	results, err := searcher.Search(ctx, Query{Text: "planning", From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, results.Emails, 1)
	assert.Equal(t, inRange.Id, results.Emails[0].Email.Id)

	results, err = searcher.Search(ctx, Query{Text: "planning", Sender: "CAROL"})
	require.NoError(t, err)
	require.Len(t, results.Emails, 1)
	assert.Equal(t, "carol@example.com", results.Emails[0].Email.Sender)
}

func TestSearch_KindToggles(t *testing.T) {
	store := memory.NewStore(8)
	embedder := mock.NewEmbedder()
	ctx := context.Background()

	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	owner := seedEmbedded(t, store, embedder, "Owner", "body", date, "alice@example.com")

	attachment := &core.Attachment{
		Id:            core.NewID(),
		EmailId:       owner.Id,
		Filename:      "notes.txt",
		ExtractedText: "attachment content",
	}
	require.NoError(t, store.AddAttachment(ctx, attachment))
	vector, err := embedder.EmbedText(ctx, attachment.ExtractedText)
	require.NoError(t, err)
	require.NoError(t, store.SetAttachmentEmbedding(ctx, attachment.Id, vector, time.Now()))

	searcher, err := NewSearcher(store, embedder)
	require.NoError(t, err)

	results, err := searcher.Search(ctx, Query{Text: "content", EmailsOnly: true})
	require.NoError(t, err)
	assert.NotEmpty(t, results.Emails)
	assert.Empty(t, results.Attachments)

	results, err = searcher.Search(ctx, Query{Text: "content", AttachmentsOnly: true})
	require.NoError(t, err)
	assert.Empty(t, results.Emails)
	assert.NotEmpty(t, results.Attachments)
	assert.Equal(t, "attachment content", results.Attachments[0].Snippet)
}

func TestSearch_LimitIsPerKind(t *testing.T) {
	store := memory.NewStore(8)
	embedder := mock.NewEmbedder()

	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedEmbedded(t, store, embedder, "Subject", "body text here", date, "alice@example.com")
	}

	searcher, err := NewSearcher(store, embedder)
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), Query{Text: "body", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results.Emails, 2)
}

func TestNewSearcher_Validation(t *testing.T) {
	_, err := NewSearcher(nil, mock.NewEmbedder())
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewSearcher(memory.NewStore(8), nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
