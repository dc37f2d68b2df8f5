package memory

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/mailvec/ai/mock"
	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embedStored(t *testing.T, store *Store, email *core.Email, text string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.AddEmail(ctx, email))
	vector := mock.DeterministicVector(text, testDim)
	require.NoError(t, store.SetEmailEmbedding(ctx, email.Id, vector, time.Now()))
}

func TestSearchEmails_SelfSimilarity(t *testing.T) {
	store := newTestStore()

	target := storedEmail(func(e *core.Email) { e.Subject = "budget review" })
	other := storedEmail(func(e *core.Email) { e.Subject = "lunch plans" })
	embedStored(t, store, target, "budget review")
	embedStored(t, store, other, "lunch plans")

	query := mock.DeterministicVector("budget review", testDim)
	matches, err := store.SearchEmails(context.Background(), query, 10, nil)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, target.Id, matches[0].Email.Id)
	assert.GreaterOrEqual(t, matches[0].Similarity, 0.99, "a row embedded from the query text should rank first")
	assert.GreaterOrEqual(t, matches[0].Similarity, matches[1].Similarity)
}

func TestSearchEmails_SkipsUnembedded(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	require.NoError(t, store.AddEmail(ctx, storedEmail()))

	query := mock.DeterministicVector("anything", testDim)
	matches, err := store.SearchEmails(ctx, query, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, matches, "rows without embeddings are not searchable")
}

func TestSearchEmails_DateFilterInclusive(t *testing.T) {
	store := newTestStore()

	inside := storedEmail(func(e *core.Email) {
		e.Date = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	})
	boundary := storedEmail(func(e *core.Email) {
		e.Date = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	})
	outside := storedEmail(func(e *core.Email) {
		e.Date = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	})
	embedStored(t, store, inside, "inside")
	embedStored(t, store, boundary, "boundary")
	embedStored(t, store, outside, "outside")

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	query := mock.DeterministicVector("query", testDim)

	matches, err := store.SearchEmails(context.Background(), query, 10, &storage.SearchFilters{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, match := range matches {
		assert.NotEqual(t, outside.Id, match.Email.Id)
	}
}

func TestSearchEmails_SenderFilter(t *testing.T) {
	store := newTestStore()

	alice := storedEmail()
	carol := storedEmail(func(e *core.Email) {
		e.Sender = "carol@other.org"
		e.SenderName = "Carol Jones"
	})
	embedStored(t, store, alice, "from alice")
	embedStored(t, store, carol, "from carol")

	query := mock.DeterministicVector("query", testDim)
	ctx := context.Background()

	// Case-insensitive substring over the address.
	matches, err := store.SearchEmails(ctx, query, 10, &storage.SearchFilters{Sender: "ALICE"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, alice.Id, matches[0].Email.Id)

	// Display name matches too.
	matches, err = store.SearchEmails(ctx, query, 10, &storage.SearchFilters{Sender: "jones"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, carol.Id, matches[0].Email.Id)
}

func TestSearchEmails_LimitAndDimension(t *testing.T) {
	store := newTestStore()

	for i := 0; i < 5; i++ {
		email := storedEmail()
		embedStored(t, store, email, email.Id)
	}

	query := mock.DeterministicVector("query", testDim)
	ctx := context.Background()

	matches, err := store.SearchEmails(ctx, query, 2, nil)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	_, err = store.SearchEmails(ctx, query, 0, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = store.SearchEmails(ctx, []float32{1, 2}, 10, nil)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestSearchAttachments(t *testing.T) {
	store := newTestStore()
	ctx := context.Background()

	email := storedEmail(func(e *core.Email) { e.Subject = "Q3 report" })
	require.NoError(t, store.AddEmail(ctx, email))

	att := &core.Attachment{
		Id:            core.NewID(),
		EmailId:       email.Id,
		Filename:      "q3.pdf",
		ExtractedText: "quarterly revenue figures",
	}
	require.NoError(t, store.AddAttachment(ctx, att))
	vector := mock.DeterministicVector(att.ExtractedText, testDim)
	require.NoError(t, store.SetAttachmentEmbedding(ctx, att.Id, vector, time.Now()))

	query := mock.DeterministicVector("quarterly revenue figures", testDim)
	matches, err := store.SearchAttachments(ctx, query, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	match := matches[0]
	assert.Equal(t, att.Id, match.Attachment.Id)
	assert.GreaterOrEqual(t, match.Similarity, 0.99)
	assert.Equal(t, "Q3 report", match.EmailSubject, "owning email context is joined in")
	assert.Equal(t, email.Sender, match.EmailSender)
}
