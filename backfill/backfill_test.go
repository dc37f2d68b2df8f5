package backfill

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/mailvec/ai/mock"
	"github.com/poiesic/mailvec/core"
	"github.com/poiesic/mailvec/storage/memory"
)

func seedEmail(t *testing.T, store *memory.Store, tier core.Tier, body string) *core.Email {
	t.Helper()
	email := &core.Email{
		Id:        core.NewID(),
		MessageId: "<" + core.NewID() + "@example.com>",
		Date:      time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
		Sender:    "alice@example.com",
		Subject:   "Project update",
		BodyText:  body,
		Tier:      tier,
	}
	require.NoError(t, store.AddEmail(context.Background(), email))
	return email
}

func seedAttachment(t *testing.T, store *memory.Store, emailId, text string) *core.Attachment {
	t.Helper()
	attachment := &core.Attachment{
		Id:            core.NewID(),
		EmailId:       emailId,
		Filename:      "notes.txt",
		ExtractedText: text,
	}
	require.NoError(t, store.AddAttachment(context.Background(), attachment))
	return attachment
}

func TestRunEmails(t *testing.T) {
	store := memory.NewStore(8)
	for i := 0; i < 3; i++ {
		seedEmail(t, store, core.TierVectorize, "discussion about the project timeline")
	}
	seedEmail(t, store, core.TierMetadataOnly, "short")

	backfiller, err := NewBackfiller(store, mock.NewEmbedder(), WithBatchSize(2))
	require.NoError(t, err)

	embedded, err := backfiller.RunEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, embedded, "metadata-only emails are not embedded")

	counts, err := store.StatusCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, counts.EmailsEmbedded)

	// A second run finds nothing to do.
	embedded, err = backfiller.RunEmails(context.Background())
	require.NoError(t, err)
	assert.Zero(t, embedded)
}

func TestRunAttachments(t *testing.T) {
	store := memory.NewStore(8)
	owner := seedEmail(t, store, core.TierVectorize, "body text long enough")
	seedAttachment(t, store, owner.Id, "extracted attachment text")

	backfiller, err := NewBackfiller(store, mock.NewEmbedder())
	require.NoError(t, err)

	embedded, err := backfiller.RunAttachments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, embedded)

	counts, err := store.StatusCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, counts.AttachmentsEmbedded)
}

func TestRun_Both(t *testing.T) {
	store := memory.NewStore(8)
	owner := seedEmail(t, store, core.TierVectorize, "body text")
	seedAttachment(t, store, owner.Id, "attachment text")

	backfiller, err := NewBackfiller(store, mock.NewEmbedder())
	require.NoError(t, err)

	result, err := backfiller.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Emails)
	assert.Equal(t, 1, result.Attachments)
}

func TestEmbedSparse_PositionalNones(t *testing.T) {
	store := memory.NewStore(8)
	embedder := mock.NewEmbedder()

	var captured []string
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		captured = texts
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = mock.DeterministicVector(text, 8)
		}
		return vectors, nil
	}

	backfiller, err := NewBackfiller(store, embedder)
	require.NoError(t, err)

	vectors, err := backfiller.embedSparse(context.Background(), []string{"", "hello", "  "})
	require.NoError(t, err)

	assert.Equal(t, []string{"hello"}, captured, "empty inputs never reach the provider")
	require.Len(t, vectors, 3)
	assert.Nil(t, vectors[0])
	assert.NotNil(t, vectors[1])
	assert.Nil(t, vectors[2])
}

func TestEmbedSparse_AllEmpty(t *testing.T) {
	store := memory.NewStore(8)
	embedder := mock.NewEmbedder()

	backfiller, err := NewBackfiller(store, embedder)
	require.NoError(t, err)

	vectors, err := backfiller.embedSparse(context.Background(), []string{"", "   "})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{nil, nil}, vectors)
	assert.Zero(t, embedder.CallCount(), "no provider call for an all-empty batch")
}

func TestRunEmails_RetriesTransientFailure(t *testing.T) {
	store := memory.NewStore(8)
	seedEmail(t, store, core.TierVectorize, "body text for embedding")

	attempts := 0
	embedder := mock.NewEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient provider error")
		}
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = mock.DeterministicVector(text, 8)
		}
		return vectors, nil
	}

	backfiller, err := NewBackfiller(store, embedder,
		WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	embedded, err := backfiller.RunEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, embedded)
	assert.Equal(t, 3, attempts)
}

func TestRunEmails_ProviderFailure(t *testing.T) {
	store := memory.NewStore(8)
	seedEmail(t, store, core.TierVectorize, "body text")

	embedder := mock.NewEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("provider down")
	}

	backfiller, err := NewBackfiller(store, embedder,
		WithRetry(2, time.Millisecond))
	require.NoError(t, err)

	_, err = backfiller.RunEmails(context.Background())
	assert.ErrorContains(t, err, "provider down")
}

func TestNewBackfiller_Validation(t *testing.T) {
	store := memory.NewStore(8)

	_, err := NewBackfiller(nil, mock.NewEmbedder())
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewBackfiller(store, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewBackfiller(store, mock.NewEmbedder(), WithBatchSize(0))
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}

func TestBuildEmailInput(t *testing.T) {
	email := &core.Email{
		Subject:  "Quarterly review",
		Sender:   "alice@example.com",
		BodyText: "Here are the numbers.",
	}
	assert.Equal(t,
		"Subject: Quarterly review\nFrom: alice@example.com\n\nHere are the numbers.",
		BuildEmailInput(email))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"crlf", "a\r\nb", "a\nb"},
		{"bare cr", "a\rb", "a\nb"},
		{"collapse newlines", "a\n\n\n\n\nb", "a\n\nb"},
		{"two newlines kept", "a\n\nb", "a\n\nb"},
		{"trim", "  body  \n", "body"},
		{"whitespace only", " \n\t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Truncates(t *testing.T) {
	long := strings.Repeat("x", MaxInputChars+500)
	normalized := Normalize(long)
	assert.Len(t, normalized, MaxInputChars)
}

func TestNormalize_TruncatesOnRuneBoundary(t *testing.T) {
	// Three-byte runes leave the byte cap mid-rune; the cut must back off.
	long := strings.Repeat("€", MaxInputChars)
	normalized := Normalize(long)

	assert.True(t, utf8.ValidString(normalized))
	assert.LessOrEqual(t, len(normalized), MaxInputChars)
}
