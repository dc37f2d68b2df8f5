package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use and must
// return vectors of a single fixed dimensionality for a given model.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Used for query embedding; must use the same model as EmbedTexts so
	// stored and query vectors are comparable.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
