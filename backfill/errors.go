package backfill

import "errors"

var (
	ErrStoreRequired      = errors.New("store is required")
	ErrEmbedderRequired   = errors.New("embedder is required")
	ErrInvalidBatchSize   = errors.New("batch size must be positive")
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
