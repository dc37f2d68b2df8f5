package search

import "errors"

var (
	ErrStoreRequired    = errors.New("store is required")
	ErrEmbedderRequired = errors.New("embedder is required")
	ErrEmptyQuery       = errors.New("query text is empty")
	ErrInvalidLimit     = errors.New("limit must be positive")
)
