package ingest

import "errors"

var (
	ErrStoreRequired  = errors.New("store is required")
	ErrSourceRequired = errors.New("source is required")
)
