package classify

import "errors"

var (
	// ErrConfigRequired is returned when a ruleset config is not provided.
	ErrConfigRequired = errors.New("ruleset config required")

	// ErrInvalidWordCount is returned when the minimum word count is negative.
	ErrInvalidWordCount = errors.New("minimum word count cannot be negative")
)
