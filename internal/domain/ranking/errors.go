package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrEmptyCandidateSet = errors.New("empty candidate set")
	ErrScoring           = errors.New("scoring failed")
)
