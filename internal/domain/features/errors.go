package features

import "errors"

// Sentinel kinds for feature construction errors.
var (
	ErrInvalidTask = errors.New("invalid task")
)
