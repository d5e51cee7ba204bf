package scoring

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidModel      = errors.New("invalid model")
	ErrInvalidExpression = errors.New("invalid scorer expression")
	ErrRemoteScorer      = errors.New("remote scorer failed")
	ErrUnknownScorer     = errors.New("unknown scorer")
)
