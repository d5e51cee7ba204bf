package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/assigner/internal/app"
	"github.com/okian/assigner/internal/domain/features"
	"github.com/okian/assigner/internal/domain/ranking"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrPayloadTooLarge = errors.New("payload too large")
)

// KindError tags an error with the operation that produced it and a
// sentinel kind that decides the HTTP status.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *KindError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns an error of the given kind without a cause.
func NewKind(op string, kind error) error {
	return &KindError{Op: op, Kind: kind}
}

// WrapKind returns an error of the given kind wrapping err.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

// Error codes returned in the "code" field.
const (
	codeBadRequest      = "bad_request"
	codePayloadTooLarge = "payload_too_large"
	codeInvalidTask     = "invalid_task"
	codeNoCandidates    = "no_candidates"
	codeScoringFailed   = "scoring_failed"
	codeUnavailable     = "unavailable"
	codeInternal        = "internal"
)

// classify maps an error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, codePayloadTooLarge
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, features.ErrInvalidTask):
		return http.StatusBadRequest, codeInvalidTask
	case errors.Is(err, ranking.ErrEmptyCandidateSet):
		return http.StatusUnprocessableEntity, codeNoCandidates
	case errors.Is(err, ranking.ErrScoring):
		return http.StatusInternalServerError, codeScoringFailed
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, codeUnavailable
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
