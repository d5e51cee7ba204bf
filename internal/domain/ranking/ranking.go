// Package ranking selects the best candidate from scored feature vectors.
package ranking

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/assigner/internal/domain/model"
)

// Scorer maps a batch of feature vectors to one score per vector, in order.
type Scorer interface {
	Score(ctx context.Context, batch []model.FeatureVector) ([]float64, error)
}

// ScorerFunc adapts a plain function to the Scorer interface.
type ScorerFunc func(ctx context.Context, batch []model.FeatureVector) ([]float64, error)

// Score calls f(ctx, batch).
func (f ScorerFunc) Score(ctx context.Context, batch []model.FeatureVector) ([]float64, error) {
	return f(ctx, batch)
}

// Result identifies the winning vector.
type Result struct {
	Index int
	Score float64
}

// Rank scores all vectors with a single scorer call and returns the arg-max.
// Ties go to the lowest index.
func Rank(ctx context.Context, vectors []model.FeatureVector, scorer Scorer) (Result, error) {
	if len(vectors) == 0 {
		return Result{}, ErrEmptyCandidateSet
	}

	scores, err := score(ctx, vectors, scorer)
	if err != nil {
		return Result{}, err
	}

	best := Result{Index: 0, Score: scores[0]}
	for i := 1; i < len(scores); i++ {
		if scores[i] > best.Score {
			best = Result{Index: i, Score: scores[i]}
		}
	}
	return best, nil
}

func score(ctx context.Context, vectors []model.FeatureVector, scorer Scorer) (scores []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			scores = nil
			err = fmt.Errorf("%w: scorer panicked: %v", ErrScoring, r)
		}
	}()

	scores, err = scorer.Score(ctx, vectors)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScoring, err)
	}
	if len(scores) != len(vectors) {
		return nil, fmt.Errorf("%w: got %d scores for %d vectors", ErrScoring, len(scores), len(vectors))
	}
	for i, s := range scores {
		if math.IsNaN(s) {
			return nil, fmt.Errorf("%w: score %d is NaN", ErrScoring, i)
		}
	}
	return scores, nil
}
