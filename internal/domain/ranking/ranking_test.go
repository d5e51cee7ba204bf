package ranking_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/assigner/internal/domain/features"
	"github.com/okian/assigner/internal/domain/model"
	"github.com/okian/assigner/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

// fixedScorer returns the configured scores and counts its calls.
type fixedScorer struct {
	scores []float64
	err    error
	calls  int
}

func (s *fixedScorer) Score(_ context.Context, _ []model.FeatureVector) ([]float64, error) {
	s.calls++
	return s.scores, s.err
}

var percentageScorer = ranking.ScorerFunc(func(_ context.Context, batch []model.FeatureVector) ([]float64, error) {
	out := make([]float64, len(batch))
	for i, v := range batch {
		out[i] = v.MatchedSkillPercentage / 100
	}
	return out, nil
})

func vectors(n int) []model.FeatureVector {
	return make([]model.FeatureVector, n)
}

func TestRank(t *testing.T) {
	ctx := context.Background()

	Convey("Given the python/sql scenario", t, func() {
		task := model.Task{RequiredSkills: []string{"python", "sql"}, Priority: model.PriorityHigh, DeadlineHours: 10}
		candidates := []model.Candidate{
			{ID: "A", Skills: []string{"python"}, AvailableBandwidth: 5},
			{ID: "B", Skills: []string{"python", "sql"}, AvailableBandwidth: 2},
		}
		vs, err := features.Build(task, candidates)
		So(err, ShouldBeNil)

		Convey("When ranking with a percentage-proportional scorer", func() {
			res, err := ranking.Rank(ctx, vs, percentageScorer)

			Convey("Then candidate B wins", func() {
				So(err, ShouldBeNil)
				So(res.Index, ShouldEqual, 1)
				So(res.Score, ShouldEqual, 1.0)
			})
		})
	})

	Convey("Given scores with ties", t, func() {
		s := &fixedScorer{scores: []float64{0.1, 0.9, 0.3, 0.9, 0.9}}

		Convey("Then the lowest index among the maxima wins", func() {
			res, err := ranking.Rank(ctx, vectors(5), s)
			So(err, ShouldBeNil)
			So(res.Index, ShouldEqual, 1)
			So(s.calls, ShouldEqual, 1)
		})
	})

	Convey("Given all-equal scores", t, func() {
		s := &fixedScorer{scores: []float64{7, 7, 7}}

		Convey("Then index 0 wins", func() {
			res, err := ranking.Rank(ctx, vectors(3), s)
			So(err, ShouldBeNil)
			So(res.Index, ShouldEqual, 0)
		})
	})

	Convey("Given negative and infinite scores", t, func() {
		s := &fixedScorer{scores: []float64{-5, math.Inf(-1), -1, -3}}

		Convey("Then the largest value still wins", func() {
			res, err := ranking.Rank(ctx, vectors(4), s)
			So(err, ShouldBeNil)
			So(res.Index, ShouldEqual, 2)
		})
	})

	Convey("Given an empty vector list", t, func() {
		s := &fixedScorer{}

		Convey("Then ErrEmptyCandidateSet is returned without calling the scorer", func() {
			_, err := ranking.Rank(ctx, nil, s)
			So(errors.Is(err, ranking.ErrEmptyCandidateSet), ShouldBeTrue)
			So(s.calls, ShouldEqual, 0)
		})
	})

	Convey("Given a scorer returning one score too few", t, func() {
		s := &fixedScorer{scores: []float64{0.5, 0.4}}

		Convey("Then ErrScoring is returned", func() {
			_, err := ranking.Rank(ctx, vectors(3), s)
			So(errors.Is(err, ranking.ErrScoring), ShouldBeTrue)
		})
	})

	Convey("Given a scorer returning too many scores", t, func() {
		s := &fixedScorer{scores: []float64{0.5, 0.4, 0.1}}

		Convey("Then ErrScoring is returned", func() {
			_, err := ranking.Rank(ctx, vectors(2), s)
			So(errors.Is(err, ranking.ErrScoring), ShouldBeTrue)
		})
	})

	Convey("Given a failing scorer", t, func() {
		cause := errors.New("model offline")
		s := &fixedScorer{err: cause}

		Convey("Then ErrScoring wraps the cause", func() {
			_, err := ranking.Rank(ctx, vectors(2), s)
			So(errors.Is(err, ranking.ErrScoring), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
		})
	})

	Convey("Given a panicking scorer", t, func() {
		s := ranking.ScorerFunc(func(context.Context, []model.FeatureVector) ([]float64, error) {
			panic("boom")
		})

		Convey("Then the panic surfaces as ErrScoring", func() {
			_, err := ranking.Rank(ctx, vectors(2), s)
			So(errors.Is(err, ranking.ErrScoring), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "boom")
		})
	})

	Convey("Given a scorer returning NaN", t, func() {
		s := &fixedScorer{scores: []float64{0.2, math.NaN()}}

		Convey("Then ErrScoring is returned", func() {
			_, err := ranking.Rank(ctx, vectors(2), s)
			So(errors.Is(err, ranking.ErrScoring), ShouldBeTrue)
		})
	})
}
