package scoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/assigner/internal/domain/model"
	scoring "github.com/okian/assigner/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExpressionScorer(t *testing.T) {
	ctx := context.Background()

	Convey("Given a percentage-proportional expression", t, func() {
		s, err := scoring.NewExpressionScorer("matched_skill_percentage / 100.0")
		So(err, ShouldBeNil)
		So(s.Name(), ShouldEqual, "expression")
		So(s.Expression(), ShouldEqual, "matched_skill_percentage / 100.0")

		Convey("When scoring the scenario vectors", func() {
			scores, err := s.Score(ctx, scenarioVectors(t))

			Convey("Then each score is the matched fraction", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldResemble, []float64{0.5, 1.0})
			})
		})
	})

	Convey("Given an expression combining several features", t, func() {
		s, err := scoring.NewExpressionScorer(
			"priority_weight * 10.0 + (available_bandwidth > 3.0 ? 1.0 : 0.0) - deadline_hours / 100.0")
		So(err, ShouldBeNil)

		Convey("Then every feature variable is bound", func() {
			scores, err := s.Score(ctx, []model.FeatureVector{
				{PriorityWeight: 2, AvailableBandwidth: 5, DeadlineHours: 10},
				{PriorityWeight: 0, AvailableBandwidth: 1, DeadlineHours: 50},
			})
			So(err, ShouldBeNil)
			So(scores[0], ShouldAlmostEqual, 20.9, 1e-9)
			So(scores[1], ShouldAlmostEqual, -0.5, 1e-9)
		})
	})

	Convey("Given an integer-typed expression", t, func() {
		s, err := scoring.NewExpressionScorer("int(matched_skill_count) * 3")
		So(err, ShouldBeNil)

		Convey("Then the result is converted to float", func() {
			scores, err := s.Score(ctx, []model.FeatureVector{{MatchedSkillCount: 2}})
			So(err, ShouldBeNil)
			So(scores[0], ShouldEqual, 6)
		})
	})

	Convey("Given invalid expressions", t, func() {
		Convey("When the syntax is broken", func() {
			_, err := scoring.NewExpressionScorer("matched_skill_count +")
			So(errors.Is(err, scoring.ErrInvalidExpression), ShouldBeTrue)
		})

		Convey("When it references an unknown variable", func() {
			_, err := scoring.NewExpressionScorer("seniority * 2.0")
			So(errors.Is(err, scoring.ErrInvalidExpression), ShouldBeTrue)
		})

		Convey("When it yields a boolean", func() {
			_, err := scoring.NewExpressionScorer("matched_skill_count > 1.0")
			So(errors.Is(err, scoring.ErrInvalidExpression), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "numeric")
		})
	})

	Convey("Given a cancelled context", t, func() {
		s, err := scoring.NewExpressionScorer("available_bandwidth")
		So(err, ShouldBeNil)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err = s.Score(cctx, []model.FeatureVector{{}})
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}
