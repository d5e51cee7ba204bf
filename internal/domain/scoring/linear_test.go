package scoring_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/assigner/internal/domain/features"
	"github.com/okian/assigner/internal/domain/model"
	"github.com/okian/assigner/internal/domain/ranking"
	scoring "github.com/okian/assigner/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

// scenarioVectors returns the python/sql vectors for candidates A and B.
func scenarioVectors(t *testing.T) []model.FeatureVector {
	t.Helper()
	task := model.Task{RequiredSkills: []string{"python", "sql"}, Priority: model.PriorityHigh, DeadlineHours: 10}
	vs, err := features.Build(task, []model.Candidate{
		{ID: "A", Skills: []string{"python"}, AvailableBandwidth: 5},
		{ID: "B", Skills: []string{"python", "sql"}, AvailableBandwidth: 2},
	})
	if err != nil {
		t.Fatalf("build features: %v", err)
	}
	return vs
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLinearModel_Score(t *testing.T) {
	ctx := context.Background()

	Convey("Given the default linear model", t, func() {
		m := scoring.DefaultLinearModel()
		vs := scenarioVectors(t)

		Convey("When scoring the scenario vectors", func() {
			scores, err := m.Score(ctx, vs)

			Convey("Then scores are probabilities and B outranks A", func() {
				So(err, ShouldBeNil)
				So(scores, ShouldHaveLength, 2)
				So(scores[0], ShouldAlmostEqual, 1/(1+math.Exp(-0.5)), 1e-9)
				So(scores[1], ShouldAlmostEqual, 1/(1+math.Exp(-3.2)), 1e-9)
				So(scores[1], ShouldBeGreaterThan, scores[0])
			})

			Convey("And the ranking engine picks index 1", func() {
				res, err := ranking.Rank(ctx, vs, m)
				So(err, ShouldBeNil)
				So(res.Index, ShouldEqual, 1)
			})
		})

		Convey("When scoring an empty batch", func() {
			scores, err := m.Score(ctx, nil)
			So(err, ShouldBeNil)
			So(scores, ShouldBeEmpty)
		})
	})

	Convey("Given an identity-link model", t, func() {
		m, err := scoring.NewLinearModel(1, map[string]float64{
			model.FeatureAvailableBandwidth: 2,
			model.FeaturePriorityWeight:     -1,
		}, "")
		So(err, ShouldBeNil)
		So(m.Link, ShouldEqual, scoring.LinkIdentity)

		Convey("Then the score is the raw linear predictor", func() {
			scores, err := m.Score(ctx, []model.FeatureVector{{PriorityWeight: 2, AvailableBandwidth: 3}})
			So(err, ShouldBeNil)
			So(scores[0], ShouldEqual, 1+6-2)
		})
	})

	Convey("Given invalid model definitions", t, func() {
		Convey("When a weight names an unknown feature", func() {
			_, err := scoring.NewLinearModel(0, map[string]float64{"seniority": 1}, "")
			So(errors.Is(err, scoring.ErrInvalidModel), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "seniority")
		})

		Convey("When the link is unknown", func() {
			_, err := scoring.NewLinearModel(0, nil, "probit")
			So(errors.Is(err, scoring.ErrInvalidModel), ShouldBeTrue)
		})

		Convey("When a weight is not finite", func() {
			_, err := scoring.NewLinearModel(0, map[string]float64{model.FeatureDeadlineHours: math.Inf(1)}, "")
			So(errors.Is(err, scoring.ErrInvalidModel), ShouldBeTrue)
		})
	})
}

func TestLoadLinearModel(t *testing.T) {
	Convey("Given a YAML model file", t, func() {
		path := writeFile(t, "model.yaml", `
bias: -1
link: logistic
weights:
  matched_skill_percentage: 0.02
  available_bandwidth: 0.5
`)

		Convey("When loading it", func() {
			m, err := scoring.LoadLinearModel(path)

			Convey("Then the fields are populated", func() {
				So(err, ShouldBeNil)
				So(m.Bias, ShouldEqual, -1)
				So(m.Link, ShouldEqual, scoring.LinkLogistic)
				So(m.Weights[model.FeatureAvailableBandwidth], ShouldEqual, 0.5)
			})
		})
	})

	Convey("Given a JSON model file", t, func() {
		path := writeFile(t, "model.json", `{"bias": 0.5, "weights": {"matched_skill_count": 1}}`)

		Convey("Then it loads with the identity link", func() {
			m, err := scoring.LoadLinearModel(path)
			So(err, ShouldBeNil)
			scores, err := m.Score(context.Background(), []model.FeatureVector{{MatchedSkillCount: 2}})
			So(err, ShouldBeNil)
			So(scores[0], ShouldEqual, 2.5)
		})
	})

	Convey("Given a broken model file", t, func() {
		path := writeFile(t, "model.yaml", "weights: [1, 2")
		_, err := scoring.LoadLinearModel(path)
		So(errors.Is(err, scoring.ErrInvalidModel), ShouldBeTrue)
	})

	Convey("Given a missing model file", t, func() {
		_, err := scoring.LoadLinearModel(filepath.Join(t.TempDir(), "absent.yaml"))
		So(errors.Is(err, scoring.ErrInvalidModel), ShouldBeTrue)
	})
}
