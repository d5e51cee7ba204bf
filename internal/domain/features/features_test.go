package features_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/okian/assigner/internal/domain/features"
	"github.com/okian/assigner/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuild(t *testing.T) {
	Convey("Given a HIGH priority task requiring python and sql", t, func() {
		task := model.Task{
			ID:             "task-1",
			RequiredSkills: []string{"python", "sql"},
			Priority:       model.PriorityHigh,
			DeadlineHours:  10,
		}
		candidates := []model.Candidate{
			{ID: "A", Skills: []string{"python"}, AvailableBandwidth: 5},
			{ID: "B", Skills: []string{"python", "sql"}, AvailableBandwidth: 2},
		}

		Convey("When building features", func() {
			vectors, err := features.Build(task, candidates)

			Convey("Then one vector per candidate is produced in input order", func() {
				So(err, ShouldBeNil)
				So(len(vectors), ShouldEqual, 2)
				So(vectors[0].Values(), ShouldResemble, []float64{2, 10, 2, 1, 5, 50})
				So(vectors[1].Values(), ShouldResemble, []float64{2, 10, 2, 2, 2, 100})
			})
		})

		Convey("When the candidate list is empty", func() {
			vectors, err := features.Build(task, nil)

			Convey("Then an empty sequence is returned", func() {
				So(err, ShouldBeNil)
				So(vectors, ShouldNotBeNil)
				So(vectors, ShouldBeEmpty)
			})
		})

		Convey("When the candidate holds skills outside the task", func() {
			vectors, err := features.Build(task, []model.Candidate{
				{ID: "C", Skills: []string{"go", "rust", "sql", "k8s"}, AvailableBandwidth: 1},
			})

			Convey("Then the percentage uses the required-skill count as denominator", func() {
				So(err, ShouldBeNil)
				So(vectors[0].MatchedSkillCount, ShouldEqual, 1)
				So(vectors[0].MatchedSkillPercentage, ShouldEqual, 50)
			})
		})

		Convey("When skills are repeated on either side", func() {
			dupTask := task
			dupTask.RequiredSkills = []string{"python", "sql", "python"}
			vectors, err := features.Build(dupTask, []model.Candidate{
				{ID: "D", Skills: []string{"sql", "sql", "sql"}},
			})

			Convey("Then each skill counts once", func() {
				So(err, ShouldBeNil)
				So(vectors[0].RequiredSkillCount, ShouldEqual, 2)
				So(vectors[0].MatchedSkillCount, ShouldEqual, 1)
				So(vectors[0].MatchedSkillPercentage, ShouldEqual, 50)
			})
		})
	})

	Convey("Given a task with an unrecognized priority", t, func() {
		task := model.Task{RequiredSkills: []string{"go"}, Priority: "CRITICAL", DeadlineHours: 24}

		Convey("Then feature construction still succeeds with weight 0", func() {
			vectors, err := features.Build(task, []model.Candidate{{ID: "x", Skills: []string{"go"}}})
			So(err, ShouldBeNil)
			So(vectors[0].PriorityWeight, ShouldEqual, 0)
		})
	})

	Convey("Given a structurally invalid task", t, func() {
		candidates := []model.Candidate{{ID: "x", Skills: []string{"go"}}}

		Convey("When it has no required skills", func() {
			_, err := features.Build(model.Task{DeadlineHours: 24}, candidates)

			Convey("Then ErrInvalidTask is returned", func() {
				So(errors.Is(err, features.ErrInvalidTask), ShouldBeTrue)
			})
		})

		Convey("When it has no required skills and no candidates", func() {
			_, err := features.Build(model.Task{RequiredSkills: []string{}, DeadlineHours: 24}, nil)

			Convey("Then ErrInvalidTask is still returned", func() {
				So(errors.Is(err, features.ErrInvalidTask), ShouldBeTrue)
			})
		})

		Convey("When the deadline is not positive", func() {
			for _, d := range []float64{0, -1, math.NaN(), math.Inf(1)} {
				_, err := features.Build(model.Task{RequiredSkills: []string{"go"}, DeadlineHours: d}, candidates)
				So(errors.Is(err, features.ErrInvalidTask), ShouldBeTrue)
			}
		})
	})
}

func TestBuild_Properties(t *testing.T) {
	Convey("Given generated tasks and candidates", t, func() {
		pool := []string{"go", "python", "sql", "k8s", "react", "aws", "ml"}

		for k := 1; k <= len(pool); k++ {
			for m := 0; m <= len(pool); m++ {
				task := model.Task{RequiredSkills: pool[:k], Priority: model.PriorityMedium, DeadlineHours: 8}
				// rotate so candidate skills overlap partially with the task
				skills := make([]string, 0, m)
				for i := 0; i < m; i++ {
					skills = append(skills, pool[(i+3)%len(pool)])
				}
				candidates := []model.Candidate{
					{ID: fmt.Sprintf("c-%d-%d-a", k, m), Skills: skills, AvailableBandwidth: float64(m)},
					{ID: fmt.Sprintf("c-%d-%d-b", k, m), Skills: nil, AvailableBandwidth: 0},
				}

				vectors, err := features.Build(task, candidates)
				So(err, ShouldBeNil)
				So(len(vectors), ShouldEqual, len(candidates))

				for i, v := range vectors {
					So(v.MatchedSkillCount, ShouldBeLessThanOrEqualTo, math.Min(float64(k), float64(len(candidates[i].Skills))))
					So(v.MatchedSkillPercentage, ShouldAlmostEqual, 100*v.MatchedSkillCount/float64(k), 1e-9)
					So(v.AvailableBandwidth, ShouldEqual, candidates[i].AvailableBandwidth)
					So(v.RequiredSkillCount, ShouldEqual, k)
					So(v.PriorityWeight, ShouldEqual, 1)
				}
			}
		}
	})
}
