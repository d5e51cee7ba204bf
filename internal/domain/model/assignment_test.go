package model_test

import (
	"testing"

	"github.com/okian/assigner/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPriority_Weight(t *testing.T) {
	Convey("Given task priorities", t, func() {
		Convey("Then the named levels map to their ordinal weights", func() {
			So(model.PriorityHigh.Weight(), ShouldEqual, 2)
			So(model.PriorityMedium.Weight(), ShouldEqual, 1)
			So(model.PriorityLow.Weight(), ShouldEqual, 0)
		})

		Convey("Then unrecognized values fall back to 0", func() {
			for _, p := range []model.Priority{"", "URGENT", "high", " HIGH", "medium"} {
				So(p.Weight(), ShouldEqual, 0)
			}
		})
	})
}

func TestFeatureVector(t *testing.T) {
	Convey("Given a feature vector", t, func() {
		v := model.FeatureVector{
			PriorityWeight:         2,
			DeadlineHours:          10,
			RequiredSkillCount:     2,
			MatchedSkillCount:      1,
			AvailableBandwidth:     5,
			MatchedSkillPercentage: 50,
		}

		Convey("When reading its values", func() {
			values := v.Values()

			Convey("Then they follow the canonical order", func() {
				So(values, ShouldResemble, []float64{2, 10, 2, 1, 5, 50})
				So(len(values), ShouldEqual, len(model.FeatureNames))
			})
		})

		Convey("When reading it as a map", func() {
			m := v.Map()

			Convey("Then every feature name is present", func() {
				So(len(m), ShouldEqual, len(model.FeatureNames))
				So(m[model.FeaturePriorityWeight], ShouldEqual, 2)
				So(m[model.FeatureDeadlineHours], ShouldEqual, 10)
				So(m[model.FeatureRequiredSkillCount], ShouldEqual, 2)
				So(m[model.FeatureMatchedSkillCount], ShouldEqual, 1)
				So(m[model.FeatureAvailableBandwidth], ShouldEqual, 5)
				So(m[model.FeatureMatchedSkillPercentage], ShouldEqual, 50)
			})
		})
	})
}
