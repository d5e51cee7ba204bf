package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	service "github.com/okian/assigner/internal/app"
	"github.com/okian/assigner/internal/domain/features"
	"github.com/okian/assigner/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func TestKindError(t *testing.T) {
	Convey("Given kind errors", t, func() {
		cause := errors.New("unexpected EOF")

		Convey("When wrapping a cause", func() {
			err := WrapKind("api.op", ErrBadRequest, cause)

			Convey("Then both kind and cause are reachable", func() {
				So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "api.op: bad request: unexpected EOF")

				var ke *KindError
				So(errors.As(err, &ke), ShouldBeTrue)
				So(ke.Op, ShouldEqual, "api.op")
			})
		})

		Convey("When no cause is given", func() {
			err := NewKind("api.op", ErrPayloadTooLarge)
			So(errors.Is(err, ErrPayloadTooLarge), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: payload too large")
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given errors from every layer", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{WrapKind("op", ErrBadRequest, errors.New("x")), http.StatusBadRequest, codeBadRequest},
			{WrapKind("op", ErrBadRequest, fmt.Errorf("%w: big", ErrPayloadTooLarge)), http.StatusRequestEntityTooLarge, codePayloadTooLarge},
			{fmt.Errorf("%w: no required skills", features.ErrInvalidTask), http.StatusBadRequest, codeInvalidTask},
			{ranking.ErrEmptyCandidateSet, http.StatusUnprocessableEntity, codeNoCandidates},
			{fmt.Errorf("%w: boom", ranking.ErrScoring), http.StatusInternalServerError, codeScoringFailed},
			{service.ErrNotStarted, http.StatusServiceUnavailable, codeUnavailable},
			{errors.New("other"), http.StatusInternalServerError, codeInternal},
		}

		for _, tc := range cases {
			status, code := classify(tc.err)
			So(status, ShouldEqual, tc.status)
			So(code, ShouldEqual, tc.code)
		}
	})
}
