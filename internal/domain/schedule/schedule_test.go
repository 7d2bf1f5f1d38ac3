package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/shuttlestats/internal/domain/model"
	"github.com/okian/shuttlestats/internal/domain/schedule"
	. "github.com/smartystreets/goconvey/convey"
)

const week = 7 * 24 * time.Hour

func TestNearest(t *testing.T) {
	Convey("Given shuttles with deadlines 2025-01-01 and 2025-02-01", t, func() {
		shuttles := []model.Shuttle{
			{ID: 2, Name: "February", Deadline: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
			{ID: 1, Name: "January", Deadline: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		}

		Convey("When now is 2024-12-20", func() {
			got, err := schedule.Nearest(shuttles, time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC))

			Convey("Then the January shuttle is selected", func() {
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, 1)
			})
		})

		Convey("When now is exactly the first deadline", func() {
			got, err := schedule.Nearest(shuttles, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

			Convey("Then that deadline still counts as upcoming", func() {
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, 1)
			})
		})

		Convey("When every deadline has passed", func() {
			_, err := schedule.Nearest(shuttles, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

			Convey("Then ErrNoFutureShuttles is returned", func() {
				So(errors.Is(err, schedule.ErrNoFutureShuttles), ShouldBeTrue)
			})
		})
	})
}

func TestDecide(t *testing.T) {
	Convey("Given two upcoming shuttles", t, func() {
		now := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
		shuttles := []model.Shuttle{
			{ID: 1, Name: "January", Deadline: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
			{ID: 2, Name: "February", Deadline: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
			{ID: 3, Name: "Old", Deadline: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		}

		Convey("When nothing is forced and the deadline is 12 days out", func() {
			plan, err := schedule.Decide(shuttles, schedule.Request{Now: now, LogWindow: week})

			Convey("Then the nearest shuttle is highlighted on a linear axis", func() {
				So(err, ShouldBeNil)
				So(plan.Highlight.ID, ShouldEqual, 1)
				So(plan.HasNearest, ShouldBeTrue)
				So(plan.DaysToNearest, ShouldEqual, 12)
				So(plan.LogAxis, ShouldBeFalse)
			})
		})

		Convey("When the nearest deadline is inside the log window", func() {
			plan, err := schedule.Decide(shuttles, schedule.Request{Now: now.Add(6 * 24 * time.Hour), LogWindow: week})

			Convey("Then the log axis switches on", func() {
				So(err, ShouldBeNil)
				So(plan.LogAxis, ShouldBeTrue)
				So(plan.DaysToNearest, ShouldEqual, 6)
			})
		})

		Convey("When exactly seven days remain", func() {
			plan, _ := schedule.Decide(shuttles, schedule.Request{Now: now.Add(5 * 24 * time.Hour), LogWindow: week})
			So(plan.LogAxis, ShouldBeTrue)
		})

		Convey("When the log window is disabled", func() {
			plan, _ := schedule.Decide(shuttles, schedule.Request{Now: now.Add(11 * 24 * time.Hour)})
			So(plan.LogAxis, ShouldBeFalse)
		})

		Convey("When the log axis is forced", func() {
			plan, err := schedule.Decide(shuttles, schedule.Request{Now: now, ForceLog: true})
			So(err, ShouldBeNil)
			So(plan.LogAxis, ShouldBeTrue)
		})

		Convey("When a past shuttle is forced", func() {
			plan, err := schedule.Decide(shuttles, schedule.Request{Now: now, ForceShuttleID: 3})

			Convey("Then it is highlighted while the nearest deadline is still reported", func() {
				So(err, ShouldBeNil)
				So(plan.Highlight.ID, ShouldEqual, 3)
				So(plan.Nearest.ID, ShouldEqual, 1)
			})
		})

		Convey("When an unknown shuttle is forced", func() {
			_, err := schedule.Decide(shuttles, schedule.Request{Now: now, ForceShuttleID: 99})
			So(errors.Is(err, schedule.ErrUnknownShuttle), ShouldBeTrue)
		})

		Convey("When all deadlines have passed", func() {
			later := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

			Convey("Then auto-detection fails", func() {
				_, err := schedule.Decide(shuttles, schedule.Request{Now: later})
				So(errors.Is(err, schedule.ErrNoFutureShuttles), ShouldBeTrue)
			})

			Convey("But a forced shuttle still yields a plan without a nearest deadline", func() {
				plan, err := schedule.Decide(shuttles, schedule.Request{Now: later, ForceShuttleID: 2, LogWindow: week})
				So(err, ShouldBeNil)
				So(plan.Highlight.ID, ShouldEqual, 2)
				So(plan.HasNearest, ShouldBeFalse)
				So(plan.LogAxis, ShouldBeFalse)
			})
		})
	})
}
