package model_test

import (
	"testing"
	"time"

	"github.com/okian/shuttlestats/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseTimestamp(t *testing.T) {
	Convey("Given timestamps in the formats seen in the wild", t, func() {
		want := time.Date(2024, 5, 30, 12, 34, 56, 0, time.UTC)

		cases := map[string]time.Time{
			"2024-05-30T12:34:56Z":             want,
			"2024-05-30T14:34:56+02:00":        want,
			"2024-05-30T12:34:56":              want,
			"2024-05-30 12:34:56":              want,
			"2024-05-30 12:34:56+00:00":        want,
			"2024-05-30 12:34:56.250000+00:00": want.Add(250 * time.Millisecond),
			"2024-05-30T12:34:56.5Z":           want.Add(500 * time.Millisecond),
			"  2024-06-01 ":                    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		}

		for in, expected := range cases {
			Convey("When parsing "+in, func() {
				got, err := model.ParseTimestamp(in)

				Convey("Then the UTC instant matches", func() {
					So(err, ShouldBeNil)
					So(got.Equal(expected), ShouldBeTrue)
					So(got.Location(), ShouldEqual, time.UTC)
				})
			})
		}

		Convey("When the input is empty or garbage", func() {
			_, errEmpty := model.ParseTimestamp("")
			_, errBad := model.ParseTimestamp("next tuesday")

			Convey("Then parsing fails", func() {
				So(errEmpty, ShouldNotBeNil)
				So(errBad, ShouldNotBeNil)
			})
		})
	})
}

func TestDataset(t *testing.T) {
	Convey("Given a dataset", t, func() {
		ds := &model.Dataset{Shuttles: []model.Shuttle{{ID: 4, Name: "Tiny Tapeout 4"}, {ID: 7}}}

		Convey("Then the index resolves ids and display names fall back to the id", func() {
			idx := ds.ShuttleIndex()
			So(idx, ShouldHaveLength, 2)
			So(idx[4].DisplayName(), ShouldEqual, "Tiny Tapeout 4")
			So(idx[7].DisplayName(), ShouldEqual, "Shuttle 7")
		})
	})
}
