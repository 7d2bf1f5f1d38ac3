package snapshotgen_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/shuttlestats/internal/adapters/source"
	"github.com/okian/shuttlestats/internal/domain/aggregate"
	"github.com/okian/shuttlestats/internal/snapshotgen"
	"github.com/okian/shuttlestats/pkg/logger"
)

func baseConfig() snapshotgen.Config {
	return snapshotgen.Config{
		Shuttles:      3,
		PerShuttle:    50,
		FirstDeadline: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Spacing:       60 * 24 * time.Hour,
		Window:        90 * 24 * time.Hour,
		TilesTotal:    100,
		MaxTiles:      4,
		Seed:          42,
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator config", t, func() {
		cfg := baseConfig()

		Convey("When a snapshot is generated twice with the same seed", func() {
			a := snapshotgen.Generate(cfg)
			b := snapshotgen.Generate(cfg)

			Convey("Then the output is identical", func() {
				So(a, ShouldResemble, b)
				So(a.Shuttles, ShouldHaveLength, 3)
				So(a.Submissions, ShouldHaveLength, 150)
			})
		})

		Convey("When tile data is disabled", func() {
			cfg.TilesTotal = 0
			snap := snapshotgen.Generate(cfg)

			Convey("Then shuttles and submissions carry no tiles", func() {
				So(snap.Shuttles[0].TilesTotal, ShouldBeNil)
				So(snap.Submissions[0].TileCount, ShouldBeNil)
			})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a generated snapshot on disk", t, func() {
		So(logger.Init(), ShouldBeNil)
		cfg := baseConfig()
		cfg.OutputFile = filepath.Join(t.TempDir(), "data.json")
		So(snapshotgen.Run(context.Background(), cfg), ShouldBeNil)

		Convey("When it is loaded and aggregated", func() {
			ds, err := source.NewSnapshot(cfg.OutputFile).Load(context.Background())
			So(err, ShouldBeNil)
			res := aggregate.Build(ds.Shuttles, ds.Submissions)

			Convey("Then every submission lands inside its window before the deadline", func() {
				So(res.Skipped, ShouldBeEmpty)
				So(res.Groups, ShouldHaveLength, 3)
				for _, g := range res.Groups {
					So(g.FinalCount(), ShouldEqual, 50)
					for _, r := range g.Rows {
						So(r.TimeRemaining, ShouldBeBetweenOrEqual, 1, 90)
						So(r.TileCount, ShouldBeBetweenOrEqual, 1, 4)
					}
				}
			})
		})
	})

	Convey("Given invalid counts", t, func() {
		cfg := baseConfig()
		cfg.Shuttles = 0

		Convey("Then Run refuses to write", func() {
			So(snapshotgen.Run(context.Background(), cfg), ShouldNotBeNil)
		})
	})
}
