package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/shuttlestats/internal/config"
)

func TestParseFlags(t *testing.T) {
	convey.Convey("Given the full flag set", t, func() {
		f, err := parseFlags([]string{
			"--log", "--dump", "--show", "--shuttle-id", "9",
			"--source", "csv", "-i", "data.csv", "--config", "cfg.yaml", "--watch",
		}, &bytes.Buffer{})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When applied to the defaults", func() {
			cfg := config.New(context.Background())
			f.apply(cfg)

			convey.Convey("Then every flag overrides its setting", func() {
				convey.So(cfg.LogAxis, convey.ShouldBeTrue)
				convey.So(cfg.Dump, convey.ShouldBeTrue)
				convey.So(cfg.Show, convey.ShouldBeTrue)
				convey.So(cfg.HighlightShuttleID, convey.ShouldEqual, 9)
				convey.So(cfg.Source, convey.ShouldEqual, config.SourceCSV)
				convey.So(cfg.InputPath, convey.ShouldEqual, "data.csv")
				convey.So(f.configPath, convey.ShouldEqual, "cfg.yaml")
				convey.So(f.watch, convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given no flags", t, func() {
		f, err := parseFlags(nil, &bytes.Buffer{})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then file and env settings are kept", func() {
			cfg := config.New(context.Background())
			cfg.Source = config.SourceSnapshot
			cfg.HighlightShuttleID = 4
			f.apply(cfg)
			convey.So(cfg.Source, convey.ShouldEqual, config.SourceSnapshot)
			convey.So(cfg.HighlightShuttleID, convey.ShouldEqual, 4)
			convey.So(cfg.LogAxis, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given a stray positional argument", t, func() {
		_, err := parseFlags([]string{"extra"}, &bytes.Buffer{})
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRun(t *testing.T) {
	convey.Convey("Given the command line", t, func() {
		var stdout, stderr bytes.Buffer

		convey.Convey("When --help is given", func() {
			code := run([]string{"--help"}, &stdout, &stderr)

			convey.Convey("Then usage is printed and the exit code is 0", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(stdout.String(), convey.ShouldContainSubstring, "--shuttle-id")
			})
		})

		convey.Convey("When an unknown flag is given", func() {
			convey.So(run([]string{"--bogus"}, &stdout, &stderr), convey.ShouldEqual, exitUsage)
			convey.So(stderr.String(), convey.ShouldContainSubstring, "unknown flag")
		})

		convey.Convey("When the source is invalid", func() {
			convey.So(run([]string{"--source", "ftp"}, &stdout, &stderr), convey.ShouldEqual, exitUsage)
		})

		convey.Convey("When --print-config is given", func() {
			code := run([]string{"--print-config", "--source", "snapshot", "--input", "x.json"}, &stdout, &stderr)

			convey.Convey("Then the effective config is printed as YAML", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(stdout.String(), convey.ShouldContainSubstring, "source: snapshot")
				convey.So(stdout.String(), convey.ShouldContainSubstring, "input_path: x.json")
			})
		})
	})

	convey.Convey("Given a config file pointing at a snapshot", t, func() {
		dir := t.TempDir()
		snapshot := filepath.Join(dir, "data.json")
		cfgPath := filepath.Join(dir, "shuttlestats.yaml")
		writeFile(t, cfgPath, fmt.Sprintf(`
source: snapshot
input_path: %s
projects_chart: %s
utilisation_chart: %s
chart_width: 400
chart_height: 300
`, snapshot, filepath.Join(dir, "p.png"), filepath.Join(dir, "u.png")))

		deadline := time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(time.Second)
		var stdout, stderr bytes.Buffer

		convey.Convey("When the snapshot has an upcoming shuttle", func() {
			writeFile(t, snapshot, fmt.Sprintf(`{
				"shuttles": [{"id": 1, "name": "Future", "deadline": %q, "tiles_total": 10}],
				"submissions": [{"shuttle_id": 1, "first_submission_time": %q, "tile_count": 3}]
			}`, deadline.Format(time.RFC3339), deadline.Add(-72*time.Hour).Format(time.RFC3339)))

			code := run([]string{"--config", cfgPath}, &stdout, &stderr)

			convey.Convey("Then the run succeeds and both charts exist", func() {
				convey.So(code, convey.ShouldEqual, exitOK)
				convey.So(stdout.String(), convey.ShouldContainSubstring, "Highlighting shuttle: Future")
				convey.So(stdout.String(), convey.ShouldContainSubstring, "shuttle Future [1] : 1")
				_, err := os.Stat(filepath.Join(dir, "p.png"))
				convey.So(err, convey.ShouldBeNil)
				_, err = os.Stat(filepath.Join(dir, "u.png"))
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When every shuttle is in the past", func() {
			past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
			writeFile(t, snapshot, fmt.Sprintf(`{
				"shuttles": [{"id": 1, "name": "Past", "deadline": %q}],
				"submissions": []
			}`, past.Format(time.RFC3339)))

			convey.Convey("Then the run fails with exit code 1", func() {
				convey.So(run([]string{"--config", cfgPath}, &stdout, &stderr), convey.ShouldEqual, exitFailure)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "no future shuttles")
			})
		})
	})
}
