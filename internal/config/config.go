// Package config defines shuttlestats configuration structures and loading hooks.
//
// Conventions:
//   - New returns a Config populated with defaults.
//   - Load layers defaults, an optional YAML file and SHUTTLESTATS_* env vars.
//   - CLI flags are applied on top by the caller.
package config

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Source kinds.
const (
	SourceAPI      = "api"
	SourceSnapshot = "snapshot"
	SourceCSV      = "csv"
)

// Granularity values.
const (
	GranularityAuto  = "auto"
	GranularityDays  = "days"
	GranularityHours = "hours"
)

// DefaultAPIURL is the public submission-statistics endpoint.
const DefaultAPIURL = "https://app.tinytapeout.com/api/shuttles/submission-stats"

// Shuttle is one row of the static deadline table used by the CSV source.
type Shuttle struct {
	ID         int    `koanf:"id" yaml:"id"`
	Name       string `koanf:"name" yaml:"name"`
	Deadline   string `koanf:"deadline" yaml:"deadline"`
	TilesTotal int    `koanf:"tiles_total" yaml:"tiles_total,omitempty"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level"`

	// Source selects the loader: api, snapshot or csv.
	Source string `koanf:"source" yaml:"source"`

	// APIURL is fetched by the api source.
	APIURL string `koanf:"api_url" yaml:"api_url"`

	// InputPath is the file read by the snapshot and csv sources.
	InputPath string `koanf:"input_path" yaml:"input_path"`

	// Dump persists the raw API response to DumpPath.
	Dump     bool   `koanf:"dump" yaml:"dump"`
	DumpPath string `koanf:"dump_path" yaml:"dump_path"`

	// LogAxis forces a logarithmic time axis.
	LogAxis bool `koanf:"log_axis" yaml:"log_axis"`

	// LogWindowDays switches to a log axis automatically when the nearest
	// deadline is at most this many days away. Zero disables the switch.
	LogWindowDays float64 `koanf:"log_window_days" yaml:"log_window_days"`

	// Granularity of time remaining: auto follows the axis (hours on a log
	// axis, days otherwise).
	Granularity string `koanf:"granularity" yaml:"granularity"`

	// HighlightShuttleID forces the highlighted series. Zero auto-detects.
	HighlightShuttleID int `koanf:"highlight_shuttle_id" yaml:"highlight_shuttle_id"`

	// SkipShuttles lists display names or ids that are never plotted.
	SkipShuttles []string `koanf:"skip_shuttles" yaml:"skip_shuttles"`

	// Shuttles is the deadline table for the csv source.
	Shuttles []Shuttle `koanf:"shuttles" yaml:"shuttles"`

	// ShuttlesFile is an optional JSON array of shuttles merged under Shuttles.
	ShuttlesFile string `koanf:"shuttles_file" yaml:"shuttles_file"`

	// Chart output.
	ProjectsChart    string `koanf:"projects_chart" yaml:"projects_chart"`
	UtilisationChart string `koanf:"utilisation_chart" yaml:"utilisation_chart"`
	ChartWidth       int    `koanf:"chart_width" yaml:"chart_width"`
	ChartHeight      int    `koanf:"chart_height" yaml:"chart_height"`
	ProgramName      string `koanf:"program_name" yaml:"program_name"`

	// Show opens written charts with Viewer, or the platform default when empty.
	Show   bool   `koanf:"show" yaml:"show"`
	Viewer string `koanf:"viewer" yaml:"viewer"`

	// MetricsTextfile, when set, receives a Prometheus text exposition per run.
	MetricsTextfile string `koanf:"metrics_textfile" yaml:"metrics_textfile"`
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:         "info",
		Source:           SourceAPI,
		APIURL:           DefaultAPIURL,
		InputPath:        "data.json",
		DumpPath:         "data.json",
		LogWindowDays:    7,
		Granularity:      GranularityAuto,
		SkipShuttles:     DefaultSkipShuttles(),
		ProjectsChart:    "tt_projects.png",
		UtilisationChart: "tt_utilisation.png",
		ChartWidth:       1000,
		ChartHeight:      600,
		ProgramName:      "Tiny Tapeout",
	}
}

// DefaultSkipShuttles returns the shuttles hidden from the charts by default.
func DefaultSkipShuttles() []string {
	return []string{
		"Tiny Tapeout 4", "Tiny Tapeout 5", "Tiny Tapeout 10", "Tiny Tapeout CAD 25a",
		"Tiny Tapeout IHP 0p2", "Tiny Tapeout IHP 0p3",
		"Tiny Tapeout IHP 25a", "Tiny Tapeout Sky 25a", "Tiny Tapeout GF 0p2",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceAPI:
		if strings.TrimSpace(c.APIURL) == "" {
			return fmt.Errorf("%w: api_url must not be empty", ErrInvalidConfig)
		}
		if c.Dump && strings.TrimSpace(c.DumpPath) == "" {
			return fmt.Errorf("%w: dump_path must not be empty when dump is enabled", ErrInvalidConfig)
		}
	case SourceSnapshot, SourceCSV:
		if strings.TrimSpace(c.InputPath) == "" {
			return fmt.Errorf("%w: input_path must not be empty for source %q", ErrInvalidConfig, c.Source)
		}
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Source)
	}

	if !slices.Contains([]string{GranularityAuto, GranularityDays, GranularityHours}, c.Granularity) {
		return fmt.Errorf("%w: unknown granularity %q", ErrInvalidConfig, c.Granularity)
	}
	if c.LogWindowDays < 0 {
		return fmt.Errorf("%w: log_window_days must not be negative", ErrInvalidConfig)
	}
	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return fmt.Errorf("%w: chart dimensions must be positive", ErrInvalidConfig)
	}
	if c.ProjectsChart == "" || c.UtilisationChart == "" {
		return fmt.Errorf("%w: chart paths must not be empty", ErrInvalidConfig)
	}

	seen := make(map[int]bool, len(c.Shuttles))
	for i, s := range c.Shuttles {
		if s.ID == 0 {
			return fmt.Errorf("%w: shuttles[%d]: id is required", ErrInvalidConfig, i)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: shuttles[%d]: duplicate id %d", ErrInvalidConfig, i, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}
