// Package render draws the projects and tile utilisation charts as PNG files.
package render

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	"github.com/natefinch/atomic"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/shuttlestats/internal/domain/aggregate"
	"github.com/okian/shuttlestats/pkg/logger"
	"github.com/okian/shuttlestats/pkg/metrics"
)

const (
	dateLayout = "02 January"

	highlightWidth = 2.5
	normalWidth    = 1.5
	dotWidth       = 3
	fadedAlpha     = 89 // 35% opacity

	linearTickCount = 8
	headroom        = 1.05
)

// palette follows the usual ten-colour categorical cycle.
var palette = []drawing.Color{ //nolint:gochecknoglobals // constant table
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

var (
	gridColor   = drawing.ColorFromHex("dddddd") //nolint:gochecknoglobals // constant
	dashPattern = []float64{5, 4}                //nolint:gochecknoglobals // constant
)

// Renderer writes the two charts of a run.
type Renderer struct {
	width, height   int
	program         string
	projectsPath    string
	utilisationPath string
	skip            map[string]struct{}
	log             logger.Logger
	metrics         *metrics.Manager
}

// New creates a Renderer with the default sizes and output names.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		width:           1000,
		height:          600,
		program:         "Tiny Tapeout",
		projectsPath:    "tt_projects.png",
		utilisationPath: "tt_utilisation.png",
		skip:            map[string]struct{}{},
		log:             logger.Nop(),
		metrics:         metrics.Global(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Request describes one rendering pass.
type Request struct {
	Result      aggregate.Result
	HighlightID int
	LogAxis     bool
	// Now dates the chart titles.
	Now time.Time
}

// Render writes the projects chart and, when any plotted shuttle has tile
// data, the utilisation chart. It returns the written paths in that order.
func (r *Renderer) Render(ctx context.Context, req Request) ([]string, error) {
	projects := r.Lines(req.Result.Groups, Projects, req.HighlightID)
	if len(projects) == 0 {
		return nil, ErrNothingToPlot
	}

	colors := make(map[int]drawing.Color, len(projects))
	for i, l := range projects {
		colors[l.ShuttleID] = palette[i%len(palette)]
	}

	xName := "Days Before Tapeout"
	if req.Result.Granularity == aggregate.Hours {
		xName = "Hours Before Tapeout"
	}
	updated := req.Now.Format(dateLayout)

	written := make([]string, 0, 2)
	err := r.write(ctx, r.projectsPath, chartSpec{
		title:  fmt.Sprintf("%s projects submitted over time - updated %s", r.program, updated),
		xName:  xName,
		yName:  "Number of Projects",
		lines:  projects,
		colors: colors,
		log:    req.LogAxis,
	})
	if err != nil {
		return written, err
	}
	written = append(written, r.projectsPath)

	util := r.Lines(req.Result.Groups, Utilisation, req.HighlightID)
	if len(util) == 0 {
		r.log.Info(ctx, "no tile data, skipping utilisation chart")
		return written, nil
	}
	err = r.write(ctx, r.utilisationPath, chartSpec{
		title:  fmt.Sprintf("%s tile utilisation - updated %s", r.program, updated),
		xName:  xName,
		yName:  "Tile Utilisation (%)",
		lines:  util,
		colors: colors,
		log:    req.LogAxis,
	})
	if err != nil {
		return written, err
	}
	return append(written, r.utilisationPath), nil
}

type chartSpec struct {
	title, xName, yName string
	lines               []Line
	colors              map[int]drawing.Color
	log                 bool
}

func (r *Renderer) write(ctx context.Context, path string, spec chartSpec) error {
	ch := r.build(spec)

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRender, path, err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}
	r.metrics.RecordChartWritten()
	r.log.Info(ctx, "chart written",
		logger.String("path", path),
		logger.Int("series", len(spec.lines)),
	)
	return nil
}

func (r *Renderer) build(spec chartSpec) *chart.Chart {
	var maxX, maxY float64
	series := make([]chart.Series, 0, len(spec.lines))
	for _, l := range spec.lines {
		xs := make([]float64, len(l.X))
		for i, x := range l.X {
			if spec.log {
				x = math.Log10(x)
			}
			xs[i] = x
			maxX = math.Max(maxX, x)
		}
		for _, y := range l.Y {
			maxY = math.Max(maxY, y)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    l.Label,
			XValues: xs,
			YValues: l.Y,
			Style:   lineStyle(spec.colors[l.ShuttleID], l.Highlight, len(xs) == 1),
		})
	}

	var xTicks []chart.Tick
	if spec.log {
		xTicks = decadeTicks(maxX)
	} else {
		xTicks = linearTicks(maxX, linearTickCount)
	}
	yTicks := linearTicks(maxY*headroom, linearTickCount)
	grid := chart.Style{StrokeColor: gridColor, StrokeWidth: 1}

	ch := &chart.Chart{
		Title:      spec.title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 24, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           spec.xName,
			Range:          tickRange(xTicks, true),
			Ticks:          xTicks,
			GridMajorStyle: grid,
		},
		YAxis: chart.YAxis{
			Name:           spec.yName,
			Range:          tickRange(yTicks, false),
			Ticks:          yTicks,
			GridMajorStyle: grid,
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch
}

func lineStyle(c drawing.Color, highlight, single bool) chart.Style {
	st := chart.Style{StrokeColor: c, StrokeWidth: highlightWidth}
	if !highlight {
		st.StrokeColor = c.WithAlpha(fadedAlpha)
		st.StrokeWidth = normalWidth
		st.StrokeDashArray = dashPattern
	}
	if single {
		st.DotColor = st.StrokeColor
		st.DotWidth = dotWidth
	}
	return st
}
