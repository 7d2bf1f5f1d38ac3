// Package app wires loading, aggregation and rendering into one run.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/shuttlestats/internal/adapters/render"
	"github.com/okian/shuttlestats/internal/adapters/source"
	"github.com/okian/shuttlestats/internal/adapters/viewer"
	"github.com/okian/shuttlestats/internal/config"
	"github.com/okian/shuttlestats/internal/domain/aggregate"
	"github.com/okian/shuttlestats/internal/domain/schedule"
	"github.com/okian/shuttlestats/pkg/logger"
	"github.com/okian/shuttlestats/pkg/metrics"
)

// Opener shows written charts to the user.
type Opener interface {
	Open(ctx context.Context, paths ...string) error
}

// Pipeline runs load, plan, aggregate and render for one configuration.
type Pipeline struct {
	cfg *config.Config

	loader   source.Loader
	renderer *render.Renderer
	opener   Opener

	metrics  *metrics.Manager
	log      logger.Logger
	out      io.Writer
	now      func() time.Time
	debounce time.Duration
}

// Report summarises a completed run.
type Report struct {
	RunID  string
	Plan   schedule.Plan
	Result aggregate.Result
	Charts []string
}

// New builds a Pipeline. Components not supplied through options are
// constructed from cfg.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		cfg:      cfg,
		metrics:  metrics.Global(),
		log:      logger.Nop(),
		out:      os.Stdout,
		now:      time.Now,
		debounce: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.loader == nil {
		l, err := source.New(cfg,
			source.WithLogger(p.log.Named("source")),
			source.WithMetrics(p.metrics),
		)
		if err != nil {
			return nil, err
		}
		p.loader = l
	}
	if p.renderer == nil {
		p.renderer = render.New(
			render.WithSize(cfg.ChartWidth, cfg.ChartHeight),
			render.WithProgramName(cfg.ProgramName),
			render.WithOutputs(cfg.ProjectsChart, cfg.UtilisationChart),
			render.WithSkip(cfg.SkipShuttles),
			render.WithLogger(p.log.Named("render")),
			render.WithMetrics(p.metrics),
		)
	}
	if p.opener == nil {
		p.opener = viewer.New(cfg.Viewer, viewer.WithLogger(p.log.Named("viewer")))
	}
	return p, nil
}

// Run executes one pass. Any failure aborts the run; charts from earlier
// runs are left untouched.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	rep := &Report{RunID: uuid.NewString()}
	log := p.log.With(logger.String("run_id", rep.RunID))

	start := time.Now()
	ds, err := p.loader.Load(ctx)
	p.metrics.ObserveLoad(p.cfg.Source, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p.cfg.Source, err)
	}
	log.Info(ctx, "data loaded",
		logger.String("source", p.cfg.Source),
		logger.Int("shuttles", len(ds.Shuttles)),
		logger.Int("submissions", len(ds.Submissions)),
		logger.Duration("took", time.Since(start)),
	)

	now := p.now().UTC()
	rep.Plan, err = schedule.Decide(ds.Shuttles, schedule.Request{
		Now:            now,
		ForceShuttleID: p.cfg.HighlightShuttleID,
		ForceLog:       p.cfg.LogAxis,
		LogWindow:      time.Duration(p.cfg.LogWindowDays * float64(24*time.Hour)),
	})
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	rep.Result = aggregate.Build(ds.Shuttles, ds.Submissions,
		aggregate.WithGranularity(p.granularity(rep.Plan.LogAxis)))
	p.reportSkipped(ctx, log, rep.Result)

	p.printReport(rep)
	p.recordMetrics(rep)

	rep.Charts, err = p.renderer.Render(ctx, render.Request{
		Result:      rep.Result,
		HighlightID: rep.Plan.Highlight.ID,
		LogAxis:     rep.Plan.LogAxis,
		Now:         now,
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	p.metrics.MarkRun(now)
	if p.cfg.MetricsTextfile != "" {
		if err := p.metrics.WriteTextfile(p.cfg.MetricsTextfile); err != nil {
			return nil, err
		}
	}

	if p.cfg.Show {
		if err := p.opener.Open(ctx, rep.Charts...); err != nil {
			return nil, fmt.Errorf("show: %w", err)
		}
	}

	log.Info(ctx, "run complete",
		logger.Int("shuttles", len(rep.Result.Groups)),
		logger.Any("charts", rep.Charts),
	)
	return rep, nil
}

func (p *Pipeline) granularity(logAxis bool) aggregate.Granularity {
	switch p.cfg.Granularity {
	case config.GranularityHours:
		return aggregate.Hours
	case config.GranularityDays:
		return aggregate.Days
	}
	if logAxis {
		return aggregate.Hours
	}
	return aggregate.Days
}

func (p *Pipeline) reportSkipped(ctx context.Context, log logger.Logger, res aggregate.Result) {
	counts := res.SkippedByShuttle()
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		log.Warn(ctx, "submissions reference an unknown shuttle, skipping",
			logger.Int("shuttle_id", id),
			logger.Int("count", counts[id]),
		)
	}
	p.metrics.AddSkippedSubmissions(len(res.Skipped))
}

// printReport writes the human-readable progress lines.
func (p *Pipeline) printReport(rep *Report) {
	h := rep.Plan.Highlight
	fmt.Fprintf(p.out, "Highlighting shuttle: %s, Deadline: %s\n", h.DisplayName(), h.Deadline.Format(time.RFC3339))
	if rep.Plan.HasNearest {
		fmt.Fprintf(p.out, "Log mode: %t (%.2f days to closest deadline)\n", rep.Plan.LogAxis, rep.Plan.DaysToNearest)
	} else {
		fmt.Fprintf(p.out, "Log mode: %t (no upcoming deadline)\n", rep.Plan.LogAxis)
	}
	for _, g := range rep.Result.Groups {
		if !p.renderer.Plotted(g.Shuttle) {
			continue
		}
		fmt.Fprintf(p.out, "shuttle %s [%d] : %d\n", g.Shuttle.DisplayName(), g.Shuttle.ID, g.FinalCount())
	}
}

func (p *Pipeline) recordMetrics(rep *Report) {
	p.metrics.ResetShuttles()
	for _, g := range rep.Result.Groups {
		name := g.Shuttle.DisplayName()
		p.metrics.SetSubmissions(g.Shuttle.ID, name, g.FinalCount())
		if pct, ok := g.FinalUtilisation(); ok {
			p.metrics.SetTileUtilisation(g.Shuttle.ID, name, pct)
		}
	}
	if rep.Plan.HasNearest {
		p.metrics.SetNearestDeadlineDays(rep.Plan.DaysToNearest)
	}
	p.metrics.SetLogAxis(rep.Plan.LogAxis)
}
