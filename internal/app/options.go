package app

import (
	"io"
	"time"

	"github.com/okian/shuttlestats/internal/adapters/render"
	"github.com/okian/shuttlestats/internal/adapters/source"
	"github.com/okian/shuttlestats/pkg/logger"
	"github.com/okian/shuttlestats/pkg/metrics"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithStdout sets where the progress report is printed.
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) {
		if w != nil {
			p.out = w
		}
	}
}

// WithClock sets the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithLoader replaces the loader built from the configuration.
func WithLoader(l source.Loader) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.loader = l
		}
	}
}

// WithRenderer replaces the renderer built from the configuration.
func WithRenderer(r *render.Renderer) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.renderer = r
		}
	}
}

// WithOpener replaces the chart viewer.
func WithOpener(o Opener) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.opener = o
		}
	}
}

// WithDebounce sets how long Watch waits for a burst of file events to
// settle before re-running.
func WithDebounce(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.debounce = d
		}
	}
}
