package render

import (
	"strings"

	"github.com/okian/shuttlestats/pkg/logger"
	"github.com/okian/shuttlestats/pkg/metrics"
)

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithSize sets the image size in pixels.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithProgramName sets the name used in chart titles.
func WithProgramName(name string) Option {
	return func(r *Renderer) {
		if name != "" {
			r.program = name
		}
	}
}

// WithOutputs sets where the projects and utilisation charts are written.
func WithOutputs(projects, utilisation string) Option {
	return func(r *Renderer) {
		if projects != "" {
			r.projectsPath = projects
		}
		if utilisation != "" {
			r.utilisationPath = utilisation
		}
	}
}

// WithSkip hides shuttles whose display name or decimal id is listed.
func WithSkip(entries []string) Option {
	return func(r *Renderer) {
		r.skip = make(map[string]struct{}, len(entries))
		for _, e := range entries {
			if e = strings.TrimSpace(e); e != "" {
				r.skip[e] = struct{}{}
			}
		}
	}
}

// WithLogger sets the renderer logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMetrics sets the manager that written charts are counted on.
func WithMetrics(m *metrics.Manager) Option {
	return func(r *Renderer) {
		if m != nil {
			r.metrics = m
		}
	}
}
