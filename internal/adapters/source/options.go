package source

import (
	"net/http"

	"github.com/okian/shuttlestats/pkg/logger"
	"github.com/okian/shuttlestats/pkg/metrics"
)

// Option applies a configuration option to a loader.
type Option func(*settings)

type settings struct {
	client  *http.Client
	log     logger.Logger
	metrics *metrics.Manager
}

func newSettings(opts []Option) settings {
	s := settings{
		client:  http.DefaultClient,
		log:     logger.Nop(),
		metrics: metrics.Global(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithHTTPClient sets the client used by the API loader.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		if c != nil {
			s.client = c
		}
	}
}

// WithLogger sets the loader logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the metrics manager that API responses are counted on.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *settings) {
		if m != nil {
			s.metrics = m
		}
	}
}
