// Package source loads shuttle metadata and submissions from the live API,
// a JSON snapshot of it, or a CSV export paired with a deadline table.
package source

import (
	"context"
	"fmt"

	"github.com/okian/shuttlestats/internal/config"
	"github.com/okian/shuttlestats/internal/domain/model"
)

// Loader produces the dataset for one run.
type Loader interface {
	Load(ctx context.Context) (*model.Dataset, error)
}

// New returns the loader selected by cfg.Source.
func New(cfg *config.Config, opts ...Option) (Loader, error) {
	switch cfg.Source {
	case config.SourceAPI:
		dumpPath := ""
		if cfg.Dump {
			dumpPath = cfg.DumpPath
		}
		return NewAPI(cfg.APIURL, dumpPath, opts...), nil
	case config.SourceSnapshot:
		return NewSnapshot(cfg.InputPath, opts...), nil
	case config.SourceCSV:
		return NewCSV(cfg.InputPath, cfg.Shuttles, cfg.ShuttlesFile, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
	}
}
