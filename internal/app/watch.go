package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/shuttlestats/internal/config"
	"github.com/okian/shuttlestats/pkg/logger"
)

// Watch runs the pipeline once, then again each time the input files change,
// until ctx is cancelled. A failed run is logged and the previous charts stay
// in place.
func (p *Pipeline) Watch(ctx context.Context) error {
	targets, err := p.watchTargets()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatch, err)
	}
	defer watcher.Close()

	// Directories are watched so that replace-by-rename saves are seen.
	dirs := make(map[string]struct{})
	for t := range targets {
		dirs[filepath.Dir(t)] = struct{}{}
	}
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrWatch, d, err)
		}
	}

	p.runLogged(ctx)
	p.log.Info(ctx, "watching for changes", logger.Int("files", len(targets)))

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, watched := targets[filepath.Clean(event.Name)]; !watched {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			p.log.Debug(ctx, "input changed", logger.String("path", event.Name), logger.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(p.debounce)
			} else {
				timer.Reset(p.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			p.runLogged(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.log.Error(ctx, "watcher error", logger.Error(err))
		}
	}
}

func (p *Pipeline) runLogged(ctx context.Context) {
	if _, err := p.Run(ctx); err != nil {
		p.log.Error(ctx, "run failed, keeping previous charts", logger.Error(err))
	}
}

// watchTargets lists the cleaned paths whose changes trigger a re-run.
func (p *Pipeline) watchTargets() (map[string]struct{}, error) {
	targets := make(map[string]struct{})
	switch p.cfg.Source {
	case config.SourceSnapshot:
	case config.SourceCSV:
		if p.cfg.ShuttlesFile != "" {
			targets[filepath.Clean(p.cfg.ShuttlesFile)] = struct{}{}
		}
	default:
		return nil, fmt.Errorf("%w: source %q", ErrWatchUnsupported, p.cfg.Source)
	}
	targets[filepath.Clean(p.cfg.InputPath)] = struct{}{}
	return targets, nil
}
