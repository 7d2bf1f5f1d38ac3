// Package snapshotgen produces synthetic submission-stats snapshots with the
// deadline rush seen on real shuttles.
package snapshotgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/natefinch/atomic"

	"github.com/okian/shuttlestats/pkg/logger"
)

// rushExponent skews submission times towards the deadline: the time
// remaining is Window * u^rushExponent for uniform u.
const rushExponent = 3

// Generate builds a snapshot from cfg. It is deterministic in cfg.Seed.
func Generate(cfg Config) Snapshot {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	snap := Snapshot{
		Shuttles:    make([]Shuttle, 0, cfg.Shuttles),
		Submissions: make([]Submission, 0, cfg.Shuttles*cfg.PerShuttle),
	}
	for i := 0; i < cfg.Shuttles; i++ {
		id := i + 1
		deadline := cfg.FirstDeadline.Add(time.Duration(i) * cfg.Spacing).UTC()

		sh := Shuttle{ID: id, Name: fmt.Sprintf("Synthetic Shuttle %d", id), Deadline: deadline.Format(time.RFC3339)}
		if cfg.TilesTotal > 0 {
			total := cfg.TilesTotal
			sh.TilesTotal = &total
		}
		snap.Shuttles = append(snap.Shuttles, sh)

		for j := 0; j < cfg.PerShuttle; j++ {
			before := time.Duration(float64(cfg.Window) * math.Pow(rng.Float64(), rushExponent))
			sub := Submission{
				ShuttleID:           id,
				FirstSubmissionTime: deadline.Add(-before).Format(time.RFC3339Nano),
			}
			if cfg.TilesTotal > 0 && cfg.MaxTiles > 0 {
				tiles := 1 + rng.IntN(cfg.MaxTiles)
				sub.TileCount = &tiles
			}
			snap.Submissions = append(snap.Submissions, sub)
		}
	}
	return snap
}

// Write stores snap as indented JSON at path, replacing any previous file.
func Write(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Run generates a snapshot and writes it to cfg.OutputFile.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Shuttles <= 0 || cfg.PerShuttle < 0 {
		return fmt.Errorf("invalid counts: shuttles=%d per_shuttle=%d", cfg.Shuttles, cfg.PerShuttle)
	}
	if cfg.Window <= 0 {
		return fmt.Errorf("window must be positive")
	}

	snap := Generate(cfg)
	if err := Write(cfg.OutputFile, snap); err != nil {
		return err
	}
	logger.Get().Info(ctx, "snapshot written",
		logger.String("path", cfg.OutputFile),
		logger.Int("shuttles", len(snap.Shuttles)),
		logger.Int("submissions", len(snap.Submissions)),
	)
	return nil
}
