package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/okian/shuttlestats/internal/snapshotgen"
	"github.com/okian/shuttlestats/pkg/logger"
)

// Default generator settings.
const (
	defaultShuttles   = 4
	defaultPerShuttle = 300
	defaultSpacing    = 75 * 24 * time.Hour
	defaultWindow     = 120 * 24 * time.Hour
	defaultTilesTotal = 512
	defaultMaxTiles   = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		shuttles   = flag.Int("shuttles", defaultShuttles, "Number of shuttles")
		perShuttle = flag.Int("per-shuttle", defaultPerShuttle, "Submissions per shuttle")
		first      = flag.String("first-deadline", "", "Deadline of the first shuttle, RFC 3339 (default: 30 days ago)")
		spacing    = flag.Duration("spacing", defaultSpacing, "Gap between deadlines")
		window     = flag.Duration("window", defaultWindow, "How long each shuttle is open before its deadline")
		tilesTotal = flag.Int("tiles-total", defaultTilesTotal, "Tile capacity per shuttle, 0 to omit tile data")
		maxTiles   = flag.Int("max-tiles", defaultMaxTiles, "Largest tile count of one submission")
		seed       = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
		output     = flag.StringP("output", "o", "data.json", "Output snapshot file")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}

	firstDeadline := time.Now().UTC().Add(-30 * 24 * time.Hour)
	if *first != "" {
		t, err := time.Parse(time.RFC3339, *first)
		if err != nil {
			os.Stderr.WriteString("invalid --first-deadline: " + err.Error() + "\n")
			return 2
		}
		firstDeadline = t
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := snapshotgen.Config{
		Shuttles:      *shuttles,
		PerShuttle:    *perShuttle,
		FirstDeadline: firstDeadline,
		Spacing:       *spacing,
		Window:        *window,
		TilesTotal:    *tilesTotal,
		MaxTiles:      *maxTiles,
		Seed:          *seed,
		OutputFile:    *output,
	}
	if err := snapshotgen.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "snapshot generation failed", logger.Error(err))
		return 1
	}
	return 0
}
