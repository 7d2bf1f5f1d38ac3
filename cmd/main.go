package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/okian/shuttlestats/internal/app"
	"github.com/okian/shuttlestats/internal/config"
	"github.com/okian/shuttlestats/pkg/logger"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const usageHeader = `Plot Tiny Tapeout shuttle submission statistics.

Usage:
  shuttlestats [flags]

Flags:
`

type cliFlags struct {
	fs *flag.FlagSet

	logAxis     bool
	dump        bool
	show        bool
	watch       bool
	printConfig bool
	shuttleID   int
	source      string
	input       string
	configPath  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// parseFlags parses args. --help prints the usage to usageOut and returns
// flag.ErrHelp.
func parseFlags(args []string, usageOut io.Writer) (*cliFlags, error) {
	f := &cliFlags{fs: flag.NewFlagSet("shuttlestats", flag.ContinueOnError)}
	fs := f.fs
	fs.SetOutput(usageOut)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageHeader)
		fmt.Fprint(fs.Output(), fs.FlagUsages())
	}

	fs.BoolVar(&f.logAxis, "log", false, "Use a logarithmic time axis in hours")
	fs.BoolVar(&f.dump, "dump", false, "Save the fetched JSON to the dump path")
	fs.BoolVar(&f.show, "show", false, "Open the charts in an image viewer")
	fs.IntVar(&f.shuttleID, "shuttle-id", 0, "Force the highlighted shuttle id")
	fs.StringVar(&f.source, "source", "", "Data source: api, snapshot or csv")
	fs.StringVarP(&f.input, "input", "i", "", "Input file for the snapshot and csv sources")
	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file (default $"+config.EnvConfigPath+")")
	fs.BoolVar(&f.watch, "watch", false, "Re-render whenever the input file changes")
	fs.BoolVar(&f.printConfig, "print-config", false, "Print the effective configuration as YAML and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	return f, nil
}

// apply overrides cfg with the flags given on the command line.
func (f *cliFlags) apply(cfg *config.Config) {
	if f.logAxis {
		cfg.LogAxis = true
	}
	if f.dump {
		cfg.Dump = true
	}
	if f.show {
		cfg.Show = true
	}
	if f.fs.Changed("shuttle-id") {
		cfg.HighlightShuttleID = f.shuttleID
	}
	if f.fs.Changed("source") {
		cfg.Source = f.source
	}
	if f.fs.Changed("input") {
		cfg.InputPath = f.input
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args, stdout)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		fmt.Fprintln(stderr, "Run 'shuttlestats --help' for usage.")
		return exitUsage
	}

	if err := logger.InitWithWriter(stderr); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitFailure
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Defaults -> optional file -> env -> flags.
	cfg, err := config.Load(ctx, flags.configPath)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		return exitUsage
	}
	flags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		log.Error(ctx, "invalid configuration", logger.Error(err))
		return exitUsage
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if flags.printConfig {
		if err := printConfig(stdout, cfg); err != nil {
			log.Error(ctx, "failed to print config", logger.Error(err))
			return exitFailure
		}
		return exitOK
	}

	p, err := app.New(cfg,
		app.WithLogger(logger.Named("pipeline")),
		app.WithStdout(stdout),
	)
	if err != nil {
		log.Error(ctx, "failed to build pipeline", logger.Error(err))
		return exitFailure
	}

	if flags.watch {
		err = p.Watch(ctx)
	} else {
		_, err = p.Run(ctx)
	}
	if err != nil {
		log.Error(ctx, "run failed", logger.Error(err))
		return exitFailure
	}
	return exitOK
}

func printConfig(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
