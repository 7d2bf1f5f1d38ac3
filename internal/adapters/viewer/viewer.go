// Package viewer opens written charts in the desktop image viewer.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/okian/shuttlestats/pkg/logger"
)

// Sentinel kinds for viewer errors.
var (
	ErrNoViewer = errors.New("no image viewer found")
	ErrOpen     = errors.New("open chart")
)

// Runner executes one viewer command and waits for it.
type Runner func(ctx context.Context, name string, args ...string) error

// Viewer launches a command per chart.
type Viewer struct {
	command  string
	goos     string
	run      Runner
	lookPath func(string) (string, error)
	log      logger.Logger
}

// Option applies a configuration option to the Viewer.
type Option func(*Viewer)

// WithRunner replaces process execution.
func WithRunner(r Runner) Option {
	return func(v *Viewer) {
		if r != nil {
			v.run = r
		}
	}
}

// WithLookPath replaces the executable lookup.
func WithLookPath(f func(string) (string, error)) Option {
	return func(v *Viewer) {
		if f != nil {
			v.lookPath = f
		}
	}
}

// WithOS selects the platform default as if running on goos.
func WithOS(goos string) Option {
	return func(v *Viewer) {
		if goos != "" {
			v.goos = goos
		}
	}
}

// WithLogger sets the viewer logger.
func WithLogger(l logger.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.log = l
		}
	}
}

// New creates a Viewer. An empty command selects the platform opener.
func New(command string, opts ...Option) *Viewer {
	v := &Viewer{
		command:  strings.TrimSpace(command),
		goos:     runtime.GOOS,
		run:      execRunner,
		lookPath: exec.LookPath,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Open shows each path in turn.
func (v *Viewer) Open(ctx context.Context, paths ...string) error {
	name, args, err := v.resolve()
	if err != nil {
		return err
	}
	for _, p := range paths {
		v.log.Debug(ctx, "opening chart", logger.String("viewer", name), logger.String("path", p))
		if err := v.run(ctx, name, append(args, p)...); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrOpen, p, err)
		}
	}
	return nil
}

// resolve picks the configured command, falling back to the platform opener.
func (v *Viewer) resolve() (string, []string, error) {
	var fields []string
	switch {
	case v.command != "":
		fields = strings.Fields(v.command)
	case v.goos == "darwin":
		fields = []string{"open"}
	case v.goos == "windows":
		fields = []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		fields = []string{"xdg-open"}
	}

	if _, err := v.lookPath(fields[0]); err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrNoViewer, fields[0])
	}
	return fields[0], fields[1:], nil
}

func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
