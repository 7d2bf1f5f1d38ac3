package source

import (
	"context"
	"fmt"
	"os"

	"github.com/okian/shuttlestats/internal/domain/model"
)

// Snapshot reads a stats document previously dumped from the API.
type Snapshot struct {
	settings
	path string
}

// NewSnapshot creates a snapshot loader for path.
func NewSnapshot(path string, opts ...Option) *Snapshot {
	return &Snapshot{settings: newSettings(opts), path: path}
}

// Path is the file the loader reads.
func (s *Snapshot) Path() string { return s.path }

// Load implements Loader.
func (s *Snapshot) Load(_ context.Context) (*model.Dataset, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	ds, err := decodeStats(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return ds, nil
}
