// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"time"
)

// Shuttle is one manufacturing round with a fixed submission deadline.
type Shuttle struct {
	ID         int
	Name       string
	Deadline   time.Time // UTC
	TilesTotal int       // 0 when the capacity is unknown
}

// DisplayName returns the shuttle name, or a placeholder when it has none.
func (s Shuttle) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return "Shuttle " + strconv.Itoa(s.ID)
}

// Submission is one project's entry into a shuttle.
type Submission struct {
	ShuttleID           int
	FirstSubmissionTime time.Time // UTC
	TileCount           int
	HasTiles            bool
}

// Dataset is everything a loader produces for one run.
type Dataset struct {
	Shuttles    []Shuttle
	Submissions []Submission
}

// ShuttleIndex maps shuttle ids to shuttles.
func (d *Dataset) ShuttleIndex() map[int]Shuttle {
	idx := make(map[int]Shuttle, len(d.Shuttles))
	for _, s := range d.Shuttles {
		idx[s.ID] = s
	}
	return idx
}
