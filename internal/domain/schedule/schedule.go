// Package schedule decides which shuttle is highlighted and whether the time
// axis switches to a logarithmic scale for the final rush.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/okian/shuttlestats/internal/domain/model"
)

// Sentinel kinds for schedule errors.
var (
	ErrNoFutureShuttles = errors.New("no future shuttles found in the data")
	ErrUnknownShuttle   = errors.New("unknown shuttle id")
)

const hoursPerDay = 24

// Nearest returns the shuttle whose deadline is closest to, but not before, now.
// Ties go to the earlier entry in shuttles.
func Nearest(shuttles []model.Shuttle, now time.Time) (model.Shuttle, error) {
	var (
		best  model.Shuttle
		found bool
	)
	for _, s := range shuttles {
		if s.Deadline.Before(now) {
			continue
		}
		if !found || s.Deadline.Sub(now) < best.Deadline.Sub(now) {
			best, found = s, true
		}
	}
	if !found {
		return model.Shuttle{}, ErrNoFutureShuttles
	}
	return best, nil
}

// Request carries the clock and the user's overrides for Decide.
type Request struct {
	Now time.Time
	// ForceShuttleID overrides the highlighted shuttle when non-zero.
	ForceShuttleID int
	// ForceLog always selects the logarithmic axis.
	ForceLog bool
	// LogWindow enables the log axis when the nearest deadline is at most
	// this far away. Zero disables the automatic switch.
	LogWindow time.Duration
}

// Plan is the rendering decision for one run.
type Plan struct {
	Highlight model.Shuttle
	// Nearest is the upcoming shuttle, valid when HasNearest is set.
	Nearest    model.Shuttle
	HasNearest bool
	// DaysToNearest is fractional days from now to Nearest's deadline.
	DaysToNearest float64
	LogAxis       bool
}

// Decide builds the Plan. Without a forced shuttle it requires an upcoming
// deadline and fails with ErrNoFutureShuttles otherwise.
func Decide(shuttles []model.Shuttle, req Request) (Plan, error) {
	var plan Plan

	nearest, err := Nearest(shuttles, req.Now)
	switch {
	case err == nil:
		plan.Nearest = nearest
		plan.HasNearest = true
		plan.DaysToNearest = nearest.Deadline.Sub(req.Now).Hours() / hoursPerDay
		plan.Highlight = nearest
	case req.ForceShuttleID == 0:
		return Plan{}, err
	}

	if req.ForceShuttleID != 0 {
		forced, ok := find(shuttles, req.ForceShuttleID)
		if !ok {
			return Plan{}, fmt.Errorf("%w: %d", ErrUnknownShuttle, req.ForceShuttleID)
		}
		plan.Highlight = forced
	}

	plan.LogAxis = req.ForceLog ||
		(plan.HasNearest && req.LogWindow > 0 && nearest.Deadline.Sub(req.Now) <= req.LogWindow)
	return plan, nil
}

func find(shuttles []model.Shuttle, id int) (model.Shuttle, bool) {
	for _, s := range shuttles {
		if s.ID == id {
			return s, true
		}
	}
	return model.Shuttle{}, false
}
