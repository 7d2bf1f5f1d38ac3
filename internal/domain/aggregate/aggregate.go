// Package aggregate turns raw submissions into per-shuttle cumulative series
// measured against each shuttle's deadline.
package aggregate

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/okian/shuttlestats/internal/domain/model"
)

// minTimeRemaining keeps every value strictly positive so it can be drawn on
// a logarithmic axis.
const minTimeRemaining = 1.0

// Row is a submission enriched with its deadline-relative running totals.
type Row struct {
	model.Submission

	TimeRemaining   float64
	CumulativeCount int
	CumulativeTiles int
	UtilisationPct  float64
	HasUtilisation  bool
}

// Group holds the sorted rows of one shuttle.
type Group struct {
	Shuttle model.Shuttle
	Rows    []Row
}

// FinalCount is the total number of submissions in the group.
func (g Group) FinalCount() int {
	if len(g.Rows) == 0 {
		return 0
	}
	return g.Rows[len(g.Rows)-1].CumulativeCount
}

// FinalUtilisation returns the last utilisation value, if the group has one.
func (g Group) FinalUtilisation() (float64, bool) {
	if len(g.Rows) == 0 || !g.Rows[len(g.Rows)-1].HasUtilisation {
		return 0, false
	}
	return g.Rows[len(g.Rows)-1].UtilisationPct, true
}

// HasUtilisation reports whether any row carries a utilisation value.
func (g Group) HasUtilisation() bool {
	return slices.ContainsFunc(g.Rows, func(r Row) bool { return r.HasUtilisation })
}

// Result is the output of Build.
type Result struct {
	Granularity Granularity
	// Groups are ordered by ascending shuttle id.
	Groups []Group
	// Skipped holds submissions whose shuttle id is unknown, in input order.
	Skipped []model.Submission
}

// SkippedByShuttle counts skipped submissions per unknown shuttle id.
func (r Result) SkippedByShuttle() map[int]int {
	out := make(map[int]int)
	for _, s := range r.Skipped {
		out[s.ShuttleID]++
	}
	return out
}

// Build joins submissions to their shuttles, derives the time remaining before
// each deadline, and computes running totals per shuttle.
//
// Submissions referencing an unknown shuttle are not aggregated; they are
// returned in Result.Skipped so the caller can report them.
func Build(shuttles []model.Shuttle, submissions []model.Submission, opts ...Option) Result {
	o := options{granularity: Days}
	for _, opt := range opts {
		opt(&o)
	}

	index := make(map[int]model.Shuttle, len(shuttles))
	for _, s := range shuttles {
		index[s.ID] = s
	}

	res := Result{Granularity: o.granularity}
	rowsByShuttle := make(map[int][]Row)
	for _, sub := range submissions {
		shuttle, ok := index[sub.ShuttleID]
		if !ok {
			res.Skipped = append(res.Skipped, sub)
			continue
		}
		rowsByShuttle[sub.ShuttleID] = append(rowsByShuttle[sub.ShuttleID], Row{
			Submission:    sub,
			TimeRemaining: TimeRemaining(shuttle.Deadline, sub.FirstSubmissionTime, o.granularity),
		})
	}

	ids := make([]int, 0, len(rowsByShuttle))
	for id := range rowsByShuttle {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	res.Groups = make([]Group, 0, len(ids))
	for _, id := range ids {
		rows := rowsByShuttle[id]
		accumulate(index[id], rows)
		res.Groups = append(res.Groups, Group{Shuttle: index[id], Rows: rows})
	}
	return res
}

// accumulate sorts rows by descending time remaining, keeping input order for
// ties, and fills in the running totals.
func accumulate(shuttle model.Shuttle, rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TimeRemaining > rows[j].TimeRemaining
	})

	tiles := 0
	for i := range rows {
		rows[i].CumulativeCount = i + 1
		if rows[i].HasTiles {
			tiles += rows[i].TileCount
		}
		rows[i].CumulativeTiles = tiles
		if rows[i].HasTiles && shuttle.TilesTotal > 0 {
			rows[i].UtilisationPct = 100 * float64(tiles) / float64(shuttle.TilesTotal)
			rows[i].HasUtilisation = true
		}
	}
}

// TimeRemaining measures deadline - submitted in the given unit.
//
// Days are rounded up so a submission on the last day counts as one day
// remaining. Hours are fractional. Both are clamped to at least 1, which
// also absorbs submissions recorded after the deadline.
func TimeRemaining(deadline, submitted time.Time, g Granularity) float64 {
	delta := deadline.Sub(submitted)

	var v float64
	switch g {
	case Hours:
		v = delta.Hours()
	default:
		v = math.Ceil(delta.Hours() / 24)
	}
	return math.Max(v, minTimeRemaining)
}
