package render

import (
	"strconv"

	"github.com/okian/shuttlestats/internal/domain/aggregate"
	"github.com/okian/shuttlestats/internal/domain/model"
)

// Metric selects the y value plotted for each row.
type Metric int

const (
	// Projects plots the cumulative submission count.
	Projects Metric = iota
	// Utilisation plots cumulative tile utilisation in percent.
	Utilisation
)

// Line is one shuttle's series before it is handed to the chart library.
type Line struct {
	ShuttleID int
	Label     string
	Highlight bool
	X, Y      []float64
}

// Lines builds the series for metric from groups, in group order. Groups on
// the skip list, and groups without any value for metric, produce no line.
func (r *Renderer) Lines(groups []aggregate.Group, metric Metric, highlightID int) []Line {
	var out []Line
	for _, g := range groups {
		if !r.Plotted(g.Shuttle) {
			continue
		}
		name := g.Shuttle.DisplayName()
		l := Line{ShuttleID: g.Shuttle.ID, Highlight: g.Shuttle.ID == highlightID}

		switch metric {
		case Utilisation:
			l.Label = name
			for _, row := range g.Rows {
				if row.HasUtilisation {
					l.X = append(l.X, row.TimeRemaining)
					l.Y = append(l.Y, row.UtilisationPct)
				}
			}
		default:
			l.Label = "Shuttle " + name
			for _, row := range g.Rows {
				l.X = append(l.X, row.TimeRemaining)
				l.Y = append(l.Y, float64(row.CumulativeCount))
			}
		}

		if len(l.X) > 0 {
			out = append(out, l)
		}
	}
	return out
}

// Plotted reports whether s is drawn, i.e. neither its display name nor its
// id is on the skip list.
func (r *Renderer) Plotted(s model.Shuttle) bool {
	if _, ok := r.skip[s.DisplayName()]; ok {
		return false
	}
	_, ok := r.skip[strconv.Itoa(s.ID)]
	return !ok
}
