package render

import "errors"

// Sentinel kinds for render errors.
var (
	ErrNothingToPlot = errors.New("nothing to plot")
	ErrRender        = errors.New("render chart")
	ErrWrite         = errors.New("write chart")
)
