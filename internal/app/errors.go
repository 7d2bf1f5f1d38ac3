package app

import "errors"

// Sentinel kinds for pipeline errors.
var (
	ErrWatchUnsupported = errors.New("watch needs a file source")
	ErrWatch            = errors.New("watch input")
)
