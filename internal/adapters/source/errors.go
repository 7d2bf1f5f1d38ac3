package source

import "errors"

// Sentinel kinds for loader errors.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrMalformedData    = errors.New("malformed data")
	ErrReadInput        = errors.New("read input")
	ErrDump             = errors.New("dump response")
	ErrUnknownSource    = errors.New("unknown source")
)
