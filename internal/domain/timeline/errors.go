package timeline

import "errors"

var (
	// ErrOutOfRange indicates a position outside the current timeline.
	ErrOutOfRange = errors.New("timeline position out of range")
	// ErrInvalidTimestamp indicates a timestamp the artifact cannot hold.
	ErrInvalidTimestamp = errors.New("invalid timeline timestamp")
)
