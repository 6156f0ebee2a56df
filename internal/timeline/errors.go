package timeline

import "errors"

var (
	// ErrInvalidRange reports a trim/playhead combination that cannot form a
	// segment, or an index that cannot be mutated.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrInvalidSpeed reports a non-positive speed multiplier.
	ErrInvalidSpeed = errors.New("speed must be positive")

	// ErrInvalidWindow reports an overlay window with start >= end or bounds
	// outside the source duration.
	ErrInvalidWindow = errors.New("invalid overlay window")
)
