package scatter

import "errors"

var (
	// ErrNotInitialized is returned when Update is called without a chart from Initialize.
	ErrNotInitialized = errors.New("scatter chart not initialized")
	// ErrNonFiniteRange means a NaN or infinite value reached the axis range.
	ErrNonFiniteRange = errors.New("axis range is not finite")
	ErrNoSurface      = errors.New("scatter chart requires a drawing surface")
)
