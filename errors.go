package facestudio

import "github.com/pkg/errors"

// The capture pipeline never aborts on these: every failure path substitutes
// a degraded result (usually the unmodified source raster) and carries on.
var (
	// ErrAllocation is returned when an output raster cannot be created.
	ErrAllocation = errors.New("facestudio: unable to allocate the output raster")

	// ErrInvalidRegion is returned when a requested region has no area
	// left after clamping it to the frame bounds.
	ErrInvalidRegion = errors.New("facestudio: region lies outside the frame")

	// ErrDetectorUnavailable is returned when no external face detector is
	// configured or the configured one produced no usable result.
	ErrDetectorUnavailable = errors.New("facestudio: face detector unavailable")

	// ErrComposite is returned when a raster-to-raster copy fails.
	ErrComposite = errors.New("facestudio: raster composite failed")

	// ErrCaptureBusy is returned when a capture is requested while the
	// previous one is still being processed.
	ErrCaptureBusy = errors.New("facestudio: capture already in progress")
)
