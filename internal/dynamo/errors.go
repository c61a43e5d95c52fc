package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for episode and sweep operations.
var (
	// ErrDegenerateBox indicates a bounding box whose max corner lies below its min corner.
	ErrDegenerateBox = errors.New("dynamo: degenerate bounding box")

	// ErrShortProfile indicates a terrain profile with fewer than two vertices
	// or non-increasing x coordinates.
	ErrShortProfile = errors.New("dynamo: malformed terrain profile")

	// ErrInvalidSettings indicates physics settings outside their valid range.
	ErrInvalidSettings = errors.New("dynamo: invalid physics settings")

	// ErrInvalidMaterial indicates a voxel material outside its valid range.
	ErrInvalidMaterial = errors.New("dynamo: invalid voxel material")

	// ErrMissingVoxel indicates an episode needs a voxel in a slot that is empty.
	ErrMissingVoxel = errors.New("dynamo: required voxel slot is empty")

	// ErrNoResults indicates a sweep where no trial produced a row.
	ErrNoResults = errors.New("dynamo: no results, cannot derive table header")

	// ErrUnknownKey indicates a configuration key with no binding.
	ErrUnknownKey = errors.New("dynamo: unknown configuration key")

	// ErrBadValue indicates a configuration value of an incompatible type.
	ErrBadValue = errors.New("dynamo: incompatible configuration value")

	// ErrUnknownEpisode indicates an episode kind missing from the registry.
	ErrUnknownEpisode = errors.New("dynamo: unknown episode kind")

	// ErrUnstable indicates the physics state diverged (NaN or Inf positions).
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")
)

// SimulationError wraps an error raised inside the stepping loop.
type SimulationError struct {
	Step    int64
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
