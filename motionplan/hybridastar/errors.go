package hybridastar

import "github.com/pkg/errors"

// ErrNoPlanFound is returned, possibly wrapped, whenever Plan fails to produce a trajectory.
var ErrNoPlanFound = errors.New("hybrid a star failed to find a trajectory")

var (
	// ErrInvalidBounds is returned when the planning bounds are empty or not finite.
	ErrInvalidBounds = errors.Wrap(ErrNoPlanFound, "invalid bounds")
	// ErrInvalidStart is returned when the start pose is outside the bounds or in collision.
	ErrInvalidStart = errors.Wrap(ErrNoPlanFound, "invalid start pose")
	// ErrInvalidGoal is returned when the goal pose is outside the bounds or in collision.
	ErrInvalidGoal = errors.Wrap(ErrNoPlanFound, "invalid goal pose")
)

// newExhaustedError is returned when the frontier empties or the expansion limit is reached.
func newExhaustedError(expanded int) error {
	return errors.Wrapf(ErrNoPlanFound, "search exhausted after %d expansions", expanded)
}
