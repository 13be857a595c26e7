package path

import "errors"

// All search failures are recoverable: the owning task decides whether to
// retry, wait for more map data, or abandon the goal.
var (
	ErrUnreachable    = errors.New("goal unreachable")
	ErrIterationLimit = errors.New("iteration limit exceeded")
	ErrUnknownTerrain = errors.New("start or goal on unexplored terrain")
)
