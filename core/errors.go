package core

import "errors"

// Consistency errors indicate a bug in the caller or the engine: the
// occupancy index no longer matches the agents' cached positions. A
// simulation receiving one must stop rather than continue on corrupted state.
var (
	ErrAgentExists   = errors.New("agent id already registered in space")
	ErrAgentNotFound = errors.New("agent id not found in occupancy slot")
)

// Validation errors reject a request before any mutation happens; the caller
// can correct the input and retry.
var (
	ErrBadExtent         = errors.New("extent dimensions must be positive")
	ErrBadSpacing        = errors.New("extent must be an exact multiple of spacing")
	ErrOutOfExtent       = errors.New("position outside space extent")
	ErrNodeRange         = errors.New("node index out of range")
	ErrBadSearch         = errors.New("unknown search kind")
	ErrBadNeighborMode   = errors.New("unknown neighbor mode")
	ErrDimensionMismatch = errors.New("vector dimensionality does not match space")
	ErrNot2D             = errors.New("collision resolution requires two-dimensional state")
	ErrMovingReflector   = errors.New("infinite-mass agent must have zero velocity")
)
