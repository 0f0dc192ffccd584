package crowd

import "errors"

// Setup errors. Callers match them with errors.Is; the engine wraps them
// with the offending agent or feature name.
var (
	ErrPathTooShort      = errors.New("path needs at least two waypoints")
	ErrFeatureNotFound   = errors.New("trajectory feature not found")
	ErrLookaheadMismatch = errors.New("trajectory position and direction prediction frames differ")
	ErrMissingBone       = errors.New("simulation bone is required")
	ErrUnknownAgent      = errors.New("unknown agent")
	ErrDuplicateGroup    = errors.New("group already exists")
)
