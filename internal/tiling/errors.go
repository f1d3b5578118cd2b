package tiling

import "errors"

var (
	// ErrVirtualTilingDisabled is returned when a canonical-strategy
	// operation runs before EnableVirtualTiling.
	ErrVirtualTilingDisabled = errors.New("virtual tiling not enabled")

	// ErrCloneFailed wraps a host refusal during replication. The
	// creation batch it aborts registers nothing.
	ErrCloneFailed = errors.New("entity clone failed")

	// ErrInvalidTileSize is returned for non-positive tile sizes.
	ErrInvalidTileSize = errors.New("tile size must be positive")
)
