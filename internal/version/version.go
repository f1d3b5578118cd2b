// Package version holds the build metadata stamped into the GUI and
// the tileexport CLI.
package version

// Overridden at build time via -ldflags -X.
var (
	// Version is the release tag, without a leading v.
	Version = "0.1.0"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"

	// GitCommit is the abbreviated commit hash.
	GitCommit = "unknown"
)
