// Package version carries build metadata stamped in at link time.
package version

//nolint:revive // Overridden via -ldflags on release builds.
var (
	Version = "dev"
	Commit  = "unknown"
)
