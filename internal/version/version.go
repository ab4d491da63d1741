// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "0.0.1"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata for startup logs and the API title.
func String() string {
	return Version + " (" + Commit + ", " + Date + ")"
}
