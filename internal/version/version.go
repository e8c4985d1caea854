// Package version exposes build-time version information, set via
// -ldflags at release time.
package version

var (
	// Version is the release version, e.g. "1.2.0".
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "unknown"
)
