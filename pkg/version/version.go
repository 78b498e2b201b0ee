// Package version exposes build metadata injected at link time.
package version

import "fmt"

// Build metadata. Overridden with -ldflags "-X github.com/sgmi/proddash/pkg/version.version=...".
//
//nolint:gochecknoglobals // Set by the linker.
var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the semantic version of the binary.
func GetVersion() string {
	return version
}

// GetGitCommit returns the commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}

// String returns a one-line description suitable for `proddash version`.
func String() string {
	return fmt.Sprintf("proddash %s (commit %s, built %s)", version, gitCommit, buildDate)
}
