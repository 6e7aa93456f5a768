// Package version provides build-time version information for skillsim.
package version

import (
	"fmt"
	"runtime"
)

// Build-time variables set via ldflags.
// Example: go build -ldflags="-X github.com/magefree/skillcore-go/internal/version.Version=v1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Short returns the version string.
func Short() string {
	return Version
}

// Info returns a single-line version string with commit and build info.
func Info() string {
	commit := Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("skillsim %s (commit: %s, built: %s, go: %s)",
		Version, commit, BuildDate, runtime.Version())
}
