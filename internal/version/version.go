package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the current application version, set with -ldflags.
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("pathreplay %s (%s, built %s, %s)", Version, GitSHA, BuildTime, runtime.Version())
}
