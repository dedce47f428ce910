package version

import (
	"fmt"
	"runtime"
)

// Set with -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
	BuiltBy = ""
)

// Full is the --version line.
func Full() string {
	result := fmt.Sprintf("voicemsg %s (%s/%s), commit %s, built at %s", Version, runtime.GOOS, runtime.GOARCH, Commit, Date)
	if BuiltBy != "" {
		result += " by " + BuiltBy
	}
	return result
}
