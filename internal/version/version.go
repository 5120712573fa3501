package version

import (
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // set via -ldflags "-X ...version.Version=v0.3.0"
	Commit    = "none"                          // short git sha
	BuildDate = time.Now().Format(time.RFC3339) // overridden at release build time
	GoVersion = runtime.Version()
)

// String renders the build metadata on one line, used by `marks version` and startup logs.
func String() string {
	return "marks " + Version + " (commit=" + Commit + ", built=" + BuildDate + ", go=" + GoVersion + ")"
}
