package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Build metadata injected with -ldflags "-X". Empty Commit and BuildTime are
// filled from the VCS stamp of the binary when one is present.
var (
	Version   = "0.1.0"
	Commit    = ""
	BuildTime = ""
)

//nolint:gochecknoglobals // Resolved once per process.
var resolveOnce sync.Once

// resolve completes Commit and BuildTime from the embedded build info.
func resolve() {
	resolveOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if ok {
			for _, setting := range info.Settings {
				switch {
				case setting.Key == "vcs.revision" && Commit == "":
					Commit = setting.Value
				case setting.Key == "vcs.time" && BuildTime == "":
					BuildTime = setting.Value
				}
			}
		}

		if len(Commit) > 12 {
			Commit = Commit[:12]
		}

		if Commit == "" {
			Commit = "none"
		}

		if BuildTime == "" {
			BuildTime = "unknown"
		}
	})
}

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full identifies the build, including the platform the binary was compiled for.
func Full() string {
	resolve()

	return fmt.Sprintf("winget-bootstrap %s %s/%s (commit %s, built %s)",
		Version, runtime.GOOS, runtime.GOARCH, Commit, BuildTime)
}

// UserAgent is sent with every artifact download.
func UserAgent() string {
	return "winget-bootstrap/" + Version + " (" + runtime.GOOS + "; " + runtime.GOARCH + ")"
}
