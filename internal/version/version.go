package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the semantic version of the binary. Overridden at build time.
	Version = "dev"
	// Commit is the git commit hash. Overridden at build time.
	Commit = "unknown"
	// BuildDate is the build timestamp. Overridden at build time.
	BuildDate = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	Module    string
	GoVersion string
	Platform  string
}

// Current collects build metadata, falling back to the runtime when the
// binary carries no module information (e.g. under go test).
func Current() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		Module:    "wallet-credit-score",
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Path != "" {
			info.Module = bi.Main.Path
		}
		if bi.GoVersion != "" {
			info.GoVersion = bi.GoVersion
		}
		if info.Commit == "unknown" {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && s.Value != "" {
					info.Commit = s.Value
				}
			}
		}
	}
	return info
}

// String renders the info one field per line.
func (i Info) String() string {
	return fmt.Sprintf("walletscore %s\nmodule: %s\ncommit: %s\nbuilt: %s\ngo: %s (%s)\n",
		i.Version, i.Module, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}

// UserAgent identifies HTTP requests made by this build.
func UserAgent() string {
	return fmt.Sprintf("walletscore/%s", Version)
}
