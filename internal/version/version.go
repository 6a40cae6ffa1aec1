// Package version reports how the swatch binary was built. Release builds
// set the variables below with -ldflags "-X", for example:
//
//	-X github.com/jmylchreest/swatch/internal/version.Version=1.2.0
//	-X github.com/jmylchreest/swatch/internal/version.Commit=$(git rev-parse HEAD)
//	-X github.com/jmylchreest/swatch/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)
package version

import (
	"fmt"
	"runtime"
	"strings"
)

const unset = "unknown"

// Build metadata injected by the linker.
var (
	Version = "dev"
	Commit  = unset
	Date    = unset
)

// Info is the build metadata plus the toolchain and platform of the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo collects the current build metadata.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders i as the one-line banner printed by "swatch version".
// Commit and date are only shown when both were injected.
func (i Info) String() string {
	details := []string{i.GoVersion, i.Platform}
	if i.Commit != unset && i.Date != unset {
		details = append([]string{"commit: " + shortCommit(i.Commit), "built: " + i.Date}, details...)
	}
	return fmt.Sprintf("swatch version %s (%s)", i.Version, strings.Join(details, ", "))
}

// String returns the banner for the running binary.
func String() string {
	return GetInfo().String()
}

// Short returns just the version, e.g. "1.2.0" or "dev".
func Short() string {
	return Version
}

func shortCommit(c string) string {
	const n = 8
	if len(c) > n {
		return c[:n]
	}
	return c
}
