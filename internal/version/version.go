package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/standardbeagle/fiosym/internal/fingerprint"
)

// Version information for fiosym
const (
	// Version is the current semantic version of fiosym
	Version = "0.1.0"

	// BuildDate is set during build time (use -ldflags)
	BuildDate = "development"

	// GitCommit is set during build time (use -ldflags)
	GitCommit = "unknown"
)

// Info returns version information as a string
func Info() string {
	return Version
}

// FullInfo returns detailed version information
func FullInfo() string {
	return "fiosym " + Version + " (commit: " + GitCommit + ", built: " + BuildDate + ")"
}

var (
	buildID     string
	buildIDOnce sync.Once
)

// BuildID returns a fingerprint of the current binary build.
// It covers the Go version, module path/version and VCS build settings.
func BuildID() string {
	buildIDOnce.Do(func() {
		buildID = computeBuildID()
	})
	return buildID
}

func computeBuildID() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version + "-" + GitCommit
	}

	var sb strings.Builder
	sb.WriteString(info.GoVersion)
	sb.WriteString(info.Main.Path)
	sb.WriteString(info.Main.Version)

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision", "vcs.modified", "vcs.time":
			sb.WriteString(s.Key)
			sb.WriteString(s.Value)
		}
	}

	return fmt.Sprintf("%016x", fingerprint.SumString(sb.String()))
}
