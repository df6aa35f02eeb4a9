package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const (
	// Version is the release of the dashboard server
	Version = "0.3.0"

	// APIVersion prefixes the request and response types in api/v1
	APIVersion = "v1"
)

// Commit is the source revision, set with
// -ldflags "-X fielddash/pkg/contracts.Commit=<sha>". When unset the VCS
// stamp embedded by the Go toolchain is used.
var Commit = ""

// Revision returns the source revision this binary was built from, or "unknown"
func Revision() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				if len(s.Value) > 12 {
					return s.Value[:12]
				}
				return s.Value
			}
		}
	}
	return "unknown"
}

// Describe is the one-line answer to -version
func Describe() string {
	return fmt.Sprintf("fielddash v%s (api %s, commit %s, %s %s/%s)",
		Version, APIVersion, Revision(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
