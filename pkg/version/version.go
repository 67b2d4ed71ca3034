// Package version carries build metadata for the cfgnet binary.
package version

import "fmt"

// Version, GitCommit, and BuildDate are set at build time via ldflags:
//
//	go build -ldflags "-X github.com/newtron-network/cfgnet/pkg/version.Version=v1.0.0 \
//	  -X github.com/newtron-network/cfgnet/pkg/version.GitCommit=abc1234 \
//	  -X github.com/newtron-network/cfgnet/pkg/version.BuildDate=2026-01-01T00:00:00Z"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// IsDev reports whether the binary was built without version ldflags.
func IsDev() bool {
	return Version == "dev"
}

// Info returns a formatted version string for display.
func Info() string {
	return Version + " (" + GitCommit + ") built " + BuildDate
}

// Banner is the one-line output of the version command for tool.
func Banner(tool string) string {
	if IsDev() {
		return fmt.Sprintf("%s dev build (commit %s)", tool, GitCommit)
	}
	return fmt.Sprintf("%s %s", tool, Info())
}
