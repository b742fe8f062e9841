// Package buildinfo holds version information stamped in at build time:
//
//	go build -ldflags "-X github.com/matzehuels/ontoflow/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/ontoflow/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/ontoflow/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/ontoflow
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the semantic version, or "dev" for local builds.
	Version = "dev"
	// Commit is the git commit SHA.
	Commit = "none"
	// Date is the build timestamp.
	Date = "unknown"
)

// ServiceVersion returns Version, falling back to the module version
// recorded by the Go toolchain when ldflags were not set (go install).
func ServiceVersion() string {
	if Version != "dev" {
		return Version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return Version
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", ServiceVersion(), Commit, Date)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", ServiceVersion(), Commit, Date)
}
