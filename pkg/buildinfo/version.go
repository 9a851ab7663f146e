// Package buildinfo holds the version stamped into the binary at link time:
//
//	go build -ldflags "-X github.com/matzehuels/netposter/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/netposter/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)"
//
// The version takes part in artifact cache keys, so a new release never
// serves posters drawn by an older renderer.
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Fingerprint identifies the renderer build in cache keys. Development
// builds include the commit, since their drawing code changes between
// commits without a version bump.
func Fingerprint() string {
	if Version == "dev" {
		return Version + "+" + Commit
	}
	return Version
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}
