// Package buildinfo carries the release stamp, set at build time with
//
//	-ldflags "-X github.com/tally-dev/tally/internal/buildinfo.Version=v1.2.0 ..."
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the stamp for `tally --version`.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
