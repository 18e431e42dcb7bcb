// Package version holds orphdat's release version, adapted from the
// teacher's pkg/mutagen/version.go (VersionMajor/Minor/Patch constants and a
// derived Version string). The wire-format version handshake functions from
// that file have no counterpart here: orphdat has no network protocol to
// negotiate a version over.
package version

import "fmt"

const (
	// Major is the current major version of orphdat.
	Major = 0
	// Minor is the current minor version of orphdat.
	Minor = 1
	// Patch is the current patch version of orphdat.
	Patch = 0
)

// String is the canonical "major.minor.patch" rendering of the current
// version.
var String = fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
