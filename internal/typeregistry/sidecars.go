package typeregistry

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/orphdat/orphdat/internal/pathcodec"
)

// SidecarPaths returns the paths of every sidecar file that exists on disk
// for mediaPath, constructed by swapping the primary's extension for each
// sidecar extension listed in the type table (spec §4.1). A media path
// carrying a backup suffix has no sidecars, matching the teacher's general
// habit of treating backup copies as inert (mirrors
// pkg/synchronization/core/ignore_vcs.go: a fixed table drives a pure
// predicate, no filesystem side effects beyond the Stat below).
func SidecarPaths(mediaPath string) []string {
	base := filepath.Base(mediaPath)
	if HasBackupSuffix(base) {
		return nil
	}

	ext := extFromFilename(base)
	entry, ok := Info(ext)
	if !ok || len(entry.Sidecars) == 0 {
		return nil
	}

	baseName, _ := pathcodec.SplitExt(base)
	dir := filepath.Dir(mediaPath)

	var paths []string
	for _, sidecarExt := range entry.Sidecars {
		candidate := filepath.Join(dir, baseName+"."+sidecarExt)
		if _, err := os.Stat(candidate); err == nil {
			paths = append(paths, candidate)
			continue
		}
		// Also try the upper-case spelling, since filenames on disk commonly
		// preserve the primary's original case convention.
		upper := filepath.Join(dir, baseName+"."+strings.ToUpper(sidecarExt))
		if _, err := os.Stat(upper); err == nil {
			paths = append(paths, upper)
		}
	}
	return paths
}

// isMediaPattern is built once, from the table's keys, at init.
var isMediaPattern *regexp.Regexp

func init() {
	exts := make([]string, 0, len(table))
	for ext := range table {
		exts = append(exts, regexp.QuoteMeta(ext))
	}
	isMediaPattern = regexp.MustCompile(`(?i)\.(` + strings.Join(exts, "|") + `)([._](bak|original|YYYYMMDDTHHMMSSZ~)\d*)?$`)
}

// IsMedia reports whether filename has a recognized media extension,
// optionally followed by a backup suffix (spec §4.1 is_media).
func IsMedia(filename string) bool {
	return isMediaPattern.MatchString(filename)
}
