// Package typeregistry implements TypeRegistry (spec §4.1): a static,
// immutable table mapping media extensions to MIME types, sidecar
// extensions, and extension-order rank.
//
// The table-as-package-level-var idiom is grounded on the teacher's
// DefaultVCSIgnores in pkg/synchronization/core/ignore_vcs.go: a small,
// immutable, package-level data table consulted by pure lookup functions.
package typeregistry

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/orphdat/orphdat/internal/model"
	"github.com/orphdat/orphdat/internal/pathcodec"
)

// backupSuffixPattern matches the backup-file tail described in spec §3:
// "[._](bak|original|YYYYMMDDTHHMMSSZ~)\d*". The timestamp form is a literal
// "YYYYMMDDTHHMMSSZ~" token in the source tool, not a date format, so it's
// matched literally here too.
var backupSuffixPattern = regexp.MustCompile(`(?i)[._](bak|original|YYYYMMDDTHHMMSSZ~)\d*$`)

// StripBackupSuffix removes a trailing backup-file marker from filename, if
// present, returning the original string otherwise.
func StripBackupSuffix(filename string) string {
	return backupSuffixPattern.ReplaceAllString(filename, "")
}

// HasBackupSuffix reports whether filename carries a backup-file marker.
func HasBackupSuffix(filename string) bool {
	return backupSuffixPattern.MatchString(filename)
}

// table is the canonical, static extension table (spec §4.1). Keys are
// lowercase extensions without the leading dot.
var table = map[string]model.TypeEntry{
	"jpeg": {MIME: "image/jpeg", ExtOrder: 0},
	"jpg":  {MIME: "image/jpeg", Sidecars: []string{"aae"}, ExtOrder: 0},
	"heic": {MIME: "image/heic", Sidecars: []string{"xmp", "mov"}, ExtOrder: 0},
	"png":  {MIME: "image/png", ExtOrder: 0},
	"tif":  {MIME: "image/tiff", ExtOrder: 0},
	"tiff": {MIME: "image/tiff", ExtOrder: 0},
	"mp4":  {MIME: "video/mp4v-es", Sidecars: []string{"lrv", "thm"}, ExtOrder: 0},
	"m4v":  {MIME: "video/mp4v-es", ExtOrder: 0},
	"mov":  {MIME: "video/quicktime", ExtOrder: 0},
	"avi":  {MIME: "video/x-msvideo", ExtOrder: 0},
	"mp3":  {MIME: "audio/mpeg", ExtOrder: 0},
	"m2ts": {MIME: "video/mp2t", ExtOrder: 0},
	"mts":  {MIME: "video/mp2t", ExtOrder: 0},
	"mpg":  {MIME: "video/mpeg", ExtOrder: 0},
	"crw":  {MIME: "image/x-canon-crw", Sidecars: []string{"jpeg", "jpg", "xmp"}, ExtOrder: 0},
	"cr2":  {MIME: "image/x-canon-cr2", Sidecars: []string{"jpeg", "jpg", "xmp"}, ExtOrder: 0},
	"cr3":  {MIME: "image/x-canon-cr3", Sidecars: []string{"jpeg", "jpg", "xmp"}, ExtOrder: 0},
	"nef":  {MIME: "image/x-nikon-nef", Sidecars: []string{"jpeg", "jpg", "xmp"}, ExtOrder: 0},
	"raf":  {MIME: "image/x-fuji-raf", Sidecars: []string{"jpeg", "jpg", "xmp"}, ExtOrder: 0},
	"psd":  {MIME: "image/photoshop", ExtOrder: 0},
	"psb":  {MIME: "image/photoshop", ExtOrder: 0},
	// Sidecar extensions themselves: present in the table only so is_media
	// recognizes them; they carry no sidecars of their own.
	"xmp": {MIME: "application/rdf+xml", ExtOrder: 0},
	"aae": {MIME: "application/x-apple-aae", ExtOrder: 0},
	"lrv": {MIME: "video/mp4v-es", ExtOrder: 0},
	"thm": {MIME: "image/jpeg", ExtOrder: 0},
}

func init() {
	// Primaries that list sidecars sort before them (ExtOrder -1), per spec
	// §4.1 "All sidecared primaries get ext_order = -1".
	for ext, entry := range table {
		if len(entry.Sidecars) > 0 {
			entry.ExtOrder = -1
			table[ext] = entry
		}
	}

	// Assert acyclicity of the sidecar graph at load time (spec §4.1, §9) by
	// walking the Sidecars adjacency directly, rather than comparing the
	// derived ExtOrder ranks: a sidecar extension can itself be a sidecared
	// primary (JPG is both a standalone type and a listed sidecar of
	// CRW/CR2/CR3/NEF/RAF), so two unrelated primaries legitimately share the
	// same ExtOrder without there being any cycle between them.
	for ext := range table {
		if cyclePath := findSidecarCycle(ext); cyclePath != "" {
			panic(fmt.Sprintf("typeregistry: sidecar cycle: %s", cyclePath))
		}
	}
}

// findSidecarCycle runs a DFS from start over the Sidecars adjacency and
// returns a "->"-joined description of the first cycle found reachable from
// start, or "" if none exists.
func findSidecarCycle(start string) string {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)
	var path []string

	var walk func(ext string) string
	walk = func(ext string) string {
		if visiting[ext] {
			return strings.Join(append(append([]string{}, path...), ext), " -> ")
		}
		if visited[ext] {
			return ""
		}
		visiting[ext] = true
		path = append(path, ext)
		for _, sidecarExt := range table[ext].Sidecars {
			if _, ok := table[sidecarExt]; !ok {
				continue
			}
			if cyclePath := walk(sidecarExt); cyclePath != "" {
				return cyclePath
			}
		}
		path = path[:len(path)-1]
		visiting[ext] = false
		visited[ext] = true
		return ""
	}
	return walk(start)
}

// normalizeExt lowercases an extension that may or may not have a leading
// dot.
func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	return strings.TrimPrefix(ext, ".")
}

// extFromFilename strips a backup suffix then returns the lowercase
// extension of filename, as used by mime/is_media/info lookups (spec §4.1).
func extFromFilename(filename string) string {
	stripped := StripBackupSuffix(filename)
	_, ext := pathcodec.SplitExt(stripped)
	return normalizeExt(ext)
}

// Info looks up the TypeEntry for an extension, case-insensitively. The ext
// argument is taken as a bare extension (not a full filename); callers
// wanting backup-suffix stripping should go through Mime/SidecarPaths/IsMedia.
func Info(ext string) (model.TypeEntry, bool) {
	entry, ok := table[normalizeExt(ext)]
	return entry, ok
}

// Mime returns the MIME type for a media path, or "" if unknown (spec §4.1).
func Mime(mediaPath string) string {
	entry, ok := Info(extFromFilename(filepath.Base(mediaPath)))
	if !ok {
		return ""
	}
	return entry.MIME
}
