// Package metadata declares MetadataExtractor (spec §6): the collaborator
// interface used by dedup-group tag diffing, kept as an opaque capability
// because EXIF/XMP tag extraction and diffing are explicitly out of scope
// for the hash engine (spec §1 Out of scope).
package metadata

// Extractor extracts a tag-name to value map from a media file (spec §6
// MetadataExtractor.extract). excludeSidecars, when non-empty, names
// sidecar extensions whose tags should not be merged into the result (e.g.
// excluding an XMP sidecar's tags when only the primary's embedded EXIF is
// wanted).
type Extractor interface {
	Extract(path string, excludeSidecars []string) (map[string]string, error)
}
