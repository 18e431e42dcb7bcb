package hasher

// AlgorithmVersion is the current content-hashing algorithm version stamped
// into every newly computed HashRecord (spec §4.4.3).
const AlgorithmVersion = 6

// versionFloors gives, for each MIME type with a format-specific extractor,
// the minimum version at or above which a stored record is considered
// up-to-date (spec §4.4.3). MIME types absent from this map use a full-file
// hash that never changes behavior across versions, so any version is
// up-to-date for them.
var versionFloors = map[string]int{
	"image/heic":      6,
	"image/jpeg":      1,
	"video/mp4v-es":   2,
	"image/png":       3,
	"video/quicktime": 4,
}

// IsVersionCurrent reports whether version is up-to-date for mime, per the
// floors in spec §4.4.3.
func IsVersionCurrent(mime string, version int) bool {
	floor, ok := versionFloors[mime]
	if !ok {
		return true
	}
	return version >= floor
}
