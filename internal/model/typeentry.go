package model

// TypeEntry describes everything the type registry knows about one media
// extension (spec §3, §4.1).
type TypeEntry struct {
	// MIME is the MIME type associated with the extension; empty for unknown
	// extensions.
	MIME string
	// Sidecars lists the extensions of companion files that accompany a
	// primary media file of this type.
	Sidecars []string
	// ExtOrder is the numeric rank used when sorting sidecars after their
	// primaries (spec §4.2 compare_with_ext_order).
	ExtOrder int
}
