// Package pathcodec implements PathCodec (spec §4.2): splitting, joining, and
// case-insensitively comparing media paths in "extension-order", the way
// sidecars are made to sort after their primaries.
//
// The component-wise comparison style is grounded on
// the teacher's root-relative path helpers in
// pkg/synchronization/core/path.go (pathDir/PathBase/pathLess), adapted here
// to work over absolute, canonical filesystem paths instead of
// synchronization-root-relative ones.
package pathcodec

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SplitExt splits a filename at its last dot into (base, ext). The extension
// excludes the dot. A filename with no dot returns an empty extension.
func SplitExt(filename string) (base, ext string) {
	idx := strings.LastIndexByte(filename, '.')
	if idx <= 0 {
		// No dot, or a dot-file with no extension (".bashrc"-style names are
		// not media files so this distinction rarely matters here).
		return filename, ""
	}
	return filename[:idx], filename[idx+1:]
}

// Canonicalize resolves ".." components, normalizes separators, and applies
// Unicode NFC normalization to the basename (mirroring the teacher's use of
// golang.org/x/text/unicode/norm in pkg/synchronization/core/scan.go to cope
// with filesystems that decompose Unicode on write).
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	clean := filepath.Clean(abs)
	dir, base := filepath.Split(clean)
	normalizedBase := norm.NFC.String(base)
	if normalizedBase == base {
		return clean, nil
	}
	return filepath.Join(dir, normalizedBase), nil
}

// ChangeFilename returns the canonicalized path obtained by replacing path's
// basename with newName, along with the original basename (spec §4.2
// change_filename).
func ChangeFilename(path, newName string) (newPath string, oldBasename string, err error) {
	dir := filepath.Dir(path)
	oldBasename = filepath.Base(path)
	joined := filepath.Join(dir, newName)
	canon, err := Canonicalize(joined)
	if err != nil {
		return "", oldBasename, err
	}
	return canon, oldBasename, nil
}

// Parent returns the parent directory of path.
func Parent(path string) string {
	return filepath.Dir(path)
}

// compareFold compares two strings case-insensitively by comparing their
// lowercased copies.
func compareFold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// CompareWithExtOrder implements spec §4.2's compare_with_ext_order. extOrderA
// and extOrderB are the ExtOrder values (from the type registry) for a and
// b's extensions respectively. If reverse is true, the ext-order comparison
// (and its extension-string tiebreak) are negated.
func CompareWithExtOrder(a, b string, extOrderA, extOrderB int, reverse bool) int {
	// 1. Compare directory components element-by-element, case-insensitively;
	// shorter (ancestor) directories precede longer ones.
	dirA, baseA := filepath.Split(a)
	dirB, baseB := filepath.Split(b)
	if c := compareDirs(dirA, dirB); c != 0 {
		return c
	}

	// 2. Compare basenames case-insensitively.
	baseNameA, extA := SplitExt(baseA)
	baseNameB, extB := SplitExt(baseB)
	if c := compareFold(baseNameA, baseNameB); c != 0 {
		return c
	}

	// 3. Compare ext_order numerically (lower first); negate under reverse.
	if extOrderA != extOrderB {
		c := extOrderA - extOrderB
		if reverse {
			c = -c
		}
		if c < 0 {
			return -1
		}
		return 1
	}

	// 4. Break ties by extension string, case-insensitively; also negated
	// under reverse per spec.
	c := compareFold(extA, extB)
	if reverse {
		c = -c
	}
	return c
}

// compareDirs compares two directory-component prefixes element-by-element,
// case-insensitively, treating a shorter path (an ancestor) as preceding a
// longer one.
func compareDirs(a, b string) int {
	aParts := splitDirComponents(a)
	bParts := splitDirComponents(b)
	for i := 0; i < len(aParts) && i < len(bParts); i++ {
		if c := compareFold(aParts[i], bParts[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(aParts) < len(bParts):
		return -1
	case len(aParts) > len(bParts):
		return 1
	default:
		return 0
	}
}

func splitDirComponents(dir string) []string {
	dir = strings.Trim(dir, string(filepath.Separator))
	if dir == "" {
		return nil
	}
	return strings.Split(dir, string(filepath.Separator))
}
