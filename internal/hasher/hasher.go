// Package hasher implements ContentHasher (spec §4.4): a format-aware digest
// that produces both a full-file MD5 and a "content" MD5 computed over only
// the payload bytes of the container.
//
// The streaming-digest-over-an-open-file idiom (open read-only, seek to the
// region of interest, io.Copy into a hash.Hash) is grounded on the teacher's
// pkg/synchronization/core/scan.go (which streams file content through a
// hash.Hash while computing an entry digest) and pkg/synchronization/core/io.go
// (the teacher wraps the destination writer so a scan can be cancelled
// mid-copy; orphdat omits that wrapper because ContentHasher.hash is not
// itself a cancellation point per spec §5 - cancellation happens between
// whole-file operations, at the HashEngine/FileWalker level).
package hasher

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/orphdat/orphdat/internal/typeregistry"
)

// Result is the outcome of hashing one media file (spec §4.4).
type Result struct {
	Version int
	Md5     string
	FullMd5 string
}

// FormatError indicates that a format extractor's byte-level invariant
// failed (spec §7 FormatError). ContentHasher.Hash recovers from this by
// falling back to a full-file hash; it is exported so extractors outside
// this package (tests, future formats) can construct it uniformly.
type FormatError struct {
	Format string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s extractor: %v", e.Format, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// extractor computes a content digest by reading exactly the payload bytes
// of a container from an already-open, seekable file handle and writing
// them into acc. It returns a FormatError on any byte-level invariant
// violation.
type extractor func(file *os.File, acc io.Writer) error

// extractors maps MIME type to its content extractor. Formats not listed
// here fall back to md5 == full_md5 per spec §4.4 step 2 and §3's "For
// formats where no content-specific extraction is defined" rule.
var extractors = map[string]extractor{
	"image/jpeg":      extractJPEG,
	"image/png":       extractPNG,
	"video/mp4v-es":   extractISOBMFFMdat,
	"video/quicktime": extractISOBMFFMdat,
	"image/heic":      extractISOBMFFHEIC,
}

// Warner receives non-fatal diagnostics (FormatError fallbacks). It's
// satisfied by *internal/logging.Logger; tests may supply a no-op.
type Warner interface {
	Warn(format string, args ...interface{})
}

// nopWarner discards warnings; used when callers don't care.
type nopWarner struct{}

func (nopWarner) Warn(string, ...interface{}) {}

// NopWarner is a Warner that discards every message.
var NopWarner Warner = nopWarner{}

// Hash computes the full-file and content MD5 digests for path (spec §4.4).
// warn receives a message whenever a format extractor falls back to a
// full-file hash because of a FormatError.
func Hash(path string, version int, warn Warner) (Result, error) {
	if warn == nil {
		warn = NopWarner
	}

	file, err := os.Open(path)
	if err != nil {
		return Result{}, errors.Wrap(err, "unable to open file")
	}
	defer file.Close()

	fullHasher := md5.New()
	if _, err := io.Copy(fullHasher, file); err != nil {
		return Result{}, errors.Wrap(err, "unable to read file")
	}
	fullDigest := hex.EncodeToString(fullHasher.Sum(nil))

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return Result{}, errors.Wrap(err, "unable to rewind file")
	}

	mime := typeregistry.Mime(path)
	contentDigest := fullDigest
	if extract, ok := extractors[mime]; ok {
		contentHasher := md5.New()
		if err := extract(file, contentHasher); err != nil {
			warn.Warn("content hash fallback for %s: %v", path, err)
		} else {
			contentDigest = hex.EncodeToString(contentHasher.Sum(nil))
		}
	}

	result := Result{
		Version: version,
		Md5:     contentDigest,
		FullMd5: fullDigest,
	}
	if !isHexDigest(result.Md5) || !isHexDigest(result.FullMd5) {
		return Result{}, errors.New("content hasher produced a malformed digest")
	}
	return result, nil
}

func isHexDigest(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}
