package hasher

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// writeTemp writes data to a new file under t.TempDir() named name and
// returns the full path.
func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("unable to write temp file: %v", err)
	}
	return path
}

// minimalJPEG builds a synthetic JPEG with one APP1 metadata segment
// carrying metadata, followed by an SOS marker and scanData.
func minimalJPEG(metadata []byte, scanData []byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xD8}) // SOI
	buf.Write([]byte{0xFF, 0xE1}) // APP1
	length := len(metadata) + 2
	buf.Write([]byte{byte(length >> 8), byte(length)})
	buf.Write(metadata)
	buf.Write([]byte{0xFF, 0xDA}) // SOS
	buf.Write([]byte{0x00, 0x0C}) // arbitrary SOS header length, ignored by extractor
	buf.Write(make([]byte, 10))
	buf.Write(scanData)
	return buf.Bytes()
}

func TestExtractJPEGIgnoresMetadataSegments(t *testing.T) {
	scanData := []byte("compressed-scan-data")

	original := minimalJPEG([]byte("original comment"), scanData)
	edited := minimalJPEG([]byte("an entirely different comment, much longer than the original"), scanData)

	pathA := writeTemp(t, "a.jpg", original)
	pathB := writeTemp(t, "b.jpg", edited)

	resultA, err := Hash(pathA, 1, NopWarner)
	if err != nil {
		t.Fatalf("hash A failed: %v", err)
	}
	resultB, err := Hash(pathB, 1, NopWarner)
	if err != nil {
		t.Fatalf("hash B failed: %v", err)
	}

	if resultA.Md5 != resultB.Md5 {
		t.Errorf("content digests differ despite identical scan data: %s vs %s", resultA.Md5, resultB.Md5)
	}
	if resultA.FullMd5 == resultB.FullMd5 {
		t.Errorf("full-file digests should differ when file bytes differ")
	}
}

func TestExtractJPEGMissingSOI(t *testing.T) {
	path := writeTemp(t, "bad.jpg", []byte{0x00, 0x01, 0x02})
	result, err := Hash(path, 1, NopWarner)
	if err != nil {
		t.Fatalf("Hash should fall back instead of erroring: %v", err)
	}
	if result.Md5 != result.FullMd5 {
		t.Errorf("expected fallback to full-file hash when SOI is missing")
	}
}

// minimalPNG builds a synthetic PNG with an IHDR chunk, an optional tEXt
// chunk, and an IEND chunk.
func minimalPNG(textComment []byte) []byte {
	var buf bytes.Buffer
	buf.Write(pngSignature[:])

	writeChunk := func(chunkType string, data []byte) {
		length := make([]byte, 4)
		length[0] = byte(len(data) >> 24)
		length[1] = byte(len(data) >> 16)
		length[2] = byte(len(data) >> 8)
		length[3] = byte(len(data))
		buf.Write(length)
		buf.Write([]byte(chunkType))
		buf.Write(data)
		buf.Write([]byte{0, 0, 0, 0}) // fake CRC, never validated
	}

	writeChunk("IHDR", bytes.Repeat([]byte{0x01}, 13))
	if textComment != nil {
		writeChunk("tEXt", textComment)
	}
	writeChunk("IEND", nil)
	return buf.Bytes()
}

func TestExtractPNGIgnoresTextChunks(t *testing.T) {
	withoutText := minimalPNG(nil)
	withText := minimalPNG([]byte("Comment\x00this is a caption added later"))

	pathA := writeTemp(t, "a.png", withoutText)
	pathB := writeTemp(t, "b.png", withText)

	resultA, err := Hash(pathA, 1, NopWarner)
	if err != nil {
		t.Fatalf("hash A failed: %v", err)
	}
	resultB, err := Hash(pathB, 1, NopWarner)
	if err != nil {
		t.Fatalf("hash B failed: %v", err)
	}

	if resultA.Md5 != resultB.Md5 {
		t.Errorf("content digests differ despite only a tEXt chunk being added: %s vs %s", resultA.Md5, resultB.Md5)
	}
	if resultA.FullMd5 == resultB.FullMd5 {
		t.Errorf("full-file digests should differ when a chunk is added")
	}
}

// minimalMP4 builds a synthetic ISOBMFF file with an ftyp box (major brand
// mp42) and an mdat box carrying payload.
func minimalMP4(payload []byte) []byte {
	var buf bytes.Buffer

	writeBox := func(boxType string, data []byte) {
		size := 8 + len(data)
		sizeBuf := make([]byte, 4)
		sizeBuf[0] = byte(size >> 24)
		sizeBuf[1] = byte(size >> 16)
		sizeBuf[2] = byte(size >> 8)
		sizeBuf[3] = byte(size)
		buf.Write(sizeBuf)
		buf.Write([]byte(boxType))
		buf.Write(data)
	}

	ftypData := append([]byte("mp42"), []byte("\x00\x00\x00\x00mp42isom")...)
	writeBox("ftyp", ftypData)
	writeBox("moov", []byte("irrelevant-metadata-box"))
	writeBox("mdat", payload)
	return buf.Bytes()
}

func TestExtractISOBMFFMdatIgnoresMoov(t *testing.T) {
	payload := []byte("the-actual-video-sample-data")

	original := minimalMP4(payload)
	edited := minimalMP4(payload)
	// Mutate only the moov box contents (simulates a metadata-only rewrite),
	// keeping mdat's payload bytes identical.
	edited = bytes.Replace(edited, []byte("irrelevant-metadata-box"), []byte("rewritten-metadata-box!"), 1)

	pathA := writeTemp(t, "a.mov", original)
	pathB := writeTemp(t, "b.mov", edited)

	resultA, err := Hash(pathA, 1, NopWarner)
	if err != nil {
		t.Fatalf("hash A failed: %v", err)
	}
	resultB, err := Hash(pathB, 1, NopWarner)
	if err != nil {
		t.Fatalf("hash B failed: %v", err)
	}

	if resultA.Md5 != resultB.Md5 {
		t.Errorf("content digests differ despite identical mdat payload: %s vs %s", resultA.Md5, resultB.Md5)
	}
	if resultA.FullMd5 == resultB.FullMd5 {
		t.Errorf("full-file digests should differ when moov bytes differ")
	}
}

func TestExtractISOBMFFMissingFtypFallsBack(t *testing.T) {
	path := writeTemp(t, "bad.mov", []byte("not a box structure at all"))
	result, err := Hash(path, 1, NopWarner)
	if err != nil {
		t.Fatalf("Hash should fall back instead of erroring: %v", err)
	}
	if result.Md5 != result.FullMd5 {
		t.Errorf("expected fallback to full-file hash when ftyp is missing")
	}
}

func TestHashProducesLowercaseHexDigests(t *testing.T) {
	path := writeTemp(t, "plain.txt", []byte("arbitrary unrecognized content"))
	result, err := Hash(path, 1, NopWarner)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !isHexDigest(result.Md5) || !isHexDigest(result.FullMd5) {
		t.Errorf("expected well-formed hex digests, got %q / %q", result.Md5, result.FullMd5)
	}
	if result.Md5 != result.FullMd5 {
		t.Errorf("unrecognized formats should have content digest equal to full-file digest")
	}
}

func TestIsVersionCurrent(t *testing.T) {
	testCases := []struct {
		mime     string
		version  int
		expected bool
	}{
		{"image/jpeg", 1, true},
		{"image/jpeg", 0, false},
		{"image/png", 2, false},
		{"image/png", 3, true},
		{"image/heic", 5, false},
		{"image/heic", 6, true},
		{"application/octet-stream", 0, true},
	}

	for _, testCase := range testCases {
		if current := IsVersionCurrent(testCase.mime, testCase.version); current != testCase.expected {
			t.Errorf(
				"IsVersionCurrent(%q, %d) = %v, expected %v",
				testCase.mime, testCase.version, current, testCase.expected,
			)
		}
	}
}
