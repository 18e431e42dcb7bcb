package hasher

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// pngSignature is the fixed 8-byte PNG file signature.
var pngSignature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// pngTextChunks are chunk types that carry textual metadata and do not
// contribute to the content hash (spec §4.4.1 PNG).
var pngTextChunks = map[string]bool{
	"tEXt": true,
	"zTXt": true,
	"iTXt": true,
}

// extractPNG hashes every chunk's type and data bytes except tEXt/zTXt/iTXt
// chunks, which are skipped entirely.
func extractPNG(file *os.File, acc io.Writer) error {
	var sig [8]byte
	if _, err := io.ReadFull(file, sig[:]); err != nil {
		return &FormatError{Format: "png", Err: err}
	}
	if sig != pngSignature {
		return &FormatError{Format: "png", Err: errors.New("bad PNG signature")}
	}

	for {
		var header [8]byte
		if _, err := io.ReadFull(file, header[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return &FormatError{Format: "png", Err: err}
		}
		size := binary.BigEndian.Uint32(header[0:4])
		chunkType := header[4:8]

		if pngTextChunks[string(chunkType)] {
			if _, err := file.Seek(int64(size)+4, io.SeekCurrent); err != nil {
				return &FormatError{Format: "png", Err: err}
			}
			continue
		}

		if _, err := acc.Write(chunkType); err != nil {
			return &FormatError{Format: "png", Err: err}
		}
		if size > 0 {
			if _, err := io.CopyN(acc, file, int64(size)); err != nil {
				return &FormatError{Format: "png", Err: err}
			}
		}
		// Seek past the 4-byte CRC that follows the chunk data.
		if _, err := file.Seek(4, io.SeekCurrent); err != nil {
			return &FormatError{Format: "png", Err: err}
		}
	}
}
