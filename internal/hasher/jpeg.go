package hasher

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// jpegSOI is the JPEG Start Of Image marker.
const jpegSOI = 0xFFD8

// jpegSOS is the JPEG Start Of Scan marker; everything from here to EOF is
// compressed image data (spec §4.4.1 JPEG).
const jpegSOS = 0xFFDA

// extractJPEG hashes everything from the Start Of Scan marker to EOF,
// skipping over metadata segments (APPn, COM, etc.) without reading them.
func extractJPEG(file *os.File, acc io.Writer) error {
	var soi [2]byte
	if _, err := io.ReadFull(file, soi[:]); err != nil {
		return &FormatError{Format: "jpeg", Err: err}
	}
	if binary.BigEndian.Uint16(soi[:]) != jpegSOI {
		return &FormatError{Format: "jpeg", Err: errors.New("missing SOI marker")}
	}

	for {
		var marker [4]byte
		if _, err := io.ReadFull(file, marker[:]); err != nil {
			return &FormatError{Format: "jpeg", Err: errors.New("truncated before SOS")}
		}
		tag := binary.BigEndian.Uint16(marker[0:2])
		size := binary.BigEndian.Uint16(marker[2:4])

		if tag == jpegSOS {
			_, err := io.Copy(acc, file)
			if err != nil {
				return &FormatError{Format: "jpeg", Err: err}
			}
			return nil
		}

		if size < 2 {
			return &FormatError{Format: "jpeg", Err: errors.New("invalid segment length")}
		}
		// The length field is inclusive of its own 2 bytes, so the payload
		// remaining to skip is size-2.
		if _, err := file.Seek(int64(size-2), io.SeekCurrent); err != nil {
			return &FormatError{Format: "jpeg", Err: err}
		}
	}
}
