// ISOBMFF (ISO Base Media File Format) box parsing shared by the MP4/MOV
// mdat extractor and the HEIC primary-item extractor (spec §4.4.1 ISOBMFF).
package hasher

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// box describes one top-level or nested ISOBMFF box: its type, the file
// offset of its payload (immediately after the header), and the payload's
// length.
type box struct {
	boxType string
	offset  int64
	size    int64 // payload size, excluding the header
}

// errBoxEOF signals the box list is exhausted (EOF with no partial header).
var errBoxEOF = errors.New("no more boxes")

// readBoxHeader reads one box header at the file's current position and
// returns the box descriptor plus whether the box's payload extends to EOF
// (size == 0 per the ISOBMFF spec).
func readBoxHeader(file *os.File) (box, bool, error) {
	var hdr [8]byte
	n, err := io.ReadFull(file, hdr[:])
	if err != nil {
		if n == 0 && (err == io.EOF) {
			return box{}, false, errBoxEOF
		}
		return box{}, false, err
	}

	size := int64(binary.BigEndian.Uint32(hdr[0:4]))
	boxType := string(hdr[4:8])
	headerLen := int64(8)

	switch size {
	case 1:
		var ext [8]byte
		if _, err := io.ReadFull(file, ext[:]); err != nil {
			return box{}, false, err
		}
		size = int64(binary.BigEndian.Uint64(ext[:]))
		headerLen += 8
		size -= headerLen
	case 0:
		pos, err := file.Seek(0, io.SeekCurrent)
		if err != nil {
			return box{}, false, err
		}
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return box{}, false, err
		}
		if _, err := file.Seek(pos, io.SeekStart); err != nil {
			return box{}, false, err
		}
		return box{boxType: boxType, offset: pos, size: end - pos}, true, nil
	default:
		size -= headerLen
	}

	if size < 0 {
		return box{}, false, errors.New("box has negative payload size")
	}

	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return box{}, false, err
	}
	return box{boxType: boxType, offset: offset, size: size}, false, nil
}

// walkTopLevelBoxes invokes visit for each top-level box in file until visit
// returns false, an error occurs, or EOF is reached.
func walkTopLevelBoxes(file *os.File, visit func(box) (keepGoing bool, err error)) error {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	for {
		b, extendsToEOF, err := readBoxHeader(file)
		if err == errBoxEOF {
			return nil
		}
		if err != nil {
			return err
		}
		keepGoing, err := visit(b)
		if err != nil {
			return err
		}
		if !keepGoing {
			return nil
		}
		if extendsToEOF {
			return nil
		}
		if _, err := file.Seek(b.offset+b.size, io.SeekStart); err != nil {
			return err
		}
	}
}

// majorBrandOf reads an ftyp box's major and compatible brands and resolves
// the effective major brand per spec §4.4.1: "if major brand is isom and
// exactly one non-isom compatible brand exists, use it instead."
func majorBrandOf(file *os.File, ftype box) (string, error) {
	if ftype.size < 8 {
		return "", errors.New("ftyp box too small")
	}
	if _, err := file.Seek(ftype.offset, io.SeekStart); err != nil {
		return "", err
	}
	var head [8]byte
	if _, err := io.ReadFull(file, head[:]); err != nil {
		return "", err
	}
	major := string(head[0:4])

	remaining := ftype.size - 8
	var compatible []string
	for remaining >= 4 {
		var brand [4]byte
		if _, err := io.ReadFull(file, brand[:]); err != nil {
			return "", err
		}
		compatible = append(compatible, string(brand[:]))
		remaining -= 4
	}

	if major != "isom" {
		return major, nil
	}
	var nonIsom []string
	for _, b := range compatible {
		if b != "isom" {
			nonIsom = append(nonIsom, b)
		}
	}
	if len(nonIsom) == 1 {
		return nonIsom[0], nil
	}
	return major, nil
}

var validMajorBrands = map[string]bool{
	"mp41": true,
	"mp42": true,
	"qt  ": true,
	"heic": true,
}

// findFtyp locates and validates the ftyp box, per spec §4.4.1.
func findFtyp(file *os.File) error {
	var ftypBox *box
	err := walkTopLevelBoxes(file, func(b box) (bool, error) {
		if b.boxType == "ftyp" {
			found := b
			ftypBox = &found
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return err
	}
	if ftypBox == nil {
		return errors.New("missing ftyp box")
	}
	brand, err := majorBrandOf(file, *ftypBox)
	if err != nil {
		return err
	}
	if !validMajorBrands[brand] {
		return errors.New("unrecognized major brand: " + brand)
	}
	return nil
}

// extractISOBMFFMdat hashes exactly the payload bytes of the first top-level
// mdat box (spec §4.4.1, MOV/MP4 case).
func extractISOBMFFMdat(file *os.File, acc io.Writer) error {
	if err := findFtyp(file); err != nil {
		return &FormatError{Format: "isobmff", Err: err}
	}

	var mdat *box
	err := walkTopLevelBoxes(file, func(b box) (bool, error) {
		if b.boxType == "mdat" {
			found := b
			mdat = &found
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return &FormatError{Format: "isobmff", Err: err}
	}
	if mdat == nil {
		return &FormatError{Format: "isobmff", Err: errors.New("no mdat box found")}
	}

	if _, err := file.Seek(mdat.offset, io.SeekStart); err != nil {
		return &FormatError{Format: "isobmff", Err: err}
	}
	if _, err := io.CopyN(acc, file, mdat.size); err != nil {
		return &FormatError{Format: "isobmff", Err: err}
	}
	return nil
}
