package hasher

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
)

// walkBoxesInRange walks boxes starting at offset and continuing while the
// current position is below end, used to descend into a container box's
// children (e.g. meta's pitm/iloc/iinf).
func walkBoxesInRange(file *os.File, offset, end int64, visit func(box) (keepGoing bool, err error)) error {
	pos := offset
	for pos < end {
		if _, err := file.Seek(pos, io.SeekStart); err != nil {
			return err
		}
		b, extendsToEOF, err := readBoxHeader(file)
		if err == errBoxEOF {
			return nil
		}
		if err != nil {
			return err
		}
		if extendsToEOF {
			b.size = end - b.offset
		}
		keepGoing, err := visit(b)
		if err != nil {
			return err
		}
		if !keepGoing {
			return nil
		}
		pos = b.offset + b.size
	}
	return nil
}

// extent is one (offset, length) byte range associated with an iloc item.
type extent struct {
	offset int64
	length int64
}

// readPrimaryItemID parses a pitm FullBox (spec §4.4.1 HEIC): version 0 uses
// a 16-bit item ID, version >= 1 uses 32-bit.
func readPrimaryItemID(file *os.File, b box) (uint32, error) {
	if _, err := file.Seek(b.offset, io.SeekStart); err != nil {
		return 0, err
	}
	var verFlags [4]byte
	if _, err := io.ReadFull(file, verFlags[:]); err != nil {
		return 0, err
	}
	version := verFlags[0]
	if version == 0 {
		var id [2]byte
		if _, err := io.ReadFull(file, id[:]); err != nil {
			return 0, err
		}
		return uint32(binary.BigEndian.Uint16(id[:])), nil
	}
	var id [4]byte
	if _, err := io.ReadFull(file, id[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(id[:]), nil
}

// readItemExtents parses an iloc FullBox (ISO/IEC 14496-12 ItemLocationBox)
// and returns the extents belonging to primaryItemID. Construction method is
// assumed to be 0 (file offset), which covers the overwhelming majority of
// HEIC files produced by camera/phone encoders; other construction methods
// (idat-relative, item-relative) are not supported and produce a FormatError,
// causing Hash to fall back to the full-file digest.
func readItemExtents(file *os.File, b box, primaryItemID uint32) ([]extent, error) {
	if _, err := file.Seek(b.offset, io.SeekStart); err != nil {
		return nil, err
	}
	var verFlags [4]byte
	if _, err := io.ReadFull(file, verFlags[:]); err != nil {
		return nil, err
	}
	version := verFlags[0]

	var sizesByte [2]byte
	if _, err := io.ReadFull(file, sizesByte[:]); err != nil {
		return nil, err
	}
	offsetSize := int(sizesByte[0] >> 4)
	lengthSize := int(sizesByte[0] & 0x0F)
	baseOffsetSize := int(sizesByte[1] >> 4)
	indexSize := int(sizesByte[1] & 0x0F)

	var itemCount uint32
	if version < 2 {
		var buf [2]byte
		if _, err := io.ReadFull(file, buf[:]); err != nil {
			return nil, err
		}
		itemCount = uint32(binary.BigEndian.Uint16(buf[:]))
	} else {
		var buf [4]byte
		if _, err := io.ReadFull(file, buf[:]); err != nil {
			return nil, err
		}
		itemCount = binary.BigEndian.Uint32(buf[:])
	}

	var result []extent
	for i := uint32(0); i < itemCount; i++ {
		var itemID uint32
		if version < 2 {
			var buf [2]byte
			if _, err := io.ReadFull(file, buf[:]); err != nil {
				return nil, err
			}
			itemID = uint32(binary.BigEndian.Uint16(buf[:]))
		} else {
			var buf [4]byte
			if _, err := io.ReadFull(file, buf[:]); err != nil {
				return nil, err
			}
			itemID = binary.BigEndian.Uint32(buf[:])
		}

		if version == 1 || version == 2 {
			var buf [2]byte
			if _, err := io.ReadFull(file, buf[:]); err != nil {
				return nil, err
			}
			method := binary.BigEndian.Uint16(buf[:]) & 0x0F
			if itemID == primaryItemID && method != 0 {
				return nil, errors.New("unsupported iloc construction method")
			}
		}

		var dataRefIdx [2]byte
		if _, err := io.ReadFull(file, dataRefIdx[:]); err != nil {
			return nil, err
		}

		baseOffset, err := readUintN(file, baseOffsetSize)
		if err != nil {
			return nil, err
		}

		var extentCountBuf [2]byte
		if _, err := io.ReadFull(file, extentCountBuf[:]); err != nil {
			return nil, err
		}
		extentCount := binary.BigEndian.Uint16(extentCountBuf[:])

		for e := uint16(0); e < extentCount; e++ {
			if (version == 1 || version == 2) && indexSize > 0 {
				if _, err := readUintN(file, indexSize); err != nil {
					return nil, err
				}
			}
			extOffset, err := readUintN(file, offsetSize)
			if err != nil {
				return nil, err
			}
			extLength, err := readUintN(file, lengthSize)
			if err != nil {
				return nil, err
			}
			if itemID == primaryItemID {
				result = append(result, extent{
					offset: int64(baseOffset) + int64(extOffset),
					length: int64(extLength),
				})
			}
		}
	}
	return result, nil
}

// readUintN reads an n-byte (0-8) big-endian unsigned integer; n == 0 yields
// 0 with no bytes consumed (iloc permits zero-width base_offset/index
// fields).
func readUintN(r io.Reader, n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range buf {
		v = (v << 8) | uint64(b)
	}
	return v, nil
}

// extractISOBMFFHEIC hashes, in iloc order, the byte extents that the
// primary item (pitm) occupies (spec §4.4.1 HEIC).
func extractISOBMFFHEIC(file *os.File, acc io.Writer) error {
	if err := findFtyp(file); err != nil {
		return &FormatError{Format: "heic", Err: err}
	}

	var metaBox *box
	if err := walkTopLevelBoxes(file, func(b box) (bool, error) {
		if b.boxType == "meta" {
			found := b
			metaBox = &found
			return false, nil
		}
		return true, nil
	}); err != nil {
		return &FormatError{Format: "heic", Err: err}
	}
	if metaBox == nil {
		return &FormatError{Format: "heic", Err: errors.New("no meta box found")}
	}

	// meta is a FullBox: 4 bytes of version/flags precede its children.
	childStart := metaBox.offset + 4
	childEnd := metaBox.offset + metaBox.size

	var pitmBox, ilocBox *box
	if err := walkBoxesInRange(file, childStart, childEnd, func(b box) (bool, error) {
		switch b.boxType {
		case "pitm":
			found := b
			pitmBox = &found
		case "iloc":
			found := b
			ilocBox = &found
		}
		return pitmBox == nil || ilocBox == nil, nil
	}); err != nil {
		return &FormatError{Format: "heic", Err: err}
	}
	if pitmBox == nil || ilocBox == nil {
		return &FormatError{Format: "heic", Err: errors.New("missing pitm or iloc box")}
	}

	primaryID, err := readPrimaryItemID(file, *pitmBox)
	if err != nil {
		return &FormatError{Format: "heic", Err: err}
	}
	extents, err := readItemExtents(file, *ilocBox, primaryID)
	if err != nil {
		return &FormatError{Format: "heic", Err: err}
	}
	if len(extents) == 0 {
		return &FormatError{Format: "heic", Err: errors.New("primary item has no extents")}
	}

	for _, ext := range extents {
		if _, err := file.Seek(ext.offset, io.SeekStart); err != nil {
			return &FormatError{Format: "heic", Err: err}
		}
		if _, err := io.CopyN(acc, file, ext.length); err != nil {
			return &FormatError{Format: "heic", Err: err}
		}
	}
	return nil
}
