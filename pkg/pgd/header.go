package pgd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// MainHeader describes a standalone image record.
type MainHeader struct {
	Width        int
	Height       int
	Filter       FilterKind
	UnpackedSize int
	PackedSize   int
}

// SubHeader describes an overlay record applied to a named base image.
type SubHeader struct {
	X            int
	Y            int
	Width        int
	Height       int
	Channels     int
	BaseName     string
	UnpackedSize int
	PackedSize   int
}

// ReadMainHeader consumes and validates the magic plus the 36-byte main
// image header that follows it.
func ReadMainHeader(r io.Reader) (MainHeader, error) {
	var raw [4 + 36]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return MainHeader{}, fmt.Errorf("pgd: reading main header: %w", err)
	}
	kind, err := DetectKind(raw[:4])
	if err != nil {
		return MainHeader{}, err
	}
	if kind != KindMain {
		return MainHeader{}, fmt.Errorf("%w: %s record where a main image was expected", ErrUnsupportedFormat, kind)
	}

	b := raw[4:]
	h := MainHeader{
		Width:        int(binary.LittleEndian.Uint32(b[8:12])),
		Height:       int(binary.LittleEndian.Uint32(b[12:16])),
		Filter:       FilterKind(binary.LittleEndian.Uint16(b[24:26])),
		UnpackedSize: int(binary.LittleEndian.Uint32(b[28:32])),
		PackedSize:   int(binary.LittleEndian.Uint32(b[32:36])),
	}
	if h.Filter != FilterPlanar && h.Filter != FilterDelta {
		return MainHeader{}, fmt.Errorf("%w: filter kind %d", ErrUnsupportedFormat, uint16(h.Filter))
	}
	if h.Width <= 0 || h.Height <= 0 {
		return MainHeader{}, fmt.Errorf("%w: %dx%d image", ErrCorruptImage, h.Width, h.Height)
	}
	return h, nil
}

// ReadSubHeader consumes and validates the magic plus the 52-byte sub
// image header that follows it.
func ReadSubHeader(r io.Reader) (SubHeader, error) {
	var raw [4 + 52]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return SubHeader{}, fmt.Errorf("pgd: reading sub header: %w", err)
	}
	kind, err := DetectKind(raw[:4])
	if err != nil {
		return SubHeader{}, err
	}
	if kind != KindSub {
		return SubHeader{}, fmt.Errorf("%w: %s record where a sub image was expected", ErrUnsupportedFormat, kind)
	}

	b := raw[4:]
	h := SubHeader{
		X:      int(binary.LittleEndian.Uint16(b[0:2])),
		Y:      int(binary.LittleEndian.Uint16(b[2:4])),
		Width:  int(binary.LittleEndian.Uint16(b[4:6])),
		Height: int(binary.LittleEndian.Uint16(b[6:8])),
		// packed channel field holds the bit depth
		Channels:     int(binary.LittleEndian.Uint16(b[8:10])) >> 3,
		BaseName:     cstring(b[10:42]),
		UnpackedSize: int(binary.LittleEndian.Uint32(b[44:48])),
		PackedSize:   int(binary.LittleEndian.Uint32(b[48:52])),
	}
	if h.Channels != 3 && h.Channels != 4 {
		return SubHeader{}, fmt.Errorf("%w: %d channel overlay", ErrUnsupportedFormat, h.Channels)
	}
	return h, nil
}

// cstring decodes a NUL-padded fixed-width name field.
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
