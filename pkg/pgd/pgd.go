// Package pgd decodes the compressed raster images stored in PAC game
// archives.
//
// An image record opens with a four-byte magic. Main images ("GE \x00")
// carry their own pixel data, compressed with the gelz scheme and passed
// through one of two reconstruction filters: a chroma-subsampled planar
// transform or a per-row predictive delta filter. Sub images ("PGD3") are
// delta-filtered overlays that XOR onto a previously decoded main image,
// referenced by name.
//
// Basic usage:
//
//	img, err := pgd.DecodeMain(r)
//	if err != nil {
//		// errors.Is against the package sentinels
//	}
//
//	// sub images need the archive's already-decoded main images
//	overlaid, err := pgd.ComposeSub(r, decoded)
package pgd

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for unknown magics, filter kinds
	// and channel counts. Unrecognized values are never guessed at.
	ErrUnsupportedFormat = errors.New("pgd: unsupported format")

	// ErrUnsupportedFilterMode is returned for an unknown per-row delta
	// mode, or a mode that needs a previous row selected on the first row.
	ErrUnsupportedFilterMode = errors.New("pgd: unsupported filter mode")

	// ErrMissingBaseImage is returned when a sub image names a base that
	// was never decoded.
	ErrMissingBaseImage = errors.New("pgd: missing base image")

	// ErrCorruptImage is returned when decoded data does not cover the
	// layout its header declares.
	ErrCorruptImage = errors.New("pgd: corrupt image data")
)

const (
	mainMagic = "GE \x00"
	subMagic  = "PGD3"
)

// Kind identifies which of the two record layouts follows a magic.
type Kind int

const (
	KindUnknown Kind = iota
	KindMain
	KindSub
)

func (k Kind) String() string {
	switch k {
	case KindMain:
		return "main"
	case KindSub:
		return "sub"
	}
	return "unknown"
}

// DetectKind classifies the four-byte magic that opens an image record.
// Byte-level knowledge of the magics stays inside this package; callers
// dispatch on the returned Kind.
func DetectKind(magic []byte) (Kind, error) {
	if len(magic) >= 4 {
		switch string(magic[:4]) {
		case mainMagic:
			return KindMain, nil
		case subMagic:
			return KindSub, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: magic % x", ErrUnsupportedFormat, magic)
}

// FilterKind selects the pixel reconstruction applied after decompression
// of a main image.
type FilterKind uint16

const (
	FilterPlanar FilterKind = 2
	FilterDelta  FilterKind = 3
)

func (f FilterKind) String() string {
	switch f {
	case FilterPlanar:
		return "planar"
	case FilterDelta:
		return "delta"
	}
	return fmt.Sprintf("filter(%d)", uint16(f))
}
