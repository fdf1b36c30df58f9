package pgd

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/supdrewin/cratri-unpac/pkg/compress/gelz"
)

// Delta-filtered main images open with an 8-byte preamble; the packed
// channel field sits at offset 2.
const deltaPreamble = 8

// DecodeMain reads a complete main image record, magic included, and
// returns the reconstructed raster.
func DecodeMain(r io.Reader) (*image.RGBA, error) {
	h, err := ReadMainHeader(r)
	if err != nil {
		return nil, err
	}
	data, err := readPayload(r, h.PackedSize, h.UnpackedSize)
	if err != nil {
		return nil, err
	}
	switch h.Filter {
	case FilterPlanar:
		bgr, err := InversePlanar(data, h.Width, h.Height)
		if err != nil {
			return nil, err
		}
		return rasterFromBGR(bgr, h.Width, h.Height, 3)
	case FilterDelta:
		return decodeDeltaMain(data, h.Width, h.Height)
	}
	return nil, fmt.Errorf("%w: filter kind %d", ErrUnsupportedFormat, uint16(h.Filter))
}

func decodeDeltaMain(data []byte, width, height int) (*image.RGBA, error) {
	if len(data) < deltaPreamble+height {
		return nil, fmt.Errorf("%w: delta image %d bytes, need preamble and %d row modes", ErrCorruptImage, len(data), height)
	}
	channels := int(binary.LittleEndian.Uint16(data[2:4])) >> 3
	modes := data[deltaPreamble : deltaPreamble+height]
	pixels := data[deltaPreamble+height:]
	if err := InverseDelta(pixels, modes, width, height, channels); err != nil {
		return nil, err
	}
	return rasterFromBGR(pixels, width, height, channels)
}

// ComposeSub reads a complete sub image record, magic included, and
// returns a copy of its base image with the overlay XORed over the
// window the header names. bases is keyed by lower-cased entry name;
// the header's base reference is matched case-insensitively. The base
// raster is never modified.
//
// Alpha takes part in the XOR only for four-channel overlays, so a
// three-channel overlay keeps the base's alpha untouched.
func ComposeSub(r io.Reader, bases map[string]*image.RGBA) (*image.RGBA, error) {
	h, err := ReadSubHeader(r)
	if err != nil {
		return nil, err
	}
	data, err := readPayload(r, h.PackedSize, h.UnpackedSize)
	if err != nil {
		return nil, err
	}
	if len(data) < h.Height {
		return nil, fmt.Errorf("%w: overlay %d bytes, need %d row modes", ErrCorruptImage, len(data), h.Height)
	}
	modes := data[:h.Height]
	pixels := data[h.Height:]
	if err := InverseDelta(pixels, modes, h.Width, h.Height, h.Channels); err != nil {
		return nil, err
	}

	base, ok := bases[strings.ToLower(h.BaseName)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingBaseImage, h.BaseName)
	}
	bounds := base.Bounds()
	if h.X+h.Width > bounds.Dx() || h.Y+h.Height > bounds.Dy() {
		return nil, fmt.Errorf("%w: %dx%d overlay at (%d,%d) exceeds %dx%d base",
			ErrCorruptImage, h.Width, h.Height, h.X, h.Y, bounds.Dx(), bounds.Dy())
	}

	out := cloneRaster(base)
	pos := 0
	for py := 0; py < h.Height; py++ {
		o := out.PixOffset(h.X, h.Y+py)
		for px := 0; px < h.Width; px++ {
			out.Pix[o] ^= pixels[pos+2]
			out.Pix[o+1] ^= pixels[pos+1]
			out.Pix[o+2] ^= pixels[pos]
			if h.Channels == 4 {
				out.Pix[o+3] ^= pixels[pos+3]
			}
			pos += h.Channels
			o += 4
		}
	}
	return out, nil
}

func readPayload(r io.Reader, packed, unpacked int) ([]byte, error) {
	if packed < 0 {
		return nil, fmt.Errorf("%w: negative payload size %d", ErrCorruptImage, packed)
	}
	payload := make([]byte, packed)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("pgd: reading %d byte payload: %w", packed, err)
	}
	return gelz.Decompress(payload, unpacked)
}
