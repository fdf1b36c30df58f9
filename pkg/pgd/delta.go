package pgd

import "fmt"

// Per-row predictor modes stored ahead of delta-filtered pixel data.
const (
	deltaHorizontal = 1
	deltaVertical   = 2
	deltaAverage    = 4
)

// InverseDelta undoes the per-row predictive filter in place. pixels
// holds height rows of width*channels interleaved samples and modes
// selects the predictor for each row. All arithmetic wraps modulo 256.
//
// Rows are reconstructed top to bottom, so a row's predictor only ever
// reads the already final previous row. The current and previous rows
// are disjoint subslices of pixels; nothing is copied.
func InverseDelta(pixels, modes []byte, width, height, channels int) error {
	if channels != 3 && channels != 4 {
		return fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}
	if len(modes) < height {
		return fmt.Errorf("%w: %d mode bytes for %d rows", ErrCorruptImage, len(modes), height)
	}
	stride := width * channels
	if len(pixels) < stride*height {
		return fmt.Errorf("%w: pixel buffer %d bytes, need %d", ErrCorruptImage, len(pixels), stride*height)
	}

	for y := 0; y < height; y++ {
		row := pixels[y*stride : (y+1)*stride]
		var prev []byte
		if y > 0 {
			prev = pixels[(y-1)*stride : y*stride]
		}
		switch modes[y] {
		case deltaHorizontal:
			for x := channels; x < stride; x++ {
				row[x] = row[x-channels] - row[x]
			}
		case deltaVertical:
			if prev == nil {
				return fmt.Errorf("%w: vertical predictor on first row", ErrUnsupportedFilterMode)
			}
			for x := 0; x < stride; x++ {
				row[x] = prev[x] - row[x]
			}
		case deltaAverage:
			if prev == nil {
				return fmt.Errorf("%w: average predictor on first row", ErrUnsupportedFilterMode)
			}
			for x := channels; x < stride; x++ {
				mean := (uint16(prev[x]) + uint16(row[x-channels])) >> 1
				row[x] = byte(mean) - row[x]
			}
		default:
			return fmt.Errorf("%w: mode %d on row %d", ErrUnsupportedFilterMode, modes[y], y)
		}
	}
	return nil
}
