package pgd

import "fmt"

// InversePlanar converts a planar, chroma-subsampled buffer back into
// interleaved BGR samples.
//
// The buffer holds two quarter-resolution chroma planes followed by a
// full-resolution luma plane. Chroma samples are signed; each one drives
// a 2x2 block of output pixels. The color transform works in 7-bit
// fixed point and clamps every channel to the byte range.
func InversePlanar(data []byte, width, height int) ([]byte, error) {
	size := width * height
	if need := size/2 + size; len(data) < need {
		return nil, fmt.Errorf("%w: planar buffer %d bytes, need %d", ErrCorruptImage, len(data), need)
	}

	stride := width * 3
	out := make([]byte, height*stride)

	p1 := 0
	p2 := size >> 2
	lum := size >> 1
	op := 0
	for by := 0; by < height>>1; by++ {
		for bx := 0; bx < width>>1; bx++ {
			c1 := int32(int8(data[p1]))
			c2 := int32(int8(data[p2]))
			blue := 226 * c1
			green := -43*c1 - 89*c2
			red := 179 * c2
			for _, i := range [4]int{0, 1, width, width + 1} {
				base := int32(data[lum+i]) << 7
				o := op + 3*i
				out[o] = clampByte((base + blue) >> 7)
				out[o+1] = clampByte((base + green) >> 7)
				out[o+2] = clampByte((base + red) >> 7)
			}
			p1++
			p2++
			lum += 2
			op += 6
		}
		lum += width
		op += stride
	}
	return out, nil
}

func clampByte(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
