package pgd

import (
	"fmt"
	"image"
)

// rasterFromBGR builds an RGBA raster from interleaved B,G,R[,A]
// samples. Three-channel input comes out fully opaque.
func rasterFromBGR(data []byte, width, height, channels int) (*image.RGBA, error) {
	if need := width * height * channels; len(data) < need {
		return nil, fmt.Errorf("%w: raster buffer %d bytes, need %d", ErrCorruptImage, len(data), need)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	pos := 0
	for y := 0; y < height; y++ {
		o := img.PixOffset(0, y)
		for x := 0; x < width; x++ {
			img.Pix[o] = data[pos+2]
			img.Pix[o+1] = data[pos+1]
			img.Pix[o+2] = data[pos]
			if channels == 4 {
				img.Pix[o+3] = data[pos+3]
			} else {
				img.Pix[o+3] = 0xff
			}
			pos += channels
			o += 4
		}
	}
	return img, nil
}

// cloneRaster returns an independent copy sharing nothing with src.
func cloneRaster(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
