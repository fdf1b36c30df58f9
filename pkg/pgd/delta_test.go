package pgd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forwardDelta applies the row predictors in the encoding direction,
// reading only pristine input samples.
func forwardDelta(orig, modes []byte, width, height, channels int) []byte {
	stride := width * channels
	enc := make([]byte, len(orig))
	copy(enc, orig)
	for y := 0; y < height; y++ {
		row := orig[y*stride : (y+1)*stride]
		erow := enc[y*stride : (y+1)*stride]
		var prev []byte
		if y > 0 {
			prev = orig[(y-1)*stride : y*stride]
		}
		switch modes[y] {
		case deltaHorizontal:
			for x := channels; x < stride; x++ {
				erow[x] = row[x-channels] - row[x]
			}
		case deltaVertical:
			for x := 0; x < stride; x++ {
				erow[x] = prev[x] - row[x]
			}
		case deltaAverage:
			for x := channels; x < stride; x++ {
				erow[x] = byte((uint16(prev[x])+uint16(row[x-channels]))>>1) - row[x]
			}
		}
	}
	return enc
}

func TestInverseDelta(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		channels int
		modes    []byte
		pixels   []byte
		want     []byte
	}{
		{
			name:     "Horizontal",
			width:    2,
			height:   1,
			channels: 3,
			modes:    []byte{1},
			pixels:   []byte{10, 20, 30, 5, 251, 251},
			want:     []byte{10, 20, 30, 5, 25, 35},
		},
		{
			name:     "Vertical",
			width:    2,
			height:   2,
			channels: 3,
			modes:    []byte{1, 2},
			pixels: []byte{
				100, 150, 200, 56, 100, 144,
				10, 246, 246, 10, 246, 246,
			},
			want: []byte{
				100, 150, 200, 44, 50, 56,
				90, 160, 210, 34, 60, 66,
			},
		},
		{
			name:     "Average",
			width:    2,
			height:   2,
			channels: 4,
			modes:    []byte{1, 4},
			pixels: []byte{
				10, 20, 30, 40, 5, 251, 251, 251,
				7, 8, 9, 10, 162, 72, 22, 28,
			},
			want: []byte{
				10, 20, 30, 40, 5, 25, 35, 45,
				7, 8, 9, 10, 100, 200, 0, 255,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]byte, len(tt.pixels))
			copy(got, tt.pixels)
			err := InverseDelta(got, tt.modes, tt.width, tt.height, tt.channels)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Every predictor inverts the encoding direction exactly, for every
// byte value, in both channel widths.
func TestInverseDelta_RoundTrip(t *testing.T) {
	modes := []byte{1, 2, 4, 2, 4, 1}
	for _, channels := range []int{3, 4} {
		width := 24
		height := len(modes)
		stride := width * channels
		orig := make([]byte, stride*height)
		for i := range orig {
			orig[i] = byte(i*31 + 7)
		}

		enc := forwardDelta(orig, modes, width, height, channels)
		err := InverseDelta(enc, modes, width, height, channels)
		require.NoError(t, err)
		assert.Equal(t, orig, enc, "channels=%d", channels)
	}
}

func TestInverseDelta_Errors(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		channels int
		modes    []byte
		pixels   []byte
		want     error
	}{
		{
			name:     "VerticalOnFirstRow",
			width:    2,
			height:   1,
			channels: 3,
			modes:    []byte{2},
			pixels:   make([]byte, 6),
			want:     ErrUnsupportedFilterMode,
		},
		{
			name:     "AverageOnFirstRow",
			width:    2,
			height:   1,
			channels: 3,
			modes:    []byte{4},
			pixels:   make([]byte, 6),
			want:     ErrUnsupportedFilterMode,
		},
		{
			name:     "UnknownMode",
			width:    2,
			height:   1,
			channels: 3,
			modes:    []byte{3},
			pixels:   make([]byte, 6),
			want:     ErrUnsupportedFilterMode,
		},
		{
			name:     "BadChannels",
			width:    2,
			height:   1,
			channels: 2,
			modes:    []byte{1},
			pixels:   make([]byte, 4),
			want:     ErrUnsupportedFormat,
		},
		{
			name:     "ShortModes",
			width:    2,
			height:   3,
			channels: 3,
			modes:    []byte{1, 1},
			pixels:   make([]byte, 18),
			want:     ErrCorruptImage,
		},
		{
			name:     "ShortPixels",
			width:    2,
			height:   2,
			channels: 3,
			modes:    []byte{1, 1},
			pixels:   make([]byte, 11),
			want:     ErrCorruptImage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InverseDelta(tt.pixels, tt.modes, tt.width, tt.height, tt.channels)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
