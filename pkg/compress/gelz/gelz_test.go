package gelz

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompress(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
		size int
		want []byte
	}{
		{
			name: "Empty",
			src:  nil,
			size: 0,
			want: []byte{},
		},
		{
			name: "LiteralRun",
			src:  []byte{0x00, 0x03, 0xAA, 0xBB, 0xCC},
			size: 3,
			want: []byte{0xAA, 0xBB, 0xCC},
		},
		{
			// literal "abc", then short back-reference length 7 distance 3:
			// word = 3<<4 | 8 | (7-4) = 0x3B
			name: "ShortBackRef",
			src:  []byte{0x02, 0x03, 'a', 'b', 'c', 0x3B, 0x00},
			size: 10,
			want: []byte("abcabcabca"),
		},
		{
			// distance 1 overlap behaves as run-length expansion
			name: "OverlapRun",
			src:  []byte{0x02, 0x01, 'A', 0x1B, 0x00},
			size: 8,
			want: bytes.Repeat([]byte{'A'}, 8),
		},
		{
			// literal "wxyz", then long form v = 4<<12 | (12-4) = 0x4008,
			// emitted as word 0x0040 plus extension byte 0x08
			name: "LongBackRef",
			src:  []byte{0x02, 0x04, 'w', 'x', 'y', 'z', 0x40, 0x00, 0x08},
			size: 16,
			want: []byte("wxyzwxyzwxyzwxyz"),
		},
		{
			// nine single-byte literal runs force a control refill after
			// the eighth token
			name: "ControlRefill",
			src: []byte{
				0x00,
				0x01, 1, 0x01, 2, 0x01, 3, 0x01, 4,
				0x01, 5, 0x01, 6, 0x01, 7, 0x01, 8,
				0x00,
				0x01, 9,
			},
			size: 9,
			want: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9},
		},
		{
			// declared size cuts a literal run short
			name: "LiteralClipped",
			src:  []byte{0x00, 0x05, 'a', 'b', 'c', 'd', 'e'},
			size: 3,
			want: []byte("abc"),
		},
		{
			// declared size cuts a back-reference short:
			// word = 2<<4 | 8 | (10-4) = 0x2E
			name: "BackRefClipped",
			src:  []byte{0x02, 0x02, 'a', 'b', 0x2E, 0x00},
			size: 5,
			want: []byte("ababa"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompress(tt.src, tt.size)
			require.NoError(t, err)
			require.Len(t, got, tt.size)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecompress_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		src  []byte
		size int
	}{
		{"EmptyInput", nil, 4},
		{"MissingLiteralCount", []byte{0x00}, 1},
		{"TruncatedLiteral", []byte{0x00, 0x02, 'a'}, 2},
		{"TruncatedBackRefWord", []byte{0x01, 0x3B}, 4},
		{"TruncatedLongBackRef", []byte{0x01, 0x40, 0x00}, 4},
		{"ZeroDistance", []byte{0x02, 0x01, 'a', 0x0B, 0x00}, 4},
		{"DistanceBeforeStart", []byte{0x02, 0x01, 'a', 0x58, 0x00}, 4},
		{"BackRefBeforeAnyOutput", []byte{0x01, 0x1B, 0x00}, 4},
		{"NegativeSize", []byte{0x00}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decompress(tt.src, tt.size)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorruptStream)
		})
	}
}

// Unused trailing input is not an error: expansion stops at the declared
// size and whatever follows is the next record's problem.
func TestDecompress_IgnoresTrailingInput(t *testing.T) {
	src := []byte{0x00, 0x02, 'h', 'i', 0xFF, 0xFF, 0xFF}
	got, err := Decompress(src, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), got)
}
