// Package gelz implements the LZ scheme found in GE image payloads.
//
// The stream is a sequence of tokens selected by a rolling control word.
// The control word holds eight usable bits; a refill pulls one byte from
// the input and sets the high byte to 0xff so that the exhausted state is
// detectable as control&0x100 == 0 after eight shifts.
//
// Token kinds:
//   - control bit 0: literal run. One count byte N, then N raw bytes.
//   - control bit 1: back-reference. A little-endian 16-bit word w; if
//     w&8 != 0 the token is short form (length = (w&7)+4, distance = w>>4),
//     otherwise one more byte extends it to a 24-bit composite v = w<<8|b
//     (length = (v&0xfff)+4, distance = v>>12).
//
// Back-references copy forward one byte at a time, so a distance smaller
// than the length replicates the bytes being written (run encoding).
// Expansion stops the moment the declared size is reached, mid-token if
// necessary.
package gelz

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrCorruptStream is returned when the input ends mid-token or a
// back-reference points outside the output produced so far.
var ErrCorruptStream = errors.New("gelz: corrupt stream")

// Decompress expands src into exactly unpackedSize bytes.
func Decompress(src []byte, unpackedSize int) ([]byte, error) {
	if unpackedSize < 0 {
		return nil, fmt.Errorf("%w: negative unpacked size %d", ErrCorruptStream, unpackedSize)
	}

	dst := make([]byte, unpackedSize)
	var control uint16
	sp, dp := 0, 0

	for dp < len(dst) {
		control >>= 1
		if control&0x0100 == 0 {
			if sp >= len(src) {
				return nil, fmt.Errorf("%w: truncated at control byte (offset %d)", ErrCorruptStream, sp)
			}
			control = uint16(src[sp]) | 0xff00
			sp++
		}

		if control&1 == 0 {
			if sp >= len(src) {
				return nil, fmt.Errorf("%w: truncated literal count (offset %d)", ErrCorruptStream, sp)
			}
			n := int(src[sp])
			sp++
			for n > 0 && dp < len(dst) {
				if sp >= len(src) {
					return nil, fmt.Errorf("%w: truncated literal run (offset %d)", ErrCorruptStream, sp)
				}
				dst[dp] = src[sp]
				dp++
				sp++
				n--
			}
			continue
		}

		if sp+2 > len(src) {
			return nil, fmt.Errorf("%w: truncated back-reference (offset %d)", ErrCorruptStream, sp)
		}
		word := uint32(binary.LittleEndian.Uint16(src[sp:]))
		sp += 2

		var length, distance int
		if word&8 == 0 {
			if sp >= len(src) {
				return nil, fmt.Errorf("%w: truncated long back-reference (offset %d)", ErrCorruptStream, sp)
			}
			v := word<<8 | uint32(src[sp])
			sp++
			length = int(v&0x0fff) + 4
			distance = int(v >> 12)
		} else {
			length = int(word&7) + 4
			distance = int(word >> 4)
		}

		if distance == 0 || distance > dp {
			return nil, fmt.Errorf("%w: back-reference distance %d at output %d", ErrCorruptStream, distance, dp)
		}

		// Byte-at-a-time on purpose: the source window may overlap the
		// region being written.
		from := dp - distance
		for length > 0 && dp < len(dst) {
			dst[dp] = dst[from]
			dp++
			from++
			length--
		}
	}

	return dst, nil
}
