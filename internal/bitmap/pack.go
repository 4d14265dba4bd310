package bitmap

import "fmt"

// PackedLen returns the number of bytes needed to carry a width x height
// frame, ceil(width*height/8). It returns 0 for non-positive sizes and for
// sizes whose cell count does not fit in an int.
func PackedLen(width, height int) int {
	if checkDimensions(width, height) != nil {
		return 0
	}
	return (width*height + 7) / 8
}

// Pack flattens b row-major and packs it eight cells per byte, LSB first:
// cell i of the flattened sequence is stored in bit i%8 of byte i/8. Padding
// bits in the last byte are zero. The result carries no header.
func Pack(b *Binary) ([]byte, error) {
	if err := checkBinary(b); err != nil {
		return nil, err
	}

	out := make([]byte, PackedLen(b.Width, b.Height))
	for i, v := range b.Pix {
		out[i>>3] |= (v & 1) << uint(i&7)
	}
	return out, nil
}

// Unpack is the left inverse of Pack. It reads ceil(width*height/8) bytes from
// data, ignoring anything after them, and discards the padding bits.
//
// Unpack cannot detect a width/height pair that differs from the one used at
// encode time; any pair whose byte count fits yields a well-formed grid.
func Unpack(data []byte, width, height int) (*Binary, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	need := PackedLen(width, height)
	if len(data) < need {
		return nil, fmt.Errorf("%w: %dx%d needs %d bytes, got %d",
			ErrInsufficientData, width, height, need, len(data))
	}

	b := NewBinary(width, height)
	for i := range b.Pix {
		b.Pix[i] = (data[i>>3] >> uint(i&7)) & 1
	}
	return b, nil
}
