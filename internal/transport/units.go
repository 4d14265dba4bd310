package transport

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// ErrUnitRange is returned when a code unit has no single-byte equivalent.
var ErrUnitRange = errors.New("code unit out of byte range")

// latin1 maps byte b to code point U+00bb and back, which is exactly the
// ordinal identity between bytes and code units.
var latin1 = charmap.ISO8859_1

// Units is a sequence of code units, one per packed byte.
// It is never interpreted as natural-language text.
type Units []rune

// ToUnits returns the code units for data. Unit i has the ordinal value of data[i].
func ToUnits(data []byte) Units {
	units := make(Units, len(data))
	for i, b := range data {
		units[i] = latin1.DecodeByte(b)
	}
	return units
}

// FromUnits returns the bytes carried by units.
// It fails with ErrUnitRange if any unit is outside 0x00-0xFF.
func FromUnits(units Units) ([]byte, error) {
	data := make([]byte, len(units))
	for i, r := range units {
		b, ok := latin1.EncodeRune(r)
		if !ok || r < 0 || r > 0xff {
			return nil, fmt.Errorf("%w: unit %d is U+%04X", ErrUnitRange, i, r)
		}
		data[i] = b
	}
	return data, nil
}
