package transport

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrArmor is returned when an armored payload is not valid base64.
var ErrArmor = errors.New("invalid base64 payload")

// Armor returns the standard padded base64 form of the bytes carried by units.
func Armor(units Units) (string, error) {
	data, err := FromUnits(units)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Unarmor decodes a base64 payload back into code units.
// Surrounding whitespace is ignored.
func Unarmor(s string) (Units, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArmor, err)
	}
	return ToUnits(data), nil
}
