package preprocess

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/disintegration/gift"
	exif "github.com/dsoprea/go-exif/v3"
)

// Orientation returns the EXIF Orientation tag (1-8) of an encoded image.
// Images without EXIF data, or without the tag, report 1 (upright).
func Orientation(data []byte) (int, error) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return 1, nil
		}
		return 1, fmt.Errorf("failed to extract EXIF: %w", err)
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return 1, fmt.Errorf("failed to parse EXIF: %w", err)
	}

	for _, entry := range entries {
		if entry.TagName != "Orientation" {
			continue
		}
		if v, ok := entry.Value.([]uint16); ok && len(v) > 0 {
			return int(v[0]), nil
		}
		n, err := strconv.Atoi(strings.Trim(entry.Formatted, "[] "))
		if err != nil {
			return 1, fmt.Errorf("unexpected Orientation value %q", entry.Formatted)
		}
		return n, nil
	}

	return 1, nil
}

// orientationFilter returns the transform that displays an image with the
// given EXIF orientation upright, or nil when nothing needs to change.
// gift rotates counter-clockwise.
func orientationFilter(orientation int) gift.Filter {
	switch orientation {
	case 2:
		return gift.FlipHorizontal()
	case 3:
		return gift.Rotate180()
	case 4:
		return gift.FlipVertical()
	case 5:
		return gift.Transpose()
	case 6:
		return gift.Rotate270()
	case 7:
		return gift.Transverse()
	case 8:
		return gift.Rotate90()
	default:
		return nil
	}
}
