// Package codec provides the two operations a channel needs: turning an
// encoded image into transmission units, and turning received units back
// into a frame and its preview.
package codec

import (
	"fmt"

	"github.com/nao1215/meshpix/internal/bitmap"
	"github.com/nao1215/meshpix/internal/preprocess"
	"github.com/nao1215/meshpix/internal/transport"
)

// Options controls EncodeImage.
type Options struct {
	// Width and Height are the frame size in cells.
	Width  int
	Height int
	// Threshold is the luminance at or above which a cell is set.
	Threshold uint8
	// Preprocess holds optional filters applied before resizing.
	Preprocess []preprocess.Option
}

// DefaultOptions returns a 32x18 frame with threshold 128.
func DefaultOptions() Options {
	return Options{
		Width:     32,
		Height:    18,
		Threshold: bitmap.DefaultThreshold,
	}
}

// Encoded holds every intermediate product of an encode.
type Encoded struct {
	Gray   *bitmap.Gray
	Bits   *bitmap.Binary
	Packed []byte
	Units  transport.Units
}

// EncodeImage decodes an image file and returns its packed frame.
func EncodeImage(data []byte, opts Options) (*Encoded, error) {
	gray, err := preprocess.Preprocess(data, opts.Width, opts.Height, opts.Preprocess...)
	if err != nil {
		return nil, err
	}
	bits := bitmap.Binarize(gray, opts.Threshold)
	packed, err := bitmap.Pack(bits)
	if err != nil {
		return nil, fmt.Errorf("failed to pack frame: %w", err)
	}
	return &Encoded{
		Gray:   gray,
		Bits:   bits,
		Packed: packed,
		Units:  transport.ToUnits(packed),
	}, nil
}

// Preview selects how a decoded frame is upscaled for viewing.
type Preview struct {
	Gap  uint
	Mode bitmap.Mode
}

// DefaultPreview is a block upscale with a gap of 4 (5x).
func DefaultPreview() Preview {
	return Preview{Gap: bitmap.DefaultGap, Mode: bitmap.Block}
}

// Decoded is a frame rebuilt from transmission units.
type Decoded struct {
	Bits    *bitmap.Binary
	Preview *bitmap.Binary
}

// DecodeUnits rebuilds a width x height frame from units and renders its preview.
// Units beyond the frame size are ignored.
func DecodeUnits(units transport.Units, width, height int, preview Preview) (*Decoded, error) {
	packed, err := transport.FromUnits(units)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(packed, width, height, preview)
}

// DecodeBytes is DecodeUnits for a packed byte buffer.
func DecodeBytes(packed []byte, width, height int, preview Preview) (*Decoded, error) {
	bits, err := bitmap.Unpack(packed, width, height)
	if err != nil {
		return nil, err
	}
	view, err := bitmap.Visualize(bits, preview.Gap, preview.Mode)
	if err != nil {
		return nil, err
	}
	return &Decoded{Bits: bits, Preview: view}, nil
}
