package bitmap

import "errors"

// Frame format errors.
// Callers use errors.Is to tell a protocol mismatch (not enough bytes) from a
// caller bug (bad dimensions); returned errors wrap these with detail.
var (
	// ErrDimensionMismatch is returned when a width or height is not positive,
	// or when a grid's pixel buffer does not match its declared size.
	ErrDimensionMismatch = errors.New("invalid frame dimensions")

	// ErrInsufficientData is returned by Unpack when fewer bytes are supplied
	// than ceil(width*height/8).
	ErrInsufficientData = errors.New("insufficient packed data for frame dimensions")

	// ErrUnknownMode is returned by ParseMode for an unrecognised visualizer mode.
	ErrUnknownMode = errors.New("unknown visualizer mode")

	// ErrInvalidText is returned by ParseText when a text dump is malformed.
	ErrInvalidText = errors.New("invalid text dump")
)
