package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
// Callers use errors.Is() to tell them apart.
var (
	// ErrNoInput is returned when no image file or directory is specified.
	ErrNoInput = errors.New("no input specified: provide an image file or directory")

	// ErrInvalidWidth is returned when the frame width is outside 1..MaxDimension.
	ErrInvalidWidth = errors.New("invalid width: must be between 1 and 4096")

	// ErrInvalidHeight is returned when the frame height is outside 1..MaxDimension.
	ErrInvalidHeight = errors.New("invalid height: must be between 1 and 4096")

	// ErrInvalidThreshold is returned when the threshold is outside 0-255.
	ErrInvalidThreshold = errors.New("invalid threshold: must be between 0 and 255")

	// ErrInvalidGap is returned when the preview gap is outside 0..MaxGap.
	ErrInvalidGap = errors.New("invalid gap: must be between 0 and 64")

	// ErrInvalidMode is returned when the preview mode is neither block nor dotgrid.
	ErrInvalidMode = errors.New("invalid mode: must be block or dotgrid")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no image is ever encoded.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidContrast is returned when the contrast adjustment is outside -100..100.
	ErrInvalidContrast = errors.New("invalid contrast: must be between -100 and 100")

	// ErrInvalidBlur is returned when the blur sigma is negative.
	ErrInvalidBlur = errors.New("invalid blur: must be non-negative")

	// ErrUnknownProfile is returned when --profile names a profile that is not
	// defined in the configuration file.
	ErrUnknownProfile = errors.New("unknown profile")
)
