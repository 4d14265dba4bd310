package config

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/nao1215/meshpix/internal/bitmap"
	"github.com/nao1215/meshpix/internal/codec"
	"github.com/nao1215/meshpix/internal/preprocess"
)

// Default configuration values.
const (
	// DefaultWidth and DefaultHeight give a 32x18 frame, which packs into
	// 72 bytes (96 characters of base64).
	DefaultWidth  = 32
	DefaultHeight = 18

	// DefaultThreshold is the luminance at or above which a cell is set.
	DefaultThreshold = int(bitmap.DefaultThreshold)

	// DefaultGap is the preview gap; each cell becomes a 5x5 block.
	DefaultGap = int(bitmap.DefaultGap)

	// MaxDimension bounds the frame width and height.
	MaxDimension = 4096

	// MaxGap bounds the preview gap.
	MaxGap = 64

	// DefaultMode is the preview mode.
	DefaultMode = "block"

	// DefaultBatchSize is the number of images encoded concurrently by batch.
	DefaultBatchSize = 4

	// DefaultCSVFile is the file written by batch.
	DefaultCSVFile = "tx_b64_mapping.csv"

	// AppName is the application name used for XDG directory paths.
	AppName = "meshpix"
)

// DefaultExtensions lists the image file extensions picked up by batch.
func DefaultExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tif", ".tiff", ".webp"}
}

// Config holds all configuration options for meshpix.
// It is populated from the configuration file and CLI flags and passed
// through the application rather than kept in global state.
type Config struct {
	// Width and Height are the frame size in cells. They are not stored in
	// the packed frame, so a decoder must use the same values.
	Width  int
	Height int

	// Threshold is the binarization cutoff (0-255).
	// A sample at or above the threshold becomes a set cell.
	Threshold int

	// Gap and Mode control the decoded preview (see bitmap.Visualize).
	Gap  int
	Mode string

	// AutoOrient applies the EXIF Orientation tag before resizing.
	AutoOrient bool

	// Contrast is a contrast adjustment in percent (-100..100); 0 disables it.
	Contrast float64

	// Blur is a Gaussian blur sigma; 0 disables it.
	Blur float64

	// Invert inverts luminance before thresholding.
	Invert bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of images encoded concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .meshpix in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Profile names the profile from the configuration file to apply.
	Profile string

	// Profiles holds the profiles loaded from the configuration file.
	Profiles *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable format.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Inputs are the image files (encode) or the directory (batch) to read.
	Inputs []string

	// OutputDir is where artifacts are written. Empty means next to the input.
	OutputDir string

	// WriteText, WritePNG and WritePacked enable the per-frame artifacts
	// <base>_1bit.txt, <base>_1bit.png and <base>_1bit_packed.bin.
	WriteText   bool
	WritePNG    bool
	WritePacked bool

	// CSVFile is the batch output file.
	CSVFile string

	// Extensions lists the file extensions batch treats as images.
	Extensions []string

	// DBDir is the directory holding the frame history database.
	// Defaults to the XDG data directory (~/.local/share/meshpix on Linux).
	DBDir string

	// SaveToDB indicates whether encoded frames are saved to the history.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Threshold:  DefaultThreshold,
		Gap:        DefaultGap,
		Mode:       DefaultMode,
		BatchSize:  DefaultBatchSize,
		CSVFile:    DefaultCSVFile,
		Extensions: DefaultExtensions(),
		DBDir:      XDGDataDir(),
		SaveToDB:   true,
	}
}

// XDGDataDir returns the XDG data directory for meshpix.
// On Linux: ~/.local/share/meshpix
// On macOS: ~/Library/Application Support/meshpix
// On Windows: %LOCALAPPDATA%\meshpix
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for meshpix.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}
	if err := c.ValidateFrame(); err != nil {
		return err
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// ValidateFrame checks the settings shared by encoding and decoding:
// geometry, threshold, preview and filters.
func (c *Config) ValidateFrame() error {
	if c.Width <= 0 || c.Width > MaxDimension {
		return ErrInvalidWidth
	}
	if c.Height <= 0 || c.Height > MaxDimension {
		return ErrInvalidHeight
	}
	if c.Threshold < 0 || c.Threshold > 255 {
		return ErrInvalidThreshold
	}
	if c.Gap < 0 || c.Gap > MaxGap {
		return ErrInvalidGap
	}
	if _, err := bitmap.ParseMode(c.Mode); err != nil {
		return ErrInvalidMode
	}
	if c.Contrast < -100 || c.Contrast > 100 {
		return ErrInvalidContrast
	}
	if c.Blur < 0 {
		return ErrInvalidBlur
	}
	return nil
}

// CodecOptions returns the encode options described by the configuration.
// It assumes the configuration has been validated.
func (c *Config) CodecOptions() codec.Options {
	return codec.Options{
		Width:     c.Width,
		Height:    c.Height,
		Threshold: uint8(c.Threshold), //nolint:gosec // range checked by ValidateFrame
		Preprocess: []preprocess.Option{
			preprocess.WithAutoOrient(c.AutoOrient),
			preprocess.WithContrast(float32(c.Contrast)),
			preprocess.WithBlur(float32(c.Blur)),
			preprocess.WithInvert(c.Invert),
		},
	}
}

// Preview returns the preview settings described by the configuration.
// An unknown mode falls back to block.
func (c *Config) Preview() codec.Preview {
	mode, err := bitmap.ParseMode(c.Mode)
	if err != nil {
		mode = bitmap.Block
	}
	gap := c.Gap
	if gap < 0 {
		gap = 0
	}
	return codec.Preview{Gap: uint(gap), Mode: mode} //nolint:gosec // non-negative
}
