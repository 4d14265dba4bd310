package model

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/nao1215/meshpix/internal/bitmap"
	"github.com/nao1215/meshpix/internal/transport"
)

// Frame is one image encoded into a packed 1-bit frame.
// It is filled in step by step by the pipeline.
type Frame struct {
	// ID identifies the frame in the history database.
	ID string `json:"id"`

	// Source is the path of the input image.
	Source string `json:"source"`

	// SourceData holds the raw input file.
	SourceData []byte `json:"-"`

	// Width and Height are the frame size in cells.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Threshold is the binarization cutoff used.
	Threshold int `json:"threshold"`

	// Gray is the resized luminance grid.
	Gray *bitmap.Gray `json:"-"`

	// Bits is the binarized grid.
	Bits *bitmap.Binary `json:"-"`

	// Packed is the packed frame, ceil(Width*Height/8) bytes.
	Packed []byte `json:"-"`

	// Payload is the base64 armor of Packed, the text sent over a channel.
	Payload string `json:"payload,omitempty"`

	// Digest is the hex SHA3-256 of Packed.
	Digest string `json:"digest,omitempty"`

	// Artifacts lists the files written for this frame.
	Artifacts []string `json:"artifacts,omitempty"`

	// PerformedSteps lists the pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the error that stopped the frame, if any.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional

	// CreatedAt is when the frame was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewFrame creates a frame for the image at source.
func NewFrame(source string) *Frame {
	return &Frame{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now(),
	}
}

// SetPacked stores the packed frame together with its payload and digest.
func (f *Frame) SetPacked(packed []byte) {
	f.Packed = packed
	f.Payload = Armor(packed)
	f.Digest = Digest(packed)
}

// Units returns the packed frame as transmission units.
func (f *Frame) Units() transport.Units {
	return transport.ToUnits(f.Packed)
}

// SetError records err as the reason the frame failed.
func (f *Frame) SetError(err error) {
	f.Error = err
	if err != nil {
		f.ErrorMessage = err.Error()
	}
}

// Failed reports whether the frame failed.
func (f *Frame) Failed() bool {
	return f.Error != nil || f.ErrorMessage != ""
}

// AddArtifact records a written file.
func (f *Frame) AddArtifact(path string) {
	f.Artifacts = append(f.Artifacts, path)
}

// Armor returns the base64 payload of a packed frame.
func Armor(packed []byte) string {
	// Units built from bytes are always in range.
	s, _ := transport.Armor(transport.ToUnits(packed)) //nolint:errcheck // cannot fail
	return s
}

// Digest returns the hex SHA3-256 of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
