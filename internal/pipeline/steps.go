package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/meshpix/internal/bitmap"
	"github.com/nao1215/meshpix/internal/codec"
	"github.com/nao1215/meshpix/internal/config"
	"github.com/nao1215/meshpix/internal/model"
)

// Step names, as recorded in model.Frame.PerformedSteps.
const (
	StepRead      = "read"
	StepEncode    = "encode"
	StepArtifacts = "artifacts"
	StepHistory   = "history"
)

// Artifact file name suffixes, appended to the input's base name.
const (
	TextSuffix   = "_1bit.txt"
	PNGSuffix    = "_1bit.png"
	PackedSuffix = "_1bit_packed.bin"
)

// errMissingInput is returned by a step whose input was not produced by an
// earlier step.
var errMissingInput = errors.New("missing input from previous step")

// DefaultMaxFileSize limits how much of an input file is read.
// Camera images are a few MB; anything much larger is not a photo.
const DefaultMaxFileSize int64 = 64 << 20

// ReadStep loads the source file into the frame.
type ReadStep struct {
	maxSize int64
}

// NewReadStep creates a ReadStep. maxSize <= 0 uses DefaultMaxFileSize.
func NewReadStep(maxSize int64) *ReadStep {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &ReadStep{maxSize: maxSize}
}

// Name returns the step name.
func (s *ReadStep) Name() string {
	return StepRead
}

// Do reads frame.Source into frame.SourceData.
func (s *ReadStep) Do(_ context.Context, frame *model.Frame) error {
	info, err := os.Stat(frame.Source)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", frame.Source, err)
	}
	if info.IsDir() {
		return fmt.Errorf("failed to read %s: is a directory", frame.Source)
	}
	if info.Size() > s.maxSize {
		return fmt.Errorf("failed to read %s: %d bytes exceeds the %d byte limit", frame.Source, info.Size(), s.maxSize)
	}

	data, err := os.ReadFile(frame.Source)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", frame.Source, err)
	}
	frame.SourceData = data
	return nil
}

// EncodeStep turns the source image into a packed frame with
// codec.EncodeImage, the same operation every other caller of the codec uses.
type EncodeStep struct {
	options codec.Options
	logger  *slog.Logger
}

// NewEncodeStep creates an EncodeStep. A nil logger uses slog.Default().
func NewEncodeStep(opts codec.Options, logger *slog.Logger) *EncodeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &EncodeStep{options: opts, logger: logger}
}

// Name returns the step name.
func (s *EncodeStep) Name() string {
	return StepEncode
}

// Do fills the frame geometry, grids, packed bytes, payload and digest.
func (s *EncodeStep) Do(_ context.Context, frame *model.Frame) error {
	if frame.SourceData == nil {
		return fmt.Errorf("%s: %w", s.Name(), errMissingInput)
	}
	encoded, err := codec.EncodeImage(frame.SourceData, s.options)
	if err != nil {
		return err
	}

	frame.Width = encoded.Bits.Width
	frame.Height = encoded.Bits.Height
	frame.Threshold = int(s.options.Threshold)
	frame.Gray = encoded.Gray
	frame.Bits = encoded.Bits
	frame.SetPacked(encoded.Packed)

	s.logger.Debug("frame packed",
		"source", frame.Source,
		"bytes", len(encoded.Packed),
		"b64", frame.Payload,
	)
	return nil
}

// ArtifactStep writes the text dump, raster preview and packed file of a frame.
type ArtifactStep struct {
	outDir string
	names  map[string]string
	text   bool
	png    bool
	packed bool
}

// ArtifactStepOption configures an ArtifactStep.
type ArtifactStepOption func(*ArtifactStep)

// WithOutputDir writes artifacts into dir instead of next to the source.
func WithOutputDir(dir string) ArtifactStepOption {
	return func(s *ArtifactStep) {
		s.outDir = dir
	}
}

// WithBaseNames overrides the artifact base name of the listed sources,
// as computed by ArtifactBaseNames.
func WithBaseNames(names map[string]string) ArtifactStepOption {
	return func(s *ArtifactStep) {
		s.names = names
	}
}

// WithArtifacts selects which artifacts are written.
func WithArtifacts(text, png, packed bool) ArtifactStepOption {
	return func(s *ArtifactStep) {
		s.text = text
		s.png = png
		s.packed = packed
	}
}

// NewArtifactStep creates an ArtifactStep that writes all three artifacts
// next to the source unless configured otherwise.
func NewArtifactStep(opts ...ArtifactStepOption) *ArtifactStep {
	s := &ArtifactStep{text: true, png: true, packed: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ArtifactStep) Name() string {
	return StepArtifacts
}

// Do writes the enabled artifacts and records their paths.
func (s *ArtifactStep) Do(_ context.Context, frame *model.Frame) error {
	if frame.Bits == nil || frame.Packed == nil {
		return fmt.Errorf("%s: %w", s.Name(), errMissingInput)
	}

	dir := s.outDir
	if dir == "" {
		dir = filepath.Dir(frame.Source)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	name, ok := s.names[frame.Source]
	if !ok {
		name = BaseName(frame.Source)
	}
	base := filepath.Join(dir, name)

	if s.text {
		var buf bytes.Buffer
		if err := bitmap.WriteText(&buf, frame.Bits); err != nil {
			return err
		}
		if err := writeArtifact(frame, base+TextSuffix, buf.Bytes()); err != nil {
			return err
		}
	}
	if s.png {
		var buf bytes.Buffer
		if err := png.Encode(&buf, frame.Bits); err != nil {
			return fmt.Errorf("failed to encode preview: %w", err)
		}
		if err := writeArtifact(frame, base+PNGSuffix, buf.Bytes()); err != nil {
			return err
		}
	}
	if s.packed {
		if err := writeArtifact(frame, base+PackedSuffix, frame.Packed); err != nil {
			return err
		}
	}
	return nil
}

func writeArtifact(frame *model.Frame, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	frame.AddArtifact(path)
	return nil
}

// BaseName returns the file name of path without directory and extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ArtifactBaseNames returns an artifact base name for every source that
// would otherwise share one with another source written to the same
// directory, such as "a.png" and "a.jpg". Those keep their extension in the
// name ("a_png", "a_jpg"). Names are compared case-insensitively. outDir is
// the artifact directory; empty means next to each source.
func ArtifactBaseNames(sources []string, outDir string) map[string]string {
	key := func(source string) string {
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(source)
		}
		return strings.ToLower(filepath.Join(filepath.Clean(dir), BaseName(source)))
	}

	count := make(map[string]int, len(sources))
	for _, source := range sources {
		count[key(source)]++
	}

	names := make(map[string]string)
	for _, source := range sources {
		if count[key(source)] < 2 {
			continue
		}
		name := BaseName(source)
		if ext := strings.TrimPrefix(filepath.Ext(source), "."); ext != "" {
			name += "_" + ext
		}
		names[source] = name
	}
	return names
}

// FrameStore persists encoded frames.
type FrameStore interface {
	SaveFrame(ctx context.Context, frame *model.Frame) error
}

// HistoryStep records the frame in a FrameStore.
type HistoryStep struct {
	store FrameStore
}

// NewHistoryStep creates a HistoryStep.
func NewHistoryStep(store FrameStore) *HistoryStep {
	return &HistoryStep{store: store}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return StepHistory
}

// Do saves the frame.
func (s *HistoryStep) Do(ctx context.Context, frame *model.Frame) error {
	if frame.Packed == nil {
		return fmt.Errorf("%s: %w", s.Name(), errMissingInput)
	}
	if err := s.store.SaveFrame(ctx, frame); err != nil {
		return fmt.Errorf("failed to save frame to history: %w", err)
	}
	return nil
}

// DefaultPipeline creates a pipeline for cfg: read and encode, then
// artifacts if any is enabled, then history if store is non-nil.
// sources lists every input the caller will run through pipelines built for
// this run, so that artifacts of inputs sharing a base name do not overwrite
// each other.
func DefaultPipeline(cfg *config.Config, store FrameStore, sources []string, pipelineOpts ...Option) *Pipeline {
	p := New(pipelineOpts...)

	p.AddSteps(
		NewReadStep(0),
		NewEncodeStep(cfg.CodecOptions(), p.logger),
	)

	if cfg.WriteText || cfg.WritePNG || cfg.WritePacked {
		p.AddStep(NewArtifactStep(
			WithOutputDir(cfg.OutputDir),
			WithBaseNames(ArtifactBaseNames(sources, cfg.OutputDir)),
			WithArtifacts(cfg.WriteText, cfg.WritePNG, cfg.WritePacked),
		))
	}

	if store != nil {
		p.AddStep(NewHistoryStep(store))
	}

	return p
}
