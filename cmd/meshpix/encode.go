package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/meshpix/internal/config"
	"github.com/nao1215/meshpix/internal/model"
	"github.com/nao1215/meshpix/internal/pipeline"
)

// NewEncodeCmd creates the encode command.
func NewEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode <image>...",
		Short: "Encode images into payloads for a text channel",
		Long: `Encode converts each image into a 1-bit frame and prints its base64 payload.

The image is converted to grayscale, resized to the frame size, thresholded
and packed eight cells per byte. The printed payload is what you send over
the channel; the receiving side decodes it with "meshpix decode".

Next to each image (or in --output-dir) three artifacts are written:
  <name>_1bit.txt          the frame as rows of 0 and 1
  <name>_1bit.png          the frame as a black and white image
  <name>_1bit_packed.bin   the packed bytes

Every encoded frame is saved to the history database so it can be decoded
again later with "meshpix decode --history <id>".

Examples:
  # Encode a photo with the default 32x18 frame
  meshpix encode cat.jpg

  # Use a larger frame and skip the artifacts
  meshpix encode -W 64 -H 32 --text=false --png=false --packed=false cat.jpg

  # Rotate phone photos and use settings from a profile
  meshpix encode --profile phone IMG_0042.jpg

  # Write a Markdown report with an ASCII preview of every frame
  meshpix encode --markdown -r report.md *.png`,
		Args: cobra.ArbitraryArgs,
		RunE: runEncodeCmd,
	}

	addEncodeFlags(cmd)
	addArtifactFlags(cmd, true)
	addReportFlags(cmd)

	return cmd
}

// runEncodeCmd executes the encode command.
func runEncodeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	p := pipeline.DefaultPipeline(cfg, frameStore(db), cfg.Inputs, pipeline.WithLogger(logger))

	logger.Info("starting encode",
		"inputs", len(cfg.Inputs),
		"width", cfg.Width,
		"height", cfg.Height,
		"threshold", cfg.Threshold,
		"steps", p.StepNames(),
	)

	frames := make([]*model.Frame, 0, len(cfg.Inputs))
	for _, input := range cfg.Inputs {
		frame := model.NewFrame(input)
		// Per-image errors are kept in the frame and reported below.
		_ = p.Execute(ctx, frame) //nolint:errcheck // recorded in frame
		if ctx.Err() != nil {
			return ctx.Err()
		}
		frames = append(frames, frame)
	}

	rep := model.NewReport(frames)
	if err := writeEncodeOutput(cmd, cfg, rep); err != nil {
		return err
	}

	return failedError(rep)
}

// writeEncodeOutput prints the payloads, then the report if one was requested.
// A report on stdout replaces the payload lines.
func writeEncodeOutput(cmd *cobra.Command, cfg *config.Config, rep *model.Report) error {
	out := cmd.OutOrStdout()

	if !wantsReport(cfg) || cfg.ReportFile != "" {
		encoded := rep.Encoded()
		for _, f := range encoded {
			if len(rep.Frames) == 1 {
				fmt.Fprintln(out, f.Payload)
				continue
			}
			fmt.Fprintf(out, "%s\t%s\n", filepath.Base(f.Source), f.Payload)
		}
	}

	if wantsReport(cfg) {
		return outputReport(out, cfg, rep)
	}
	return nil
}
