package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/meshpix/internal/config"
	"github.com/nao1215/meshpix/internal/model"
	"github.com/nao1215/meshpix/internal/pipeline"
	"github.com/nao1215/meshpix/internal/report"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Encode every image in a directory into a CSV of payloads",
		Long: `Batch encodes every image file in a directory and writes a CSV that maps
each file name to its payload:

  filename,tx_b64
  cat.png,VVVVVQ...

Files are taken in sorted name order and only from the directory itself,
not its subdirectories. Images are encoded concurrently (--batch), but the
CSV rows always follow the sorted order. Images that cannot be encoded are
reported and left out of the CSV.

Examples:
  # Write tx_b64_mapping.csv for ./test_images
  meshpix batch test_images

  # Use 8 workers, a custom CSV path, and also write the 1-bit PNGs
  meshpix batch -b 8 --csv out/mapping.csv --png -o out test_images`,
		Args: cobra.ExactArgs(1),
		RunE: runBatchCmd,
	}

	addEncodeFlags(cmd)
	addArtifactFlags(cmd, false)
	addReportFlags(cmd)

	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of images encoded concurrently")
	cmd.Flags().String("csv", config.DefaultCSVFile,
		"CSV output file")
	cmd.Flags().StringSlice("ext", config.DefaultExtensions(),
		"Image file extensions to include")

	return cmd
}

// runBatchCmd executes the batch command.
func runBatchCmd(cmd *cobra.Command, args []string) error {
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

	dir := cfg.Inputs[0]
	sources, err := pipeline.ListImages(dir, cfg.Extensions)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no image files found in folder: %s", dir)
	}

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Found %d image files in %s (concurrency: %d)\n", len(sources), dir, cfg.BatchSize)

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(cfg, frameStore(db), sources, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	startTime := time.Now()
	frames := make([]*model.Frame, len(sources))
	var (
		mu   sync.Mutex
		done atomic.Int32
	)
	err = bp.ProcessBatchWithCallback(ctx, sources, func(frame *model.Frame, index int) {
		n := done.Add(1)

		mu.Lock()
		defer mu.Unlock()

		frames[index] = frame
		status := "encoded"
		if frame.Failed() {
			status = "failed: " + frame.ErrorMessage
		}
		fmt.Fprintf(out, "[%d/%d] %s %s\n", n, len(sources), filepath.Base(frame.Source), status)
	})
	if err != nil {
		return err
	}

	rep := model.NewReport(frames)
	if err := writeBatchOutputs(out, cfg, rep); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d rows to %s in %s\n",
		rep.Summary.Encoded, cfg.CSVFile, time.Since(startTime).Round(time.Millisecond))

	return failedError(rep)
}

// writeBatchOutputs writes the CSV mapping and, if requested, the report in
// one pass over rep.
func writeBatchOutputs(stdout io.Writer, cfg *config.Config, rep *model.Report) (err error) {
	f, err := createFile(cfg.CSVFile)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to write %s: %w", cfg.CSVFile, cerr)
		}
	}()

	writers := []report.Writer{report.NewCSVWriter(f)}
	if wantsReport(cfg) {
		w, closeReport, rerr := openReportWriter(stdout, cfg)
		if rerr != nil {
			return rerr
		}
		defer func() {
			if cerr := closeReport(); err == nil && cerr != nil {
				err = fmt.Errorf("failed to write report: %w", cerr)
			}
		}()
		writers = append(writers, w)
	}

	if _, err := report.NewMultiWriter(writers...).Write(rep); err != nil {
		return fmt.Errorf("failed to write batch output: %w", err)
	}
	return nil
}
