package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/meshpix/internal/config"
	"github.com/nao1215/meshpix/internal/database"
	"github.com/nao1215/meshpix/internal/model"
	"github.com/nao1215/meshpix/internal/pipeline"
	"github.com/nao1215/meshpix/internal/report"
)

// wantsReport reports whether the user asked for a report.
func wantsReport(cfg *config.Config) bool {
	return cfg.JSONReport || cfg.MarkdownReport || cfg.ReportFile != ""
}

// outputReport writes the report in the requested format to the report file,
// or to stdout when no file is given.
func outputReport(stdout io.Writer, cfg *config.Config, rep *model.Report) error {
	w, closeOutput, err := openReportWriter(stdout, cfg)
	if err != nil {
		return err
	}
	if _, err := w.Write(rep); err != nil {
		_ = closeOutput()
		return err
	}
	return closeOutput()
}

// openReportWriter returns the writer for the requested report format and a
// function that closes the report file, if one was opened.
func openReportWriter(stdout io.Writer, cfg *config.Config) (report.Writer, func() error, error) {
	output := stdout
	closeOutput := func() error { return nil }
	if cfg.ReportFile != "" {
		f, err := createFile(cfg.ReportFile)
		if err != nil {
			return nil, nil, err
		}
		output = f
		closeOutput = f.Close
	}

	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint()), closeOutput, nil
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output), closeOutput, nil
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose)), closeOutput, nil
	}
}

// createFile creates or truncates path with owner-only permissions,
// creating parent directories if needed.
func createFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // user-provided output path
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// openHistory opens the frame history if saving is enabled.
// A nil database means history is off.
func openHistory(cfg *config.Config, logger *slog.Logger) (*database.FrameDB, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", db.Path())
	return db, nil
}

// frameStore returns db as a pipeline store. A nil database must become a
// nil interface, not an interface holding a nil pointer.
func frameStore(db *database.FrameDB) pipeline.FrameStore {
	if db == nil {
		return nil
	}
	return db
}

// failedError summarises failed frames as a command error.
func failedError(rep *model.Report) error {
	if !rep.HasFailures() {
		return nil
	}
	for _, f := range rep.Frames {
		if f != nil && f.Failed() {
			return fmt.Errorf("%d of %d image(s) failed; first error: %s: %s",
				rep.Summary.Failed, rep.Summary.Total, f.Source, f.ErrorMessage)
		}
	}
	return nil
}

// signalContext returns a context cancelled on interrupt or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
