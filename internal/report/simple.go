package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/meshpix/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds the digest and an ASCII preview of each frame.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeFrames(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with the run summary.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          MESHPIX REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	s := report.Summary
	sb.WriteString(fmt.Sprintf("Generated:     %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Frames:        %d\n", s.Total))
	sb.WriteString(fmt.Sprintf("Encoded:       %d\n", s.Encoded))
	sb.WriteString(fmt.Sprintf("Failed:        %d\n", s.Failed))
	sb.WriteString(fmt.Sprintf("Packed bytes:  %d\n", s.PackedBytes))
	sb.WriteString(fmt.Sprintf("Payload chars: %d\n", s.PayloadChars))
	sb.WriteString("\n")
}

// writeFrames writes one block per frame in input order.
func (w *SimpleWriter) writeFrames(sb *strings.Builder, report *model.Report) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FRAMES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if report.Summary.Total == 0 {
		sb.WriteString("  No frames\n\n")
		return
	}

	for _, f := range report.Frames {
		if f == nil {
			continue
		}

		if f.Failed() {
			sb.WriteString(fmt.Sprintf("[!] %s\n", frameName(f)))
			sb.WriteString(fmt.Sprintf("    Error: %s\n\n", f.ErrorMessage))
			continue
		}

		sb.WriteString(fmt.Sprintf("[+] %s (%dx%d, threshold %d, %d bytes)\n",
			frameName(f), f.Width, f.Height, f.Threshold, len(f.Packed)))
		sb.WriteString(fmt.Sprintf("    Payload: %s\n", f.Payload))

		if w.verbose {
			sb.WriteString(fmt.Sprintf("    ID:      %s\n", f.ID))
			sb.WriteString(fmt.Sprintf("    SHA3:    %s\n", f.Digest))
			for _, a := range f.Artifacts {
				sb.WriteString(fmt.Sprintf("    Wrote:   %s\n", a))
			}
			if f.Bits != nil {
				sb.WriteString("\n")
				for _, line := range strings.Split(strings.TrimSuffix(f.Bits.Render(previewOn, previewOff), "\n"), "\n") {
					sb.WriteString("    ")
					sb.WriteString(line)
					sb.WriteString("\n")
				}
			}
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
