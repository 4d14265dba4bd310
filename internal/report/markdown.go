package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/meshpix/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// Every encoded frame gets an ASCII preview so a report can be reviewed
// without opening the PNG artifacts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeFrames(md, report)
	w.writePreviews(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title, summary table, chart and alert.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	s := report.Summary

	md.H1("Meshpix Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Frames", strconv.Itoa(s.Total)},
			{"Encoded", strconv.Itoa(s.Encoded)},
			{"Failed", strconv.Itoa(s.Failed)},
			{"Packed bytes", strconv.Itoa(s.PackedBytes)},
			{"Payload chars", strconv.Itoa(s.PayloadChars)},
		},
	})
	md.PlainText("")

	if s.Total > 0 {
		w.writePieChart(md, s)
	}

	switch {
	case s.Failed > 0:
		md.Cautionf("%d of %d frame(s) could not be encoded.", s.Failed, s.Total)
	case s.Total == 0:
		md.Note("No frames were processed.")
	default:
		md.Tip("All frames were encoded.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the frame outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Frame Outcomes"),
		piechart.WithShowData(true),
	)

	if s.Encoded > 0 {
		chart.LabelAndIntValue("Encoded", uint64(s.Encoded))
	}
	if s.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(s.Failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFrames writes one table row per frame in input order.
func (w *MarkdownWriter) writeFrames(md *markdown.Markdown, report *model.Report) {
	md.H2("Frames")
	md.PlainText("")

	if report.Summary.Total == 0 {
		md.PlainText("No frames.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(report.Frames))
	for _, f := range report.Frames {
		if f == nil {
			continue
		}

		size, payload := "-", "-"
		if !f.Failed() {
			size = fmt.Sprintf("%dx%d@%d", f.Width, f.Height, f.Threshold)
			payload = "`" + truncateString(f.Payload, 40) + "`"
		}

		rows = append(rows, []string{
			frameName(f),
			statusText(f),
			size,
			strconv.Itoa(len(f.Packed)),
			payload,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"File", "Status", "Size", "Bytes", "Payload"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, f := range report.Frames {
		if f != nil && f.Failed() {
			md.Details(frameName(f), f.ErrorMessage)
		}
	}
	md.PlainText("")
}

// writePreviews writes an ASCII preview for each encoded frame.
func (w *MarkdownWriter) writePreviews(md *markdown.Markdown, report *model.Report) {
	encoded := report.Encoded()
	if len(encoded) == 0 {
		return
	}

	md.H2("Previews")
	md.PlainText("")

	for _, f := range encoded {
		if f.Bits == nil {
			continue
		}
		md.H3(frameName(f))
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlightText, f.Bits.Render(previewOn, previewOff))
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [meshpix](https://github.com/nao1215/meshpix)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
