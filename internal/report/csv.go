package report

import (
	"encoding/csv"
	"io"

	"github.com/nao1215/meshpix/internal/model"
)

// CSVHeader is the header row of the payload mapping.
var CSVHeader = []string{"filename", "tx_b64"}

// CSVWriter writes the filename to payload mapping of a batch run.
// Rows follow the report's frame order; failed frames are left out.
// Lines end in CRLF, the line ending of existing mapping files.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the header and one row per encoded frame.
func (w *CSVWriter) Write(report *model.Report) (int, error) {
	cw := &countingWriter{w: w.output}
	out := csv.NewWriter(cw)
	out.UseCRLF = true

	if err := out.Write(CSVHeader); err != nil {
		return cw.n, err
	}
	for _, f := range report.Encoded() {
		if err := out.Write([]string{frameName(f), f.Payload}); err != nil {
			return cw.n, err
		}
	}

	out.Flush()
	return cw.n, out.Error()
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
