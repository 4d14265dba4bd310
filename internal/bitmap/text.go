package bitmap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// WriteText writes the text dump of b: one line per row, cells as "0" or "1"
// separated by commas, each line terminated by "\n". There is no header row.
func WriteText(w io.Writer, b *Binary) error {
	if err := checkBinary(b); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	record := make([]string, b.Width)
	for y := 0; y < b.Height; y++ {
		for x := range record {
			record[x] = strconv.Itoa(int(b.Pix[y*b.Width+x]))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ParseText reads a text dump written by WriteText. All rows must have the
// same number of cells and every cell must be "0" or "1".
func ParseText(r io.Reader) (*Binary, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	var (
		width int
		pix   []uint8
		rows  int
	)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidText, err)
		}
		if rows == 0 {
			width = len(record)
		}
		for x, cell := range record {
			switch cell {
			case "0":
				pix = append(pix, 0)
			case "1":
				pix = append(pix, 1)
			default:
				return nil, fmt.Errorf("%w: row %d column %d is %q", ErrInvalidText, rows+1, x+1, cell)
			}
		}
		rows++
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: empty dump", ErrInvalidText)
	}

	return &Binary{Width: width, Height: rows, Pix: pix}, nil
}
