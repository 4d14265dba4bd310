package bitmap

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
)

// Gray is a grid of 8-bit luminance samples, row-major with row 0 at the top.
type Gray struct {
	Width  int
	Height int

	// Pix holds Width*Height samples; the sample at (x, y) is Pix[y*Width+x].
	Pix []uint8
}

// NewGray returns an all-black Gray grid. Negative sizes are treated as zero.
func NewGray(width, height int) *Gray {
	width, height = max(width, 0), max(height, 0)
	return &Gray{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// Sample returns the luminance at (x, y), or 0 outside the grid.
func (g *Gray) Sample(x, y int) uint8 {
	if !g.in(x, y) {
		return 0
	}
	return g.Pix[y*g.Width+x]
}

// SetSample sets the luminance at (x, y). Points outside the grid are ignored.
func (g *Gray) SetSample(x, y int, v uint8) {
	if !g.in(x, y) {
		return
	}
	g.Pix[y*g.Width+x] = v
}

func (g *Gray) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Width && y < g.Height
}

func (g *Gray) ColorModel() color.Model {
	return color.GrayModel
}

func (g *Gray) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

func (g *Gray) At(x, y int) color.Color {
	if !g.in(x, y) {
		return color.Transparent
	}
	return color.Gray{Y: g.Pix[y*g.Width+x]}
}

// Binary is a grid of cells that are exactly 0 or 1, indexed like Gray.
type Binary struct {
	Width  int
	Height int

	// Pix holds Width*Height cells; the cell at (x, y) is Pix[y*Width+x].
	Pix []uint8
}

// NewBinary returns an all-zero Binary grid. Negative sizes are treated as zero.
func NewBinary(width, height int) *Binary {
	width, height = max(width, 0), max(height, 0)
	return &Binary{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// NewBinaryFromRows builds a grid from rows of cells; every non-zero cell is
// stored as 1. All rows must have the same length.
func NewBinaryFromRows(rows [][]uint8) (*Binary, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrDimensionMismatch)
	}
	b := NewBinary(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != b.Width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrDimensionMismatch, y, len(row), b.Width)
		}
		for x, v := range row {
			if v != 0 {
				b.Pix[y*b.Width+x] = 1
			}
		}
	}
	return b, nil
}

// Bit returns the cell at (x, y), or 0 outside the grid.
func (b *Binary) Bit(x, y int) uint8 {
	if !b.in(x, y) {
		return 0
	}
	return b.Pix[y*b.Width+x]
}

// SetBit sets the cell at (x, y) to 1 if v is non-zero and 0 otherwise.
// Points outside the grid are ignored.
func (b *Binary) SetBit(x, y int, v uint8) {
	if !b.in(x, y) {
		return
	}
	if v != 0 {
		v = 1
	}
	b.Pix[y*b.Width+x] = v
}

// Rows returns a copy of the grid as a slice of rows.
func (b *Binary) Rows() [][]uint8 {
	rows := make([][]uint8, b.Height)
	for y := range rows {
		rows[y] = append([]uint8(nil), b.Pix[y*b.Width:(y+1)*b.Width]...)
	}
	return rows
}

// Equal reports whether both grids have the same shape and cells.
func (b *Binary) Equal(o *Binary) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Width != o.Width || b.Height != o.Height || len(b.Pix) != len(o.Pix) {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Ones returns the number of cells set to 1.
func (b *Binary) Ones() int {
	var n int
	for _, v := range b.Pix {
		n += int(v & 1)
	}
	return n
}

// Render draws the grid as text, one line per row, using on for 1 and off for 0.
func (b *Binary) Render(on, off rune) string {
	var sb strings.Builder
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Pix[y*b.Width+x] != 0 {
				sb.WriteRune(on)
			} else {
				sb.WriteRune(off)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (b *Binary) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

func (b *Binary) ColorModel() color.Model {
	return color.GrayModel
}

func (b *Binary) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// At maps cell 1 to white (255) and cell 0 to black, which is the raster
// preview encoding.
func (b *Binary) At(x, y int) color.Color {
	if !b.in(x, y) {
		return color.Transparent
	}
	if b.Pix[y*b.Width+x] != 0 {
		return color.Gray{Y: 0xff}
	}
	return color.Gray{}
}

// maxCells bounds width*height so that the cell count and the packed length
// (cells+7)/8 are both computed without overflow.
const maxCells = math.MaxInt - 7

// checkDimensions validates a declared frame size.
func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d (width and height must be positive)", ErrDimensionMismatch, width, height)
	}
	if width > maxCells/height {
		return fmt.Errorf("%w: %dx%d (too many cells)", ErrDimensionMismatch, width, height)
	}
	return nil
}

// checkBinary validates a grid before it is packed or visualized.
func checkBinary(b *Binary) error {
	if b == nil {
		return fmt.Errorf("%w: nil grid", ErrDimensionMismatch)
	}
	if err := checkDimensions(b.Width, b.Height); err != nil {
		return err
	}
	if len(b.Pix) != b.Width*b.Height {
		return fmt.Errorf("%w: %dx%d grid holds %d cells", ErrDimensionMismatch, b.Width, b.Height, len(b.Pix))
	}
	return nil
}

// Interface checks.
var (
	_ image.Image = (*Gray)(nil)
	_ image.Image = (*Binary)(nil)
)
