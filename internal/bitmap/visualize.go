package bitmap

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects how Visualize enlarges a grid.
type Mode int

const (
	// Block replicates each cell into a (gap+1) x (gap+1) block.
	Block Mode = iota

	// DotGrid places each cell at (r*(gap+1), c*(gap+1)) and leaves the gaps
	// between cells at 0.
	DotGrid
)

// DefaultGap is the visualizer gap used when none is configured.
const DefaultGap uint = 4

// MaxPreviewCells is the largest preview Visualize will allocate.
const MaxPreviewCells = 1 << 28

func (m Mode) String() string {
	switch m {
	case Block:
		return "block"
	case DotGrid:
		return "dotgrid"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name ("block", "dotgrid" or "dot-grid",
// case-insensitive) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block", "blocks":
		return Block, nil
	case "dotgrid", "dot-grid", "dots":
		return DotGrid, nil
	default:
		return Block, fmt.Errorf("%w: %q (want block or dotgrid)", ErrUnknownMode, s)
	}
}

// Visualize returns an enlarged copy of b for inspection. With scale = gap+1:
//
//   - Block: the result is (Width*scale) x (Height*scale) and every cell
//     becomes a uniform scale x scale block (nearest-neighbour upscaling).
//   - DotGrid: the result is (Width+(Width-1)*gap) x (Height+(Height-1)*gap),
//     all zero except the cell at (c*scale, r*scale) for each source cell.
//
// A result larger than MaxPreviewCells fails with ErrDimensionMismatch.
func Visualize(b *Binary, gap uint, mode Mode) (*Binary, error) {
	if err := checkBinary(b); err != nil {
		return nil, err
	}

	if mode != Block && mode != DotGrid {
		return nil, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
	}
	if gap >= math.MaxInt32 {
		return nil, fmt.Errorf("%w: gap %d is too large", ErrDimensionMismatch, gap)
	}

	g := int(gap)
	scale := g + 1
	width, height := b.Width*scale, b.Height*scale
	if mode == DotGrid {
		width, height = b.Width+(b.Width-1)*g, b.Height+(b.Height-1)*g
	}
	if b.Width > math.MaxInt/scale || b.Height > math.MaxInt/scale ||
		checkDimensions(width, height) != nil || width > MaxPreviewCells/height {
		return nil, fmt.Errorf("%w: %dx%d with gap %d is too large to preview", ErrDimensionMismatch, b.Width, b.Height, gap)
	}

	if mode == DotGrid {
		return visualizeDots(b, g, scale), nil
	}
	return visualizeBlock(b, scale), nil
}

func visualizeBlock(b *Binary, scale int) *Binary {
	out := NewBinary(b.Width*scale, b.Height*scale)
	for y := 0; y < out.Height; y++ {
		src := b.Pix[(y/scale)*b.Width : (y/scale+1)*b.Width]
		row := out.Pix[y*out.Width : (y+1)*out.Width]
		for x := range row {
			row[x] = src[x/scale]
		}
	}
	return out
}

func visualizeDots(b *Binary, gap, scale int) *Binary {
	out := NewBinary(b.Width+(b.Width-1)*gap, b.Height+(b.Height-1)*gap)
	for r := 0; r < b.Height; r++ {
		for c := 0; c < b.Width; c++ {
			out.Pix[(r*scale)*out.Width+c*scale] = b.Pix[r*b.Width+c]
		}
	}
	return out
}
