package bitmap

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// randomBinary returns a deterministic pseudo-random grid.
func randomBinary(t *testing.T, width, height int, seed uint64) *Binary {
	t.Helper()

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	b := NewBinary(width, height)
	for i := range b.Pix {
		b.Pix[i] = uint8(rng.IntN(2))
	}
	return b
}

func mustRows(t *testing.T, rows ...[]uint8) *Binary {
	t.Helper()

	b, err := NewBinaryFromRows(rows)
	if err != nil {
		t.Fatalf("NewBinaryFromRows: %v", err)
	}
	return b
}

// TestPackUnpackRoundTrip verifies unpack(pack(G), w, h) == G across shapes,
// including shapes whose cell count is not a multiple of eight.
func TestPackUnpackRoundTrip(t *testing.T) {
	t.Parallel()

	shapes := []struct{ w, h int }{
		{1, 1}, {1, 7}, {3, 3}, {8, 1}, {4, 2}, {5, 5}, {32, 18}, {60, 33}, {17, 9},
	}
	for i, shape := range shapes {
		t.Run("", func(t *testing.T) {
			t.Parallel()

			g := randomBinary(t, shape.w, shape.h, uint64(i+1))
			packed, err := Pack(g)
			if err != nil {
				t.Fatalf("Pack(%dx%d): %v", shape.w, shape.h, err)
			}
			if want := (shape.w*shape.h + 7) / 8; len(packed) != want {
				t.Errorf("expected %d packed bytes, got %d", want, len(packed))
			}

			got, err := Unpack(packed, shape.w, shape.h)
			if err != nil {
				t.Fatalf("Unpack(%dx%d): %v", shape.w, shape.h, err)
			}
			if diff := cmp.Diff(g.Rows(), got.Rows()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPackBitOrder(t *testing.T) {
	t.Parallel()

	t.Run("first bit lands in bit 0", func(t *testing.T) {
		t.Parallel()

		g := mustRows(t, []uint8{1, 0, 0, 0, 0, 0, 0, 0})
		packed, err := Pack(g)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]byte{1}, packed); diff != "" {
			t.Errorf("packed mismatch (-want +got):\n%s", diff)
		}

		got, err := Unpack([]byte{1}, 8, 1)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([][]uint8{{1, 0, 0, 0, 0, 0, 0, 0}}, got.Rows()); diff != "" {
			t.Errorf("unpacked mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("checkerboard packs to 165", func(t *testing.T) {
		t.Parallel()

		g := mustRows(t,
			[]uint8{1, 0, 1, 0},
			[]uint8{0, 1, 0, 1},
		)
		packed, err := Pack(g)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]byte{165}, packed); diff != "" {
			t.Errorf("packed mismatch (-want +got):\n%s", diff)
		}

		got, err := Unpack([]byte{165}, 4, 2)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(g) {
			t.Errorf("expected checkerboard back, got:\n%s", got.Render('1', '0'))
		}
	})

	t.Run("padding bits are zero", func(t *testing.T) {
		t.Parallel()

		g := NewBinary(3, 3)
		for i := range g.Pix {
			g.Pix[i] = 1
		}
		packed, err := Pack(g)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]byte{0xff, 0x01}, packed); diff != "" {
			t.Errorf("packed mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestUnpack(t *testing.T) {
	t.Parallel()

	t.Run("extra trailing bytes are ignored", func(t *testing.T) {
		t.Parallel()

		g := randomBinary(t, 7, 5, 42)
		packed, err := Pack(g)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Unpack(append(packed, 0xde, 0xad, 0xbe, 0xef), 7, 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(g) {
			t.Error("expected round trip with trailing bytes to reproduce the grid")
		}
	})

	t.Run("too few bytes is insufficient data", func(t *testing.T) {
		t.Parallel()

		_, err := Unpack([]byte{0x01, 0x02}, 32, 18)
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("expected ErrInsufficientData, got %v", err)
		}
	})

	t.Run("non-positive dimensions are rejected", func(t *testing.T) {
		t.Parallel()

		for _, dims := range [][2]int{{0, 1}, {1, 0}, {-3, 4}, {4, -3}} {
			_, err := Unpack(make([]byte, 16), dims[0], dims[1])
			if !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("Unpack(%d, %d): expected ErrDimensionMismatch, got %v", dims[0], dims[1], err)
			}
		}
	})

	t.Run("dimensions whose cell count overflows are rejected", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			data []byte
			w, h int
		}{
			{name: "product wraps to zero", data: nil, w: 1 << 32, h: 1 << 32},
			{name: "product wraps negative", data: []byte{1}, w: 3037000500, h: 3037000500},
			{name: "packed length overflows", data: nil, w: math.MaxInt, h: 1},
		}
		for _, tt := range tests {
			got, err := Unpack(tt.data, tt.w, tt.h)
			if !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("%s: expected ErrDimensionMismatch, got %v", tt.name, err)
			}
			if got != nil {
				t.Errorf("%s: expected no grid, got %dx%d", tt.name, got.Width, got.Height)
			}
			if n := PackedLen(tt.w, tt.h); n != 0 {
				t.Errorf("%s: expected PackedLen 0, got %d", tt.name, n)
			}
		}
	})

	t.Run("wrong but plausible dimensions still decode", func(t *testing.T) {
		t.Parallel()

		g := randomBinary(t, 4, 4, 7)
		packed, err := Pack(g)
		if err != nil {
			t.Fatal(err)
		}
		got, err := Unpack(packed, 8, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Width != 8 || got.Height != 2 {
			t.Errorf("expected 8x2 grid, got %dx%d", got.Width, got.Height)
		}
	})
}

func TestPackRejectsBadGrids(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		grid *Binary
	}{
		{name: "nil grid", grid: nil},
		{name: "empty grid", grid: NewBinary(0, 0)},
		{name: "short pixel buffer", grid: &Binary{Width: 4, Height: 4, Pix: make([]uint8, 3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Pack(tt.grid); !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("expected ErrDimensionMismatch, got %v", err)
			}
		})
	}
}

func TestPackedLen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		w, h, want int
	}{
		{8, 1, 1}, {4, 2, 1}, {3, 3, 2}, {32, 18, 72}, {60, 33, 248}, {0, 5, 0}, {5, -1, 0},
	}
	for _, tt := range tests {
		if got := PackedLen(tt.w, tt.h); got != tt.want {
			t.Errorf("PackedLen(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestBinarize(t *testing.T) {
	t.Parallel()

	g := NewGray(4, 1)
	copy(g.Pix, []uint8{0, 127, 128, 255})

	t.Run("default threshold is inclusive", func(t *testing.T) {
		t.Parallel()

		got := Binarize(g, DefaultThreshold)
		if diff := cmp.Diff([]uint8{0, 0, 1, 1}, got.Pix); diff != "" {
			t.Errorf("cells mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("threshold zero turns everything on", func(t *testing.T) {
		t.Parallel()

		if got := Binarize(g, 0); got.Ones() != 4 {
			t.Errorf("expected 4 cells on, got %d", got.Ones())
		}
	})

	t.Run("threshold 255 keeps only white", func(t *testing.T) {
		t.Parallel()

		if diff := cmp.Diff([]uint8{0, 0, 0, 1}, Binarize(g, 255).Pix); diff != "" {
			t.Errorf("cells mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("repeated calls are identical and input is untouched", func(t *testing.T) {
		t.Parallel()

		first := Binarize(g, 100)
		second := Binarize(g, 100)
		if !first.Equal(second) {
			t.Error("expected identical output for identical input")
		}
		if diff := cmp.Diff([]uint8{0, 127, 128, 255}, g.Pix); diff != "" {
			t.Errorf("input grid was modified (-want +got):\n%s", diff)
		}
	})
}

func TestVisualize(t *testing.T) {
	t.Parallel()

	src := mustRows(t,
		[]uint8{1, 0},
		[]uint8{0, 1},
		[]uint8{1, 1},
	)

	t.Run("block mode replicates cells", func(t *testing.T) {
		t.Parallel()

		out, err := Visualize(src, 4, Block)
		if err != nil {
			t.Fatal(err)
		}
		if out.Height != 15 || out.Width != 10 {
			t.Fatalf("expected 15 rows x 10 cols, got %d x %d", out.Height, out.Width)
		}
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				if got, want := out.Bit(x, y), src.Bit(x/5, y/5); got != want {
					t.Fatalf("cell (%d,%d) is %d, expected %d", x, y, got, want)
				}
			}
		}
	})

	t.Run("dot-grid mode keeps only sample points", func(t *testing.T) {
		t.Parallel()

		out, err := Visualize(src, 4, DotGrid)
		if err != nil {
			t.Fatal(err)
		}
		if out.Height != 11 || out.Width != 6 {
			t.Fatalf("expected 11 rows x 6 cols, got %d x %d", out.Height, out.Width)
		}
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				want := uint8(0)
				if x%5 == 0 && y%5 == 0 {
					want = src.Bit(x/5, y/5)
				}
				if got := out.Bit(x, y); got != want {
					t.Fatalf("cell (%d,%d) is %d, expected %d", x, y, got, want)
				}
			}
		}
		if out.Ones() != src.Ones() {
			t.Errorf("expected %d cells on, got %d", src.Ones(), out.Ones())
		}
	})

	t.Run("gap zero is identity in both modes", func(t *testing.T) {
		t.Parallel()

		for _, mode := range []Mode{Block, DotGrid} {
			out, err := Visualize(src, 0, mode)
			if err != nil {
				t.Fatal(err)
			}
			if !out.Equal(src) {
				t.Errorf("%s: expected identity with gap 0", mode)
			}
		}
	})

	t.Run("invalid grid is rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := Visualize(NewBinary(0, 3), 4, Block); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("expected ErrDimensionMismatch, got %v", err)
		}
	})

	t.Run("previews too large to allocate are rejected", func(t *testing.T) {
		t.Parallel()

		for _, gap := range []uint{math.MaxUint32, math.MaxInt32 - 1} {
			for _, mode := range []Mode{Block, DotGrid} {
				if _, err := Visualize(src, gap, mode); !errors.Is(err, ErrDimensionMismatch) {
					t.Errorf("gap %d %s: expected ErrDimensionMismatch, got %v", gap, mode, err)
				}
			}
		}
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := Visualize(src, 1, Mode(9)); !errors.Is(err, ErrUnknownMode) {
			t.Errorf("expected ErrUnknownMode, got %v", err)
		}
	})
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "block", want: Block},
		{in: "BLOCK", want: Block},
		{in: "dotgrid", want: DotGrid},
		{in: "dot-grid", want: DotGrid},
		{in: " dots ", want: DotGrid},
		{in: "lanczos", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownMode) {
				t.Errorf("ParseMode(%q): expected ErrUnknownMode, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestTextDump(t *testing.T) {
	t.Parallel()

	t.Run("writes one comma separated line per row", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		g := mustRows(t, []uint8{1, 0, 1}, []uint8{0, 0, 1})
		if err := WriteText(&buf, g); err != nil {
			t.Fatal(err)
		}
		if got, want := buf.String(), "1,0,1\n0,0,1\n"; got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("parses what it writes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		g := randomBinary(t, 32, 18, 3)
		if err := WriteText(&buf, g); err != nil {
			t.Fatal(err)
		}
		got, err := ParseText(&buf)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(g) {
			t.Error("expected parsed dump to equal the original grid")
		}
	})

	t.Run("rejects malformed dumps", func(t *testing.T) {
		t.Parallel()

		for _, in := range []string{"", "1,0\n1\n", "1,2\n", "1,x\n"} {
			if _, err := ParseText(strings.NewReader(in)); !errors.Is(err, ErrInvalidText) {
				t.Errorf("ParseText(%q): expected ErrInvalidText, got %v", in, err)
			}
		}
	})
}

func TestBinaryPreviewImage(t *testing.T) {
	t.Parallel()

	g := mustRows(t, []uint8{1, 0}, []uint8{0, 1})

	var buf bytes.Buffer
	if err := png.Encode(&buf, g); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.ColorModel() != color.GrayModel {
		t.Errorf("expected a single channel gray PNG, got %T", img.ColorModel())
	}

	want := [][]uint8{{255, 0}, {0, 255}}
	for y, row := range want {
		for x, v := range row {
			if got := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y; got != v {
				t.Errorf("pixel (%d,%d) is %d, expected %d", x, y, got, v)
			}
		}
	}
}
