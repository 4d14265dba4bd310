package preprocess

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder

	"github.com/disintegration/gift"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/nao1215/meshpix/internal/bitmap"
)

// ErrImageLoad is returned when the input cannot be decoded as an image or
// the requested target size is not positive.
var ErrImageLoad = errors.New("cannot load image")

// options holds the optional preprocessing steps.
type options struct {
	autoOrient bool
	contrast   float32
	blur       float32
	invert     bool
}

// Option configures Preprocess.
type Option func(*options)

// WithAutoOrient rotates/flips the image according to its EXIF Orientation
// tag before anything else is done. Images without EXIF are left as they are.
func WithAutoOrient(enabled bool) Option {
	return func(o *options) {
		o.autoOrient = enabled
	}
}

// WithContrast adjusts contrast by the given percentage in [-100, 100].
// Zero disables the step.
func WithContrast(percentage float32) Option {
	return func(o *options) {
		o.contrast = percentage
	}
}

// WithBlur applies a Gaussian blur with the given sigma. Zero disables the step.
func WithBlur(sigma float32) Option {
	return func(o *options) {
		o.blur = sigma
	}
}

// WithInvert inverts luminance, which makes dark subjects on a light
// background come out as set bits.
func WithInvert(enabled bool) Option {
	return func(o *options) {
		o.invert = enabled
	}
}

// Preprocess decodes data and returns its luminance resampled to exactly
// width x height.
func Preprocess(data []byte, width, height int, opts ...Option) (*bitmap.Gray, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: target size %dx%d must be positive", ErrImageLoad, width, height)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageLoad, err)
	}
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s image has no pixels", ErrImageLoad, format)
	}

	gray := luminance(src)

	filters := make([]gift.Filter, 0, 4)
	if o.autoOrient {
		// A broken EXIF block must not stop an otherwise valid image.
		if orientation, err := Orientation(data); err == nil {
			if f := orientationFilter(orientation); f != nil {
				filters = append(filters, f)
			}
		}
	}
	if o.contrast != 0 {
		filters = append(filters, gift.Contrast(o.contrast))
	}
	if o.blur > 0 {
		filters = append(filters, gift.GaussianBlur(o.blur))
	}
	if o.invert {
		filters = append(filters, gift.Invert())
	}
	if len(filters) > 0 {
		g := gift.New(filters...)
		dst := image.NewGray(g.Bounds(gray.Bounds()))
		g.Draw(dst, gray)
		gray = dst
	}

	resized := resize.Resize(uint(width), uint(height), gray, resize.Lanczos3)
	return toGrid(resized, width, height), nil
}

// luminance converts any image to 8-bit gray using the ITU-R 601 weights on
// the non-premultiplied colour, so transparent pixels keep their RGB value.
func luminance(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch s := src.(type) {
	case *image.Gray:
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], s.Pix[s.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return dst
	case *image.YCbCr:
		// JFIF luma is already Y.
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				dst.Pix[y*dst.Stride+x] = s.Y[s.YOffset(b.Min.X+x, b.Min.Y+y)]
			}
		}
		return dst
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.Pix[y*dst.Stride+x] = luma(c.R, c.G, c.B)
		}
	}
	return dst
}

// luma uses the same fixed point coefficients as image/color:
// 19595 + 38470 + 7471 equals 65536.
func luma(r, g, b uint8) uint8 {
	return uint8((19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16)
}

func toGrid(img image.Image, width, height int) *bitmap.Gray {
	grid := bitmap.NewGray(width, height)
	b := img.Bounds()

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			copy(grid.Pix[y*width:(y+1)*width], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return grid
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			grid.Pix[y*width+x] = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
		}
	}
	return grid
}
