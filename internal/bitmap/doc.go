// Package bitmap implements the 1-bit frame format used by meshpix.
//
// A frame is carried as a grid of bits that is flattened row-major (rows top
// to bottom, each row left to right) and packed eight bits per byte with the
// least-significant bit first: the first bit of every group of eight lands in
// bit 0 of its byte, the eighth in bit 7. Trailing bits needed to complete the
// last byte are always zero. There is no header, so the width and height used
// at encode time must be supplied again at decode time.
//
// The package provides:
//   - Gray: an 8-bit luminance grid produced by the preprocess package
//   - Binary: a grid of 0/1 cells, produced by Binarize or Unpack
//   - Pack / Unpack: the byte-exact bit packing and its left inverse
//   - Visualize: nearest-neighbour block upscaling and a sparse dot-grid view
//   - WriteText / ParseText: the comma separated text dump
//
// Both grid types implement image.Image, so a Binary can be passed straight to
// png.Encode to produce the raster preview (cell 1 maps to 255, cell 0 to 0).
//
// Every operation returns a newly allocated grid and never mutates its input.
package bitmap
