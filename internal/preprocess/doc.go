// Package preprocess turns an encoded raster image into the fixed-size
// luminance grid that the rest of meshpix works on.
//
// The default path is: decode the container (PNG, JPEG, GIF, BMP, TIFF or
// WebP), convert to single-channel luminance with the ITU-R 601 weights
// (0.299, 0.587, 0.114), then resample to exactly the target size with a
// Lanczos3 filter. The aspect ratio is not preserved when it differs from the
// target; the image is stretched.
//
// Optional steps, all off by default, run on the luminance image before
// resampling: EXIF auto-orientation, contrast adjustment, Gaussian blur and
// inversion. With the same input bytes and options the output grid is always
// identical.
package preprocess
