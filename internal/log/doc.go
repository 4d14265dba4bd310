// Package log provides logging for meshpix on top of the standard slog package.
//
// Packed frames are not meant to be read in logs: at debug level a batch run
// would otherwise dump every frame, and a frame is as identifying as the
// picture it came from. The PayloadHandler replaces payload values with a
// short summary that still lets two log lines be matched up:
//
//	<redacted 96 bytes sha3:1f2e3d4c>
//
// A value is summarised when its key names a payload (payload, packed, units,
// bits, b64, ...) or when it is a string that looks like a long base64 blob.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("frame encoded", "source", path, "b64", armored)
//	slog.SetDefault(logger)
package log
