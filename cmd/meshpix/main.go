// Package main provides the entry point for the meshpix CLI.
//
// meshpix turns images into tiny 1-bit frames that fit in a single text
// message on a low-bandwidth mesh radio channel, and turns received frames
// back into images.
//
// Usage:
//
//	meshpix encode <image>
//	meshpix decode <payload>
//	meshpix batch <dir>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
