// Package config provides configuration structures and utilities for meshpix.
// It defines the frame geometry, binarization and preview settings, the
// optional preprocessing filters, and where reports, artifacts and the frame
// history are written.
package config
