// Package database provides SQLite-based storage for meshpix.
//
// This package implements the FrameDB, a history of every frame encoded on
// this machine. Since a packed frame carries no dimensions, the history keeps
// width, height and threshold next to the packed bytes so that a frame can be
// decoded later by ID alone.
//
// The database is a single file opened through modernc.org/sqlite, which
// needs no cgo.
package database
