// Package model defines the data structures shared by the pipeline, the
// frame history and the report writers.
//
// This package contains the following main types:
//   - Frame: one image encoded into a packed 1-bit frame, with its
//     intermediate grids and the artifacts written for it
//   - Report: the frames of one run plus a summary
//
// Frames serialize to JSON without their raw grids and source bytes; the
// base64 payload and its digest identify the packed data.
package model
