// Package pipeline provides a framework for turning image files into packed
// frames step by step.
//
// Each input goes through the same stages: read the file, preprocess it to
// a luminance grid, binarize, pack, write artifacts and record the frame in
// the history. Each stage is a Step that receives the frame built so far and
// fills in its part.
//
// The pipeline supports both single images and batch processing of a
// directory with concurrency control using errgroup.
package pipeline
