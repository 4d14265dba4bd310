// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown with a preview of every frame
//   - CSVWriter: the filename,tx_b64 mapping produced by a batch run
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
