// Package probe provides a typed wrapper around ffprobe JSON output.
//
// The frame decoder asks it for the geometry and frame count of a
// trajectory video before slicing the raw decode stream.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties (codec, geometry, frame count)
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
package probe
