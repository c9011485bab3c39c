// Package preflight provides readiness checks for the external binaries
// and filesystem paths trajconv depends on.
//
// The checks run in two contexts:
//   - "trajconv convert" calls RunAll before starting a run so a missing
//     ffmpeg or unwritable output directory fails fast instead of midway
//     through a multi-hour conversion.
//   - The CLI "trajconv status" command renders the same results as a table.
package preflight
