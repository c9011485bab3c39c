// Package convert connects discovery, frame decoding, and episode assembly
// into a dataset source the builder can drive.
//
// A Converter runs discovery once at construction so split totals are known
// before any worker starts, then processes trajectories independently under
// the configured per-trajectory decode timeout.
package convert
