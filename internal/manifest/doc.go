// Package manifest persists conversion run history in SQLite.
//
// Each run records its id, split totals, and outcome counts; each episode
// attempt records its key, split, status, step count, shard assignment, and
// failure message when assembly failed. The manifest lives next to the
// shards in the output directory so a dataset ships with its own
// provenance, and "trajconv episodes" reads it back for inspection.
//
// The database is an append-only journal of attempts rather than mutable
// queue state. Schema changes bump schemaVersion; readers refuse databases
// written with a different version.
package manifest
