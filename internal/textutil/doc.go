// Package textutil provides naming helpers for dataset identifiers.
//
// Dataset names appear in shard file names and on-disk metadata, so they are
// normalized to lowercase filesystem-safe tokens. DisplayName converts a
// token back into a human-readable label for terminal output.
package textutil
