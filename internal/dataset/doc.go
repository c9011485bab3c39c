// Package dataset persists assembled episodes as a sharded on-disk dataset.
//
// The builder drives a Source (schema + task list + per-path processing)
// across a fixed pool of workers. Workers are independent; one
// trajectory's failure is captured, recorded in the manifest, and never
// aborts the run. A single writer goroutine appends completed episodes to
// JSONL shards, rotating every chunk-size episodes, and finalizes a
// dataset_info.json describing the schema, shard index, and counts.
//
// Episode ordering across workers is deliberately unspecified; the episode
// key (trajectory path) identifies output, not submission order.
package dataset
