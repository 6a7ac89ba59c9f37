// Package cluster runs per-batch scoring in parallel and merges the
// results.
//
// A query is split by Partition into contiguous batches, each batch is
// scored on a WorkerPool by Execute, and Merge concatenates the per-batch
// vectors by batch ID into one normalized distribution with a
// mean-plus-one-standard-deviation match threshold. Completion order of
// the workers never affects the merged result.
package cluster
