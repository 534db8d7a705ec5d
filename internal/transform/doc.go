// Package transform holds the per-operation executors. Each executor turns
// one submitted file (or, for merging, one ordered input list) into exactly
// one JobResult, never panicking outward and never leaving a partial output
// behind.
package transform
