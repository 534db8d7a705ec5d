// Package services defines shared utilities consumed by the batch engine and
// its operation executors.
//
// Key responsibilities:
//   - Context helpers that stamp batch IDs, job indices, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (configuration vs transform vs io vs automation) at the executor
//     boundary.
//
// Use these helpers when wiring new executors so error handling and
// observability stay uniform across operation kinds.
package services
