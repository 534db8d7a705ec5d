// Package report defines the terminal outcome model for batch runs: one
// immutable JobResult per submitted file, aggregated in submission order
// regardless of completion order.
package report
