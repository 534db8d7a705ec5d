// Package batch turns a validated request into concurrent file jobs, fans
// them out over a bounded worker pool, and collects exactly one result per
// submitted file in submission order. PDF work runs in parallel; Word
// conversion runs on a single serialized lane because the automation host is
// not reentrant.
package batch
