package report

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Aggregator accumulates JobResults keyed by submission index. Workers record
// results in completion order; consumers always read them back in submission
// order.
type Aggregator struct {
	mu            sync.Mutex
	results       []JobResult
	recorded      []bool
	count         int
	lastOutputDir string
}

// NewAggregator prepares an aggregator for a batch of the given size.
func NewAggregator(total int) *Aggregator {
	return &Aggregator{
		results:  make([]JobResult, total),
		recorded: make([]bool, total),
	}
}

// Record stores the result for its submission index. A second result for the
// same index or an index outside the batch is a programming error and is
// rejected.
func (a *Aggregator) Record(result JobResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if result.Index < 0 || result.Index >= len(a.results) {
		return fmt.Errorf("result index %d outside batch of %d", result.Index, len(a.results))
	}
	if a.recorded[result.Index] {
		return fmt.Errorf("duplicate result for index %d (%s)", result.Index, result.InputPath)
	}
	a.results[result.Index] = result
	a.recorded[result.Index] = true
	a.count++
	if result.Status == StatusSuccess && result.OutputPath != "" {
		a.lastOutputDir = filepath.Dir(result.OutputPath)
	}
	return nil
}

// Completed returns how many results have been recorded so far.
func (a *Aggregator) Completed() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Results returns all recorded results in submission order. Call after the
// batch has drained; unrecorded slots are omitted.
func (a *Aggregator) Results() []JobResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]JobResult, 0, a.count)
	for i, res := range a.results {
		if a.recorded[i] {
			out = append(out, res)
		}
	}
	return out
}

// Summary tallies recorded results.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	summary := Summary{Total: len(a.results), LastOutputDir: a.lastOutputDir}
	for i, res := range a.results {
		if !a.recorded[i] {
			continue
		}
		switch res.Status {
		case StatusSuccess:
			summary.Succeeded++
		case StatusSkipped:
			summary.Skipped++
		case StatusFailed:
			summary.Failed++
		}
	}
	return summary
}
