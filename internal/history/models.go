package history

import (
	"time"

	"docforge/internal/report"
)

// BatchRecord is one persisted batch run.
type BatchRecord struct {
	BatchID    string
	Operation  report.Operation
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    report.Summary
	// Results carries the per-file outcomes in submission order. ListRecent
	// leaves it empty; BatchResults loads it on demand.
	Results []report.JobResult
}

// Duration reports how long the batch ran.
func (r BatchRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
