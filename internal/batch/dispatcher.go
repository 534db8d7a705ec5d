package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"docforge/internal/document"
	"docforge/internal/logging"
	"docforge/internal/outpath"
	"docforge/internal/passwords"
	"docforge/internal/report"
	"docforge/internal/services"
	"docforge/internal/transform"
	"docforge/internal/wordconv"
)

const maxWorkers = 64

// Request describes one batch to run.
type Request struct {
	Operation report.Operation
	// Inputs in submission order. Indices in results refer to this slice.
	Inputs      []string
	Resolver    passwords.Resolver
	NewPassword string
	Policy      outpath.Policy
	Overwrite   bool
	BackupDir   string
	// SkipUnlocked leaves unprotected files untouched during re-encryption.
	SkipUnlocked bool
	// Workers bounds PDF concurrency. Zero means one per CPU.
	Workers int
	// MergeOutput is the destination file for merge batches.
	MergeOutput string
}

// Progress is delivered after every completed file.
type Progress struct {
	Completed int
	Total     int
	Last      report.JobResult
}

// ProgressFunc receives progress updates. It is called from worker
// goroutines and must be fast; nil disables reporting.
type ProgressFunc func(Progress)

// Outcome is the finished batch: one result per submitted file in submission
// order, plus the tally.
type Outcome struct {
	BatchID string
	Results []report.JobResult
	Summary report.Summary
}

// Dispatcher owns the capabilities batches run against.
type Dispatcher struct {
	engine document.Engine
	host   wordconv.Converter
	logger *slog.Logger
}

func NewDispatcher(engine document.Engine, host wordconv.Converter, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		engine: engine,
		host:   host,
		logger: logging.NewComponentLogger(logger, "batch"),
	}
}

// Run executes the batch and blocks until every submitted file has a result
// or the context is cancelled. Cancellation finishes the file in flight,
// marks the rest skipped, and still returns the partial outcome.
func (d *Dispatcher) Run(ctx context.Context, req Request, progress ProgressFunc) (Outcome, error) {
	if err := d.validate(req); err != nil {
		return Outcome{}, err
	}

	batchID := uuid.NewString()
	ctx = services.WithBatchID(ctx, batchID)
	logger := d.logger.With(logging.String(logging.FieldBatchID, batchID))
	logger.Info("batch started",
		logging.String(logging.FieldOperation, string(req.Operation)),
		logging.Int("inputs", len(req.Inputs)),
	)

	var agg *report.Aggregator
	switch req.Operation {
	case report.OpMerge:
		agg = report.NewAggregator(1)
		merger := transform.NewMerger(d.engine, d.options(req), logger)
		d.record(agg, merger.Run(ctx, req.Inputs, req.MergeOutput), logger, progress)
	case report.OpConvert:
		agg = report.NewAggregator(len(req.Inputs))
		d.runLane(ctx, req, agg, 1, logger, progress)
	default:
		agg = report.NewAggregator(len(req.Inputs))
		d.runLane(ctx, req, agg, d.workerCount(req), logger, progress)
	}

	outcome := Outcome{
		BatchID: batchID,
		Results: agg.Results(),
		Summary: agg.Summary(),
	}
	logger.Info("batch finished",
		logging.Int("succeeded", outcome.Summary.Succeeded),
		logging.Int("skipped", outcome.Summary.Skipped),
		logging.Int("failed", outcome.Summary.Failed),
	)
	return outcome, ctx.Err()
}

func (d *Dispatcher) validate(req Request) error {
	if len(req.Inputs) == 0 {
		return services.Wrap(services.ErrValidation, "batch", "validate request",
			"no input files", nil)
	}
	if _, ok := report.ParseOperation(string(req.Operation)); !ok {
		return services.Wrap(services.ErrValidation, "batch", "validate request",
			fmt.Sprintf("unknown operation %q", req.Operation), nil)
	}
	switch req.Operation {
	case report.OpMerge:
		if req.MergeOutput == "" {
			return services.Wrap(services.ErrValidation, "batch", "validate request",
				"merge output path must be set", nil)
		}
		if len(req.Inputs) < 2 {
			return services.Wrap(services.ErrValidation, "batch", "validate request",
				fmt.Sprintf("merging needs at least two inputs, got %d", len(req.Inputs)), nil)
		}
	case report.OpReEncrypt:
		if req.NewPassword == "" {
			return services.Wrap(services.ErrValidation, "batch", "validate request",
				"new password must be set for re-encryption", nil)
		}
		fallthrough
	default:
		if err := req.Policy.Validate(); err != nil {
			return err
		}
	}
	if req.Workers < 0 || req.Workers > maxWorkers {
		return services.Wrap(services.ErrValidation, "batch", "validate request",
			fmt.Sprintf("workers must be between 0 and %d, got %d", maxWorkers, req.Workers), nil)
	}
	if req.Operation == report.OpConvert {
		if err := d.host.Available(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) options(req Request) transform.Options {
	return transform.Options{
		Policy:    req.Policy,
		Overwrite: req.Overwrite,
		BackupDir: req.BackupDir,
	}
}

func (d *Dispatcher) workerCount(req Request) int {
	if req.Workers > 0 {
		return req.Workers
	}
	return runtime.NumCPU()
}

// runLane fans jobs out over width workers. Width one is the serialized
// conversion lane.
func (d *Dispatcher) runLane(ctx context.Context, req Request, agg *report.Aggregator, width int, logger *slog.Logger, progress ProgressFunc) {
	if width > len(req.Inputs) {
		width = len(req.Inputs)
	}

	run := d.runner(req, logger)
	jobs := make(chan transform.Job)
	var wg sync.WaitGroup
	for w := 0; w < width; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				d.record(agg, d.runJob(ctx, run, job), logger, progress)
			}
		}()
	}

	for i, input := range req.Inputs {
		job := transform.Job{
			Index:      i,
			InputPath:  input,
			Candidates: req.Resolver.Resolve(filepath.Base(input)),
		}
		if ctx.Err() != nil {
			d.record(agg, report.JobResult{
				Index:     job.Index,
				InputPath: job.InputPath,
				Status:    report.StatusSkipped,
				Message:   "batch cancelled before this file started",
			}, logger, progress)
			continue
		}
		jobs <- job
	}
	close(jobs)
	wg.Wait()
}

func (d *Dispatcher) runner(req Request, logger *slog.Logger) func(context.Context, transform.Job) report.JobResult {
	switch req.Operation {
	case report.OpConvert:
		conv := transform.NewWordConverter(d.host, d.engine, d.options(req), logger)
		return conv.Run
	case report.OpReEncrypt:
		re := transform.NewReEncryptor(d.engine, d.options(req), req.NewPassword, req.SkipUnlocked, logger)
		return re.Run
	default:
		dec := transform.NewDecryptor(d.engine, d.options(req), logger)
		return dec.Run
	}
}

// runJob shields the pool from executor panics; a panicking job becomes a
// failed result instead of taking down the batch.
func (d *Dispatcher) runJob(ctx context.Context, run func(context.Context, transform.Job) report.JobResult, job transform.Job) (result report.JobResult) {
	defer func() {
		if r := recover(); r != nil {
			result = report.JobResult{
				Index:     job.Index,
				InputPath: job.InputPath,
				Status:    report.StatusFailed,
				Message:   fmt.Sprintf("internal error: %v", r),
			}
		}
	}()
	// A job can be dequeued in the instant between cancellation and channel
	// close; it never started, so it reports like the never-dispatched ones.
	if ctx.Err() != nil {
		return report.JobResult{
			Index:     job.Index,
			InputPath: job.InputPath,
			Status:    report.StatusSkipped,
			Message:   "batch cancelled before this file started",
		}
	}
	ctx = services.WithJobIndex(ctx, job.Index)
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logging.WithContext(ctx, d.logger).Debug("file started",
		logging.String("input", job.InputPath))
	return run(ctx, job)
}

func (d *Dispatcher) record(agg *report.Aggregator, result report.JobResult, logger *slog.Logger, progress ProgressFunc) {
	if err := agg.Record(result); err != nil {
		logger.Error("dropping result", logging.Error(err))
		return
	}
	if result.Status == report.StatusFailed {
		logger.Warn("file failed",
			logging.Int(logging.FieldJobIndex, result.Index),
			logging.String("input", result.InputPath),
			logging.String("reason", result.Message),
		)
	}
	if progress != nil {
		progress(Progress{
			Completed: agg.Completed(),
			Total:     agg.Summary().Total,
			Last:      result,
		})
	}
}
