package transform

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"docforge/internal/document"
	"docforge/internal/logging"
	"docforge/internal/report"
)

// Merger concatenates PDFs in submission order into a single output. The
// merge is all-or-nothing: every input is validated up front so a broken file
// fails the batch with its name attached, before any output exists.
type Merger struct {
	engine document.Engine
	opts   Options
	logger *slog.Logger
}

func NewMerger(engine document.Engine, opts Options, logger *slog.Logger) *Merger {
	return &Merger{
		engine: engine,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "merge"),
	}
}

// Run produces a single aggregate result covering every input.
func (m *Merger) Run(ctx context.Context, inputs []string, outputPath string) report.JobResult {
	job := Job{Index: 0, InputPath: fmt.Sprintf("%d inputs", len(inputs))}
	if err := ctx.Err(); err != nil {
		return failed(job, err)
	}
	if len(inputs) < 2 {
		return failed(job, fmt.Errorf("merging needs at least two inputs, got %d", len(inputs)))
	}

	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			return failed(job, err)
		}
		if err := m.engine.Validate(input, ""); err != nil {
			return failed(job, fmt.Errorf("input %d of %d (%s): %w",
				i+1, len(inputs), filepath.Base(input), err))
		}
	}

	produce := func(tmp string) error {
		return m.engine.Merge(inputs, tmp)
	}
	verify := func(tmp string) error {
		return m.engine.Validate(tmp, "")
	}

	note, err := writeOutput("", outputPath, m.opts, produce, verify)
	if err != nil {
		return failed(job, err)
	}

	m.logger.Info("merged documents",
		logging.Int("inputs", len(inputs)),
		logging.String("output", outputPath))
	message := fmt.Sprintf("merged %d documents", len(inputs))
	if note != "" {
		message += "; " + note
	}
	return succeeded(job, outputPath, message)
}
