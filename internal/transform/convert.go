package transform

import (
	"context"
	"log/slog"
	"os"

	"docforge/internal/document"
	"docforge/internal/logging"
	"docforge/internal/report"
	"docforge/internal/services"
	"docforge/internal/wordconv"
)

// WordConverter renders Word documents to PDF through the automation host and
// stages the result into place. The produced PDF is validated with the PDF
// engine before it reaches its final path.
type WordConverter struct {
	host   wordconv.Converter
	engine document.Engine
	opts   Options
	logger *slog.Logger
}

func NewWordConverter(host wordconv.Converter, engine document.Engine, opts Options, logger *slog.Logger) *WordConverter {
	return &WordConverter{
		host:   host,
		engine: engine,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "convert"),
	}
}

// Run must only be called from the serialized conversion lane; the host is
// not reentrant.
func (c *WordConverter) Run(ctx context.Context, job Job) report.JobResult {
	if err := ctx.Err(); err != nil {
		return failed(job, err)
	}

	outputPath, err := c.opts.Policy.Resolve(job.InputPath)
	if err != nil {
		return failed(job, err)
	}

	// The host names its own output, so it renders into a private staging
	// directory and the result moves to outputPath under safewrite rules.
	staging, err := os.MkdirTemp("", "docforge-convert-")
	if err != nil {
		return failed(job, services.Wrap(services.ErrIO, "convert", "create staging directory", "", err))
	}
	defer os.RemoveAll(staging)

	staged, err := c.host.Convert(ctx, job.InputPath, staging)
	if err != nil {
		return failed(job, err)
	}

	produce := func(tmp string) error {
		if err := copyFile(staged, tmp); err != nil {
			return services.Wrap(services.ErrIO, "convert", "stage output", tmp, err)
		}
		return nil
	}
	verify := func(tmp string) error {
		return c.engine.Validate(tmp, "")
	}

	note, err := writeOutput(job.InputPath, outputPath, c.opts, produce, verify)
	if err != nil {
		return failed(job, err)
	}

	c.logger.Debug("converted document",
		logging.String("input", job.InputPath),
		logging.String("output", outputPath))
	message := "converted to PDF"
	if note != "" {
		message += "; " + note
	}
	return succeeded(job, outputPath, message)
}
