package transform

import (
	"context"
	"fmt"
	"log/slog"

	"docforge/internal/document"
	"docforge/internal/logging"
	"docforge/internal/report"
)

// Decryptor removes password protection from PDFs. Files that open without a
// password are reported as skipped, not failed.
type Decryptor struct {
	engine document.Engine
	opts   Options
	logger *slog.Logger
}

func NewDecryptor(engine document.Engine, opts Options, logger *slog.Logger) *Decryptor {
	return &Decryptor{
		engine: engine,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "decrypt"),
	}
}

func (d *Decryptor) Run(ctx context.Context, job Job) report.JobResult {
	if err := ctx.Err(); err != nil {
		return failed(job, err)
	}

	encrypted, err := d.engine.IsEncrypted(job.InputPath)
	if err != nil {
		return failed(job, err)
	}
	if !encrypted {
		d.logger.Debug("file is not password protected",
			logging.String("input", job.InputPath))
		return skipped(job, "already unlocked, nothing to decrypt")
	}

	outputPath, err := d.opts.Policy.Resolve(job.InputPath)
	if err != nil {
		return failed(job, err)
	}

	var source string
	produce := func(tmp string) error {
		used, err := tryCandidates(job.Candidates, func(password string) error {
			return d.engine.Decrypt(job.InputPath, tmp, password)
		})
		if err != nil {
			return err
		}
		source = describeSource(used)
		return nil
	}
	verify := func(tmp string) error {
		return d.engine.Validate(tmp, "")
	}

	note, err := writeOutput(job.InputPath, outputPath, d.opts, produce, verify)
	if err != nil {
		return failed(job, err)
	}

	message := fmt.Sprintf("decrypted using %s", source)
	if note != "" {
		message += "; " + note
	}
	return succeeded(job, outputPath, message)
}
