package transform

import (
	"context"
	"fmt"
	"log/slog"

	"docforge/internal/document"
	"docforge/internal/logging"
	"docforge/internal/report"
)

// ReEncryptor replaces a PDF's password with a new one. A file that opens
// without a password is encrypted directly unless SkipUnlocked is set.
type ReEncryptor struct {
	engine       document.Engine
	opts         Options
	newPassword  string
	skipUnlocked bool
	logger       *slog.Logger
}

func NewReEncryptor(engine document.Engine, opts Options, newPassword string, skipUnlocked bool, logger *slog.Logger) *ReEncryptor {
	return &ReEncryptor{
		engine:       engine,
		opts:         opts,
		newPassword:  newPassword,
		skipUnlocked: skipUnlocked,
		logger:       logging.NewComponentLogger(logger, "reencrypt"),
	}
}

func (r *ReEncryptor) Run(ctx context.Context, job Job) report.JobResult {
	if err := ctx.Err(); err != nil {
		return failed(job, err)
	}

	encrypted, err := r.engine.IsEncrypted(job.InputPath)
	if err != nil {
		return failed(job, err)
	}
	if !encrypted && r.skipUnlocked {
		return skipped(job, "already unlocked, left as-is")
	}

	outputPath, err := r.opts.Policy.Resolve(job.InputPath)
	if err != nil {
		return failed(job, err)
	}

	var source string
	produce := func(tmp string) error {
		if !encrypted {
			return r.engine.Encrypt(job.InputPath, tmp, r.newPassword)
		}
		used, err := tryCandidates(job.Candidates, func(password string) error {
			return r.engine.Decrypt(job.InputPath, tmp, password)
		})
		if err != nil {
			return err
		}
		source = describeSource(used)
		// In-place re-encryption of the already decrypted temp file.
		return r.engine.Encrypt(tmp, tmp, r.newPassword)
	}
	verify := func(tmp string) error {
		return r.engine.Validate(tmp, r.newPassword)
	}

	note, err := writeOutput(job.InputPath, outputPath, r.opts, produce, verify)
	if err != nil {
		return failed(job, err)
	}

	message := "protected with new password"
	if encrypted {
		message = fmt.Sprintf("re-encrypted with new password, unlocked using %s", source)
	}
	if note != "" {
		message += "; " + note
	}
	return succeeded(job, outputPath, message)
}
