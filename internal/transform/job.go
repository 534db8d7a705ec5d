package transform

import (
	"fmt"
	"io"
	"os"

	"docforge/internal/outpath"
	"docforge/internal/passwords"
	"docforge/internal/report"
	"docforge/internal/safewrite"
	"docforge/internal/services"
)

// Job is one file submitted to an executor, identified by its submission
// index for ordered reporting.
type Job struct {
	Index      int
	InputPath  string
	Candidates []passwords.Candidate
}

// Options are the write-side settings shared by every executor.
type Options struct {
	Policy    outpath.Policy
	Overwrite bool
	BackupDir string
}

func failed(job Job, err error) report.JobResult {
	return report.JobResult{
		Index:     job.Index,
		InputPath: job.InputPath,
		Status:    report.StatusFailed,
		Message:   err.Error(),
	}
}

func skipped(job Job, message string) report.JobResult {
	return report.JobResult{
		Index:     job.Index,
		InputPath: job.InputPath,
		Status:    report.StatusSkipped,
		Message:   message,
	}
}

func succeeded(job Job, outputPath, message string) report.JobResult {
	return report.JobResult{
		Index:      job.Index,
		InputPath:  job.InputPath,
		Status:     report.StatusSuccess,
		Message:    message,
		OutputPath: outputPath,
	}
}

// writeOutput routes the produced content to outputPath. Writing over the
// input, or over any existing file when overwriting is allowed, goes through
// the backup-first overwrite protocol; a fresh path gets an atomic write
// after a collision check.
func writeOutput(inputPath, outputPath string, opts Options, produce safewrite.Producer, verify safewrite.Verifier) (string, error) {
	if err := outpath.EnsureDir(outputPath); err != nil {
		return "", err
	}

	inPlace := outputPath == inputPath
	_, statErr := os.Stat(outputPath)
	exists := statErr == nil

	if inPlace || (exists && opts.Overwrite) {
		record, err := safewrite.Overwrite(outputPath, opts.BackupDir, produce, verify)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("original backed up to %s", record.BackupPath), nil
	}
	if exists {
		return "", services.Wrap(services.ErrIO, "transform", "write output",
			"", fmt.Errorf("%w: %s", outpath.ErrOutputExists, outputPath))
	}
	return "", safewrite.WriteAtomic(outputPath, produce, verify)
}

func describeSource(source passwords.Source) string {
	return string(source) + " password"
}

// tryCandidates runs attempt once per candidate in order and returns the
// source of the first one that works.
func tryCandidates(candidates []passwords.Candidate, attempt func(password string) error) (passwords.Source, error) {
	if len(candidates) == 0 {
		return "", services.Wrap(services.ErrConfiguration, "transform", "resolve password",
			"file is password protected but no password was provided", nil)
	}
	var lastErr error
	for _, candidate := range candidates {
		if err := attempt(candidate.Password); err != nil {
			lastErr = err
			continue
		}
		return candidate.Source, nil
	}
	return "", lastErr
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
