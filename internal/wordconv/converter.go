package wordconv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"docforge/internal/config"
	"docforge/internal/logging"
	"docforge/internal/services"
)

// Converter renders one Word document to PDF at a time. The automation host
// behind it is not reentrant; callers must never run two conversions
// concurrently. The batch dispatcher enforces this with a serialized lane.
type Converter interface {
	// Convert renders inputPath into outputDir and returns the path of
	// the produced PDF.
	Convert(ctx context.Context, inputPath, outputDir string) (string, error)
	// Available reports whether the automation host can run at all.
	Available() error
}

// LibreOffice drives a headless soffice process. A file lock guards the host
// against concurrent use from other docforge processes; serialization inside
// this process is the dispatcher's job, not ours.
type LibreOffice struct {
	binary  string
	timeout time.Duration
	lock    *flock.Flock
	logger  *slog.Logger
}

// NewLibreOffice builds the converter from configuration.
func NewLibreOffice(cfg config.Convert, logger *slog.Logger) *LibreOffice {
	return &LibreOffice{
		binary:  cfg.Binary,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		lock:    flock.New(cfg.LockFile),
		logger:  logging.NewComponentLogger(logger, "wordconv"),
	}
}

var _ Converter = (*LibreOffice)(nil)

// Available reports whether the configured binary can be found.
func (l *LibreOffice) Available() error {
	if _, err := exec.LookPath(l.binary); err != nil {
		return services.Wrap(services.ErrAutomation, "wordconv", "locate binary",
			fmt.Sprintf("%q not found; install LibreOffice or set convert.binary", l.binary), err)
	}
	return nil
}

func (l *LibreOffice) Convert(ctx context.Context, inputPath, outputDir string) (string, error) {
	if err := l.Available(); err != nil {
		return "", err
	}

	locked, err := l.lock.TryLockContext(ctx, 250*time.Millisecond)
	if err != nil {
		return "", services.Wrap(services.ErrAutomation, "wordconv", "acquire host lock",
			l.lock.Path(), err)
	}
	if !locked {
		return "", services.Wrap(services.ErrAutomation, "wordconv", "acquire host lock",
			"conversion host is in use by another process", nil)
	}
	defer func() {
		if err := l.lock.Unlock(); err != nil {
			l.logger.Warn("failed to release conversion host lock", logging.Error(err))
		}
	}()

	runCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	cmd := exec.CommandContext(runCtx, l.binary,
		"--headless", "--norestore",
		"--convert-to", "pdf",
		"--outdir", outputDir,
		inputPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", services.Wrap(services.ErrAutomation, "wordconv", "convert",
				fmt.Sprintf("conversion of %s timed out after %s", filepath.Base(inputPath), l.timeout), nil)
		}
		detail := strings.TrimSpace(string(output))
		if detail == "" {
			detail = err.Error()
		}
		return "", services.Wrap(services.ErrAutomation, "wordconv", "convert",
			detail, err)
	}

	produced := producedPath(inputPath, outputDir)
	if _, err := os.Stat(produced); err != nil {
		return "", services.Wrap(services.ErrAutomation, "wordconv", "convert",
			fmt.Sprintf("host reported success but produced no file at %s", produced), err)
	}

	l.logger.Debug("conversion finished",
		logging.String("input", inputPath),
		logging.String("output", produced),
		logging.Duration("duration", time.Since(start)),
	)
	return produced, nil
}

// producedPath mirrors the host's naming: basename with the extension
// replaced by .pdf inside the output directory.
func producedPath(inputPath, outputDir string) string {
	base := filepath.Base(inputPath)
	ext := filepath.Ext(base)
	return filepath.Join(outputDir, strings.TrimSuffix(base, ext)+".pdf")
}
