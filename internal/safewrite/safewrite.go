package safewrite

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"docforge/internal/services"
)

// BackupRecord describes the backup taken before an in-place overwrite.
// Backups are never deleted by the engine; cleanup is a user action.
type BackupRecord struct {
	OriginalPath string
	BackupPath   string
	CreatedAt    time.Time
}

// Producer writes the replacement content to the given temporary path.
type Producer func(tmpPath string) error

// Verifier checks that the produced temporary file is complete and valid for
// the target format before the original is touched.
type Verifier func(tmpPath string) error

// Overwrite replaces target in place, guaranteeing the original stays
// recoverable at every step:
//
//  1. the new content is produced into a temporary sibling and synced,
//  2. the temporary file is verified,
//  3. the original is copied (verified, synced) to a collision-free name
//     under backupDir,
//  4. the temporary file atomically replaces the target.
//
// Any failure before step 4 leaves the original bytes untouched. When
// backupDir is empty the backup lands next to the target.
func Overwrite(target, backupDir string, produce Producer, verify Verifier) (BackupRecord, error) {
	tmp, err := tempSibling(target)
	if err != nil {
		return BackupRecord{}, err
	}
	defer os.Remove(tmp)

	if err := produce(tmp); err != nil {
		return BackupRecord{}, err
	}
	if err := syncFile(tmp); err != nil {
		return BackupRecord{}, services.Wrap(services.ErrIO, "safewrite", "sync temp file", tmp, err)
	}
	if verify != nil {
		if err := verify(tmp); err != nil {
			return BackupRecord{}, err
		}
	}

	record, err := backupOriginal(target, backupDir)
	if err != nil {
		return BackupRecord{}, err
	}

	if err := os.Rename(tmp, target); err != nil {
		return BackupRecord{}, services.Wrap(services.ErrIO, "safewrite", "replace target", target, err)
	}
	return record, nil
}

// WriteAtomic writes a brand-new output file via a temporary sibling so a
// failed or cancelled write never leaves a partial file at target. No backup
// is taken; use Overwrite for destructive writes.
func WriteAtomic(target string, produce Producer, verify Verifier) error {
	tmp, err := tempSibling(target)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := produce(tmp); err != nil {
		return err
	}
	if err := syncFile(tmp); err != nil {
		return services.Wrap(services.ErrIO, "safewrite", "sync temp file", tmp, err)
	}
	if verify != nil {
		if err := verify(tmp); err != nil {
			return err
		}
	}
	if err := os.Rename(tmp, target); err != nil {
		return services.Wrap(services.ErrIO, "safewrite", "move into place", target, err)
	}
	return nil
}

func backupOriginal(target, backupDir string) (BackupRecord, error) {
	dir := backupDir
	if dir == "" {
		dir = filepath.Dir(target)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return BackupRecord{}, services.Wrap(services.ErrIO, "safewrite", "create backup directory", dir, err)
	}

	base := filepath.Base(target)
	// O_EXCL inside copyFileVerified makes the claim atomic, so concurrent
	// overwrites of similarly named files cannot share a backup path.
	for attempt := 0; ; attempt++ {
		name := base + ".bak"
		if attempt > 0 {
			name = fmt.Sprintf("%s.bak.%d", base, attempt)
		}
		backupPath := filepath.Join(dir, name)

		err := copyFileVerified(target, backupPath)
		if err == nil {
			return BackupRecord{
				OriginalPath: target,
				BackupPath:   backupPath,
				CreatedAt:    time.Now().UTC(),
			}, nil
		}
		if os.IsExist(err) {
			continue
		}
		return BackupRecord{}, services.Wrap(services.ErrIO, "safewrite", "write backup", backupPath, err)
	}
}

// tempSibling claims a fresh temp file next to target. The name must be
// unique per call: concurrent jobs may resolve to the same output path, and
// sharing a temp file would let one job's content leak into another's
// verify/rename window.
func tempSibling(target string) (string, error) {
	dir := filepath.Dir(target)
	base := filepath.Base(target)
	f, err := os.CreateTemp(dir, "."+base+".docforge-*.tmp")
	if err != nil {
		return "", services.Wrap(services.ErrIO, "safewrite", "create temp file", dir, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", services.Wrap(services.ErrIO, "safewrite", "create temp file", f.Name(), err)
	}
	return f.Name(), nil
}
