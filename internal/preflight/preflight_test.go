package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"docforge/internal/config"
	"docforge/internal/deps"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckFreeSpace_OK(t *testing.T) {
	result := CheckFreeSpace("space", t.TempDir(), 1)
	if !result.Passed {
		t.Fatalf("expected pass for tiny requirement, got: %s", result.Detail)
	}
}

func TestCheckFreeSpace_Insufficient(t *testing.T) {
	// No filesystem has this much free.
	result := CheckFreeSpace("space", t.TempDir(), 1<<62)
	if result.Passed {
		t.Fatal("expected failure for absurd requirement")
	}
}

func TestRunAllCoversConfiguredDirectories(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.BackupDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Convert.Binary = "clearly-not-present-binary"

	results := RunAll(&cfg)
	byName := make(map[string]Result, len(results))
	for _, result := range results {
		byName[result.Name] = result
	}

	for _, name := range []string{"Output directory", "Backup directory", "Log directory"} {
		if !byName[name].Passed {
			t.Fatalf("%s check failed: %s", name, byName[name].Detail)
		}
	}
	if byName["LibreOffice"].Passed {
		t.Fatal("expected missing conversion host to fail its check")
	}

	// The conversion host is optional, so the run as a whole still passes.
	if !AllPassed(results, deps.Requirements(&cfg)) {
		t.Fatal("optional failure should not block the batch")
	}
}

func TestRunAllFailsOnMissingDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "missing")
	cfg.Paths.BackupDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()

	results := RunAll(&cfg)
	if AllPassed(results, deps.Requirements(&cfg)) {
		t.Fatal("missing output directory should fail preflight")
	}
}
