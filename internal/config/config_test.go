package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docforge/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantOutput := filepath.Join(tempHome, "Documents", "docforge", "output")
	if cfg.Paths.OutputDir != wantOutput {
		t.Fatalf("unexpected output dir: got %q want %q", cfg.Paths.OutputDir, wantOutput)
	}
	if !strings.HasPrefix(cfg.Paths.BackupDir, tempHome) {
		t.Fatalf("backup dir not expanded: %q", cfg.Paths.BackupDir)
	}
	if cfg.Engine.Workers != 0 {
		t.Fatalf("unexpected default workers: %d", cfg.Engine.Workers)
	}
	if !cfg.Engine.SkipUnlocked {
		t.Fatal("expected skip_unlocked enabled by default")
	}
	if cfg.Engine.Overwrite {
		t.Fatal("expected overwrite disabled by default")
	}
	if cfg.Convert.Binary != "soffice" {
		t.Fatalf("unexpected convert binary: %q", cfg.Convert.Binary)
	}
	if cfg.Convert.TimeoutSeconds != 300 {
		t.Fatalf("unexpected convert timeout: %d", cfg.Convert.TimeoutSeconds)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q %q", cfg.Logging.Format, cfg.Logging.Level)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.BackupDir, cfg.Paths.LogDir} {
		if _, err := os.Stat(dir); err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadExplicitFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[engine]
workers = 8
overwrite = true

[convert]
binary = "libreoffice"
timeout_seconds = 60

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Engine.Workers != 8 {
		t.Fatalf("unexpected workers: %d", cfg.Engine.Workers)
	}
	if !cfg.Engine.Overwrite {
		t.Fatal("expected overwrite enabled")
	}
	if cfg.Convert.Binary != "libreoffice" {
		t.Fatalf("unexpected convert binary: %q", cfg.Convert.Binary)
	}
	if cfg.Convert.TimeoutSeconds != 60 {
		t.Fatalf("unexpected convert timeout: %d", cfg.Convert.TimeoutSeconds)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging format: %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"negative workers", "[engine]\nworkers = -1\n"},
		{"bad log format", "[logging]\nformat = \"xml\"\n"},
		{"bad log level", "[logging]\nlevel = \"verbose\"\n"},
		{"zero convert timeout", "[convert]\ntimeout_seconds = -5\nbinary = \"soffice\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleWritesParsableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config did not load: exists=%v err=%v", exists, err)
	}
}
