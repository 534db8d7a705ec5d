package preflight

import (
	"fmt"

	"docforge/internal/config"
	"docforge/internal/deps"
)

// minFreeBytes is the floor for the output filesystem. Transformed documents
// plus backups rarely exceed this for a single batch.
const minFreeBytes = 256 << 20

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Backup directory", cfg.Paths.BackupDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckFreeSpace("Output free space", cfg.Paths.OutputDir, minFreeBytes),
	}

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		result := Result{
			Name:   status.Name,
			Passed: status.Available,
			Detail: status.Detail,
		}
		if status.Available {
			result.Detail = fmt.Sprintf("%s (found)", status.Command)
		} else if status.Optional {
			result.Detail = fmt.Sprintf("%s (optional)", result.Detail)
		}
		results = append(results, result)
	}
	return results
}

// AllPassed reports whether every non-optional check succeeded. Optional
// binaries are surfaced in the results but do not block a batch.
func AllPassed(results []Result, requirements []deps.Requirement) bool {
	optional := make(map[string]bool, len(requirements))
	for _, req := range requirements {
		optional[req.Name] = req.Optional
	}
	for _, result := range results {
		if !result.Passed && !optional[result.Name] {
			return false
		}
	}
	return true
}
