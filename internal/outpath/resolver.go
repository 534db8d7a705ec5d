package outpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docforge/internal/services"
)

// Mode selects how output paths relate to input paths.
type Mode string

const (
	// Flatten places every output directly in the output root, discarding
	// input nesting.
	Flatten Mode = "flatten"
	// Mirror replicates the input's directory structure relative to a
	// common root underneath the output root.
	Mirror Mode = "mirror"
)

// ErrOutputExists reports a collision with an existing file at the computed
// output path. The caller decides whether an overwrite is acceptable; the
// resolver never silently renames.
var ErrOutputExists = errors.New("output path already exists")

// Policy describes where transformed documents are written.
type Policy struct {
	Mode       Mode
	OutputRoot string
	// CommonRoot is the ancestor against which relative structure is
	// computed. Required in Mirror mode.
	CommonRoot string
	// TargetExt rewrites the output extension (with leading dot).
	// Empty keeps the input extension.
	TargetExt string
}

// Validate rejects unusable policies before any batch work starts.
func (p Policy) Validate() error {
	switch p.Mode {
	case Flatten, Mirror:
	default:
		return services.Wrap(services.ErrConfiguration, "outpath", "validate policy",
			fmt.Sprintf("unknown output mode %q", p.Mode), nil)
	}
	if strings.TrimSpace(p.OutputRoot) == "" {
		return services.Wrap(services.ErrConfiguration, "outpath", "validate policy",
			"output root must be set", nil)
	}
	if p.Mode == Mirror && strings.TrimSpace(p.CommonRoot) == "" {
		return services.Wrap(services.ErrConfiguration, "outpath", "validate policy",
			"common root must be set when mirroring directory structure", nil)
	}
	return nil
}

// Resolve computes the output location for inputPath under the policy. It is
// a pure computation; use EnsureDir to create intermediate directories.
func (p Policy) Resolve(inputPath string) (string, error) {
	switch p.Mode {
	case Flatten:
		return filepath.Join(p.OutputRoot, rewriteExt(filepath.Base(inputPath), p.TargetExt)), nil
	case Mirror:
		rel, err := filepath.Rel(p.CommonRoot, inputPath)
		if err != nil {
			return "", services.Wrap(services.ErrConfiguration, "outpath", "relativize",
				fmt.Sprintf("%s is not relative to %s", inputPath, p.CommonRoot), err)
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", services.Wrap(services.ErrConfiguration, "outpath", "relativize",
				fmt.Sprintf("%s lies outside common root %s", inputPath, p.CommonRoot), nil)
		}
		return filepath.Join(p.OutputRoot, rewriteExt(rel, p.TargetExt)), nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "outpath", "resolve",
			fmt.Sprintf("unknown output mode %q", p.Mode), nil)
	}
}

// EnsureDir creates the parent directory of path. Safe to call concurrently
// for overlapping prefixes; an existing directory is not an error.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrIO, "outpath", "create directory", dir, err)
	}
	return nil
}

// CheckCollision surfaces an existing file at the output path unless the
// caller allows overwriting.
func CheckCollision(path string, overwrite bool) error {
	if overwrite {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrOutputExists, path)
	}
	return nil
}

func rewriteExt(path, targetExt string) string {
	if targetExt == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + targetExt
}
