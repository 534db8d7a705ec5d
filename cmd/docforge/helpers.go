package main

import (
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"docforge/internal/config"
	"docforge/internal/outpath"
	"docforge/internal/passwords"
	"docforge/internal/report"
)

var statusCaser = cases.Title(language.English)

func formatStatus(status report.Status) string {
	return statusCaser.String(string(status))
}

// collectInputs expands the given arguments into a flat, ordered input list.
// Files are taken as-is; directories are walked and filtered by extension.
// Explicit file arguments keep their given order, expanded directory contents
// are sorted so batches stay deterministic.
func collectInputs(args []string, extensions ...string) ([]string, error) {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	var inputs []string
	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", arg, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("inspect path %q: %w", arg, err)
		}
		if !info.IsDir() {
			inputs = append(inputs, path)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if _, ok := allowed[strings.ToLower(filepath.Ext(p))]; ok {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk directory %q: %w", arg, err)
		}
		sort.Strings(found)
		inputs = append(inputs, found...)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("no matching files (looked for %s)", strings.Join(extensions, ", "))
	}
	return inputs, nil
}

// loadPasswordEntries reads filename/password pairs from a two-column CSV.
// A leading header row naming the columns is tolerated and skipped.
func loadPasswordEntries(path string) ([]passwords.Entry, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve password file: %w", err)
	}
	f, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("open password file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse password file: %w", err)
	}

	var entries []passwords.Entry
	for i, record := range records {
		if len(record) == 0 {
			continue
		}
		if len(record) < 2 {
			return nil, fmt.Errorf("password file line %d: want filename,password", i+1)
		}
		name := strings.TrimSpace(record[0])
		if i == 0 && strings.EqualFold(name, "filename") {
			continue
		}
		entries = append(entries, passwords.Entry{Filename: name, Password: record[1]})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("password file %s holds no entries", path)
	}
	return entries, nil
}

func buildResolver(common, passwordFile string) (passwords.Resolver, error) {
	resolver := passwords.Resolver{Common: common}
	if passwordFile == "" {
		return resolver, nil
	}
	entries, err := loadPasswordEntries(passwordFile)
	if err != nil {
		return passwords.Resolver{}, err
	}
	resolver.Map, err = passwords.NewMap(entries)
	if err != nil {
		return passwords.Resolver{}, err
	}
	return resolver, nil
}

// buildPolicy assembles the output policy from flags, falling back to the
// configured output directory. Mirroring without an explicit common root
// derives it from the deepest shared ancestor of the inputs.
func buildPolicy(cfg *config.Config, outputDir string, mirror bool, commonRoot string, inputs []string, targetExt string) (outpath.Policy, error) {
	root := strings.TrimSpace(outputDir)
	if root == "" {
		root = cfg.Paths.OutputDir
	} else {
		expanded, err := config.ExpandPath(root)
		if err != nil {
			return outpath.Policy{}, fmt.Errorf("resolve output directory: %w", err)
		}
		root = expanded
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return outpath.Policy{}, fmt.Errorf("create output directory: %w", err)
	}

	policy := outpath.Policy{
		Mode:       outpath.Flatten,
		OutputRoot: root,
		TargetExt:  targetExt,
	}
	if mirror {
		policy.Mode = outpath.Mirror
		policy.CommonRoot = strings.TrimSpace(commonRoot)
		if policy.CommonRoot == "" {
			policy.CommonRoot = commonParent(inputs)
		} else {
			expanded, err := config.ExpandPath(policy.CommonRoot)
			if err != nil {
				return outpath.Policy{}, fmt.Errorf("resolve common root: %w", err)
			}
			policy.CommonRoot = expanded
		}
	}
	return policy, policy.Validate()
}

// commonParent returns the deepest directory shared by every path.
func commonParent(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	sep := string(filepath.Separator)
	common := strings.Split(filepath.Dir(paths[0]), sep)
	for _, path := range paths[1:] {
		parts := strings.Split(filepath.Dir(path), sep)
		if len(parts) < len(common) {
			common = common[:len(parts)]
		}
		for i := range common {
			if common[i] != parts[i] {
				common = common[:i]
				break
			}
		}
	}
	return strings.Join(common, sep)
}
