// Package config loads, validates, and normalizes docforge configuration.
//
// Configuration lives in a TOML file (default ~/.config/docforge/config.toml,
// with a project-local docforge.toml fallback). Loading always starts from
// Default(), decodes the file over it when present, expands ~ in every path
// field, and rejects unusable values before any batch work starts.
package config
