// Package history persists finished batches to a local SQLite database so
// past runs can be listed and inspected after the process exits.
package history
