// Package safewrite implements the write-verify-backup-replace sequence used
// for every destructive file operation. The original file is recoverable at
// every intermediate step, and backups accumulate rather than being reclaimed.
package safewrite
