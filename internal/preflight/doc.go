// Package preflight verifies the runtime environment before a batch starts:
// directory permissions, available disk space, and the external conversion
// host. Checks report rather than fail so the CLI can present all problems at
// once.
package preflight
