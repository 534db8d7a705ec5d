package report

import "strings"

// Operation identifies the transformation applied to a batch.
type Operation string

const (
	OpDecrypt   Operation = "decrypt"
	OpReEncrypt Operation = "reencrypt"
	OpMerge     Operation = "merge"
	OpConvert   Operation = "convert"
)

var allOperations = []Operation{OpDecrypt, OpReEncrypt, OpMerge, OpConvert}

// ParseOperation converts a string into a known Operation.
func ParseOperation(value string) (Operation, bool) {
	normalized := Operation(strings.ToLower(strings.TrimSpace(value)))
	for _, op := range allOperations {
		if op == normalized {
			return op, true
		}
	}
	return "", false
}

// Status is the terminal outcome of one file within a batch.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusSuccess:
		return StatusSuccess, true
	case StatusSkipped:
		return StatusSkipped, true
	case StatusFailed:
		return StatusFailed, true
	default:
		return "", false
	}
}

// JobResult is the immutable record of one file's outcome. Exactly one is
// produced per submitted file, identified by its submission index.
type JobResult struct {
	Index      int
	InputPath  string
	Status     Status
	Message    string
	OutputPath string
}

// Summary aggregates a finished batch for presentation.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failed    int
	// LastOutputDir is the directory of the most recently completed
	// successful output, kept for "open output folder" affordances.
	LastOutputDir string
}
