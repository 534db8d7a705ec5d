package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks failures detected at or before job resolution:
	// unresolved passwords, missing mirror roots, duplicate map keys.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransform marks refusals from the underlying document library:
	// wrong password, corrupt file, unsupported format.
	ErrTransform = errors.New("transform error")
	// ErrIO marks filesystem failures: permissions, disk full, path length.
	ErrIO = errors.New("io error")
	// ErrAutomation marks failures of the external office-automation host.
	ErrAutomation = errors.New("automation error")
	// ErrValidation marks rejected inputs before any work starts.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransform
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsConfiguration reports whether the error was classified as a
// configuration problem rather than a transformation failure. Configuration
// failures are reported without the file ever being attempted.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrValidation)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
