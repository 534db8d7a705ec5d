package passwords

import (
	"fmt"
	"strings"

	"docforge/internal/services"
)

// Entry is one filename/password pair from an external tabular source. The
// engine never parses the tabular format itself; the presentation layer hands
// over pairs that are already split.
type Entry struct {
	Filename string
	Password string
}

// Map holds per-file passwords keyed by filename. Lookups are case-sensitive
// and keyed on whatever name scheme the batch was built with.
type Map struct {
	entries map[string]string
}

// NewMap builds a Map from pairs, rejecting duplicate keys with a descriptive
// error rather than silently overwriting.
func NewMap(pairs []Entry) (Map, error) {
	entries := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name := strings.TrimSpace(pair.Filename)
		if name == "" {
			return Map{}, services.Wrap(services.ErrConfiguration, "passwords", "build map",
				"empty filename in password mapping", nil)
		}
		if _, exists := entries[name]; exists {
			return Map{}, services.Wrap(services.ErrConfiguration, "passwords", "build map",
				fmt.Sprintf("duplicate entry for %q", name), nil)
		}
		entries[name] = pair.Password
	}
	return Map{entries: entries}, nil
}

// Lookup returns the password mapped to name, if any.
func (m Map) Lookup(name string) (string, bool) {
	pw, ok := m.entries[name]
	return pw, ok
}

// Len reports how many filenames are mapped.
func (m Map) Len() int { return len(m.entries) }

// Source identifies where a candidate password came from.
type Source string

const (
	SourcePerFile Source = "per-file"
	SourceCommon  Source = "common"
)

// Candidate is one password to attempt, tagged with its origin for result
// messages.
type Candidate struct {
	Password string
	Source   Source
}

// Resolver yields the candidate passwords for a filename. A per-file map
// entry wins and suppresses the common password; the result is an ordered
// list so a fallback chain stays possible later.
type Resolver struct {
	Common string
	Map    Map
}

// Resolve returns the candidates for filename. An empty slice means the file
// is unresolved and must not be attempted.
func (r Resolver) Resolve(filename string) []Candidate {
	if pw, ok := r.Map.Lookup(filename); ok {
		return []Candidate{{Password: pw, Source: SourcePerFile}}
	}
	if r.Common != "" {
		return []Candidate{{Password: r.Common, Source: SourceCommon}}
	}
	return nil
}
