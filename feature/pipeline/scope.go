package pipeline

import "fmt"

// Scope selects the steps of a run.
type Scope string

const (
	ScopeBooks    Scope = "books"
	ScopeNotes    Scope = "notes"
	ScopeReadTime Scope = "readtime"
	ScopeAll      Scope = "all"
)

// ParseScope validates a scope name. Empty means all.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "":
		return ScopeAll, nil
	case ScopeBooks, ScopeNotes, ScopeReadTime, ScopeAll:
		return Scope(s), nil
	}
	return "", fmt.Errorf("unknown sync scope %q", s)
}

// Includes reports whether running s runs step.
func (s Scope) Includes(step Scope) bool {
	return s == ScopeAll || s == step
}
