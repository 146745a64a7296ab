package types

import "time"

// DefaultPriority is the sentinel priority assigned to mods that have
// no entry in the persisted priority configuration. Lower values win.
const DefaultPriority = 100

// ModSource describes one package's contribution to a merge run: its
// identity, the set of files it declares inside the target tree, and
// the precedence information used to pick winners between overlapping
// packages.
type ModSource struct {
	// ID uniquely identifies the mod within a single detection call.
	ID string

	// Name is the human-readable mod name.
	Name string

	// Category groups mods by what they change ("Weather", "UI", ...).
	// Same-category overlaps are treated as more suspicious.
	Category string

	// Files is the normalized set of paths the mod touches.
	// Never nil for a well-formed source.
	Files FileSet

	// Priority is the precedence value; lower wins. Defaults to
	// DefaultPriority when the mod has no configured entry.
	Priority int

	// AppliedAt records when the mod was added or last applied.
	AppliedAt time.Time

	// PayloadDir is the staging directory holding the mod's actual
	// file content, laid out relative to the target tree. Only the
	// transaction planner reads it.
	PayloadDir string
}

// NewModSource builds a source with the default priority and the
// current time as its applied timestamp.
func NewModSource(id, name, category string, files FileSet) *ModSource {
	return &ModSource{
		ID:        id,
		Name:      name,
		Category:  category,
		Files:     files,
		Priority:  DefaultPriority,
		AppliedAt: time.Now(),
	}
}

// Valid reports whether the source satisfies the model invariants:
// a non-empty id and a non-nil file set.
func (m *ModSource) Valid() bool {
	return m != nil && m.ID != "" && m.Files != nil
}
