package types

// ConflictType categorizes what kind of content two mods collide on,
// inferred from the overlapping paths.
type ConflictType string

const (
	ConflictTypeFile          ConflictType = "file"
	ConflictTypeScript        ConflictType = "script"
	ConflictTypeAsset         ConflictType = "asset"
	ConflictTypeConfiguration ConflictType = "configuration"
)

// String returns the type's wire name.
func (t ConflictType) String() string { return string(t) }

// ConflictSeverity ranks how risky an overlap is. Ordering is
// meaningful: higher values are strictly more severe.
type ConflictSeverity int

const (
	SeverityLow ConflictSeverity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String returns a human-readable severity name.
func (s ConflictSeverity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ResolutionOption is one choice a caller may present to the user for
// an unresolved conflict. Options are ordered; the first option is the
// suggested default.
type ResolutionOption struct {
	// Label is the human-readable choice text.
	Label string

	// Strategy is the resolution strategy the option maps to.
	Strategy ResolutionStrategy

	// SourceID, when non-empty, pins the winner to a specific source
	// instead of letting the strategy pick one.
	SourceID string
}

// ModConflict is a detected overlap between two or more mod sources.
// The detector owns the Sources slice; callers must treat it as
// read-only.
type ModConflict struct {
	// ID uniquely identifies the conflict within one detection run.
	ID string

	// Type is the inferred content type of the overlap.
	Type ConflictType

	// Severity is the classified risk level.
	Severity ConflictSeverity

	// AffectedFiles is the exact intersection of the sources' file
	// sets. Invariant: non-empty.
	AffectedFiles FileSet

	// Sources are the conflicting mods, in detection order.
	Sources []*ModSource

	// Description is a human-readable summary of the overlap.
	Description string

	// Options is the ordered list of resolutions a caller may offer.
	Options []ResolutionOption

	// Resolved is set once a resolution has been applied.
	Resolved bool

	// Selected records the option chosen when the conflict was
	// resolved through ApplyUserChoice. Nil for automatic resolution.
	Selected *ResolutionOption

	// Outcome caches the result of the applied resolution so that
	// re-applying the same choice is idempotent.
	Outcome *ResolutionResult
}

// RequiresUserIntervention reports whether the conflict must be
// decided externally. Derived from severity: critical conflicts are
// never auto-resolved.
func (c *ModConflict) RequiresUserIntervention() bool {
	return c.Severity == SeverityCritical
}

// PrimaryCategory returns the category of the first conflicting
// source, used to look up per-category strategy overrides.
func (c *ModConflict) PrimaryCategory() string {
	if len(c.Sources) == 0 {
		return ""
	}
	return c.Sources[0].Category
}

// Offers reports whether the option is one of the resolutions this
// conflict presents. Options match on strategy and pinned source;
// labels are display text and do not participate.
func (c *ModConflict) Offers(option ResolutionOption) bool {
	for _, o := range c.Options {
		if o.Strategy == option.Strategy && o.SourceID == option.SourceID {
			return true
		}
	}
	return false
}

// OptionForSource returns the offered option pinning the given source
// as winner, or nil when the conflict offers no such option.
func (c *ModConflict) OptionForSource(id string) *ResolutionOption {
	for i, o := range c.Options {
		if o.SourceID == id {
			return &c.Options[i]
		}
	}
	return nil
}

// SourceByID returns the conflicting source with the given id, or nil.
func (c *ModConflict) SourceByID(id string) *ModSource {
	for _, s := range c.Sources {
		if s.ID == id {
			return s
		}
	}
	return nil
}
