package types

// ResolutionStrategy names a rule for choosing the winning source of a
// conflict. The set is closed; pkg/resolver maps each value to a
// concrete implementation.
type ResolutionStrategy string

const (
	// StrategyHigherPriority picks the source with the lowest priority
	// value (lower value = higher precedence). First source wins ties.
	StrategyHigherPriority ResolutionStrategy = "higher-priority"

	// StrategyLowerPriority picks the source with the highest priority
	// value.
	StrategyLowerPriority ResolutionStrategy = "lower-priority"

	// StrategyMostRecent picks the source with the latest applied
	// timestamp.
	StrategyMostRecent ResolutionStrategy = "most-recent"

	// StrategyKeepExisting keeps the first source, representing the
	// previously applied state.
	StrategyKeepExisting ResolutionStrategy = "keep-existing"

	// StrategyUseNew picks the last source, representing the newly
	// added package.
	StrategyUseNew ResolutionStrategy = "use-new"

	// StrategyMerge attempts a structural, field-level merge of
	// non-overlapping keys. Only legal for script and configuration
	// conflicts; falls back to higher-priority when the content cannot
	// be structurally merged.
	StrategyMerge ResolutionStrategy = "merge"

	// StrategyInteractive defers the decision to the user. It never
	// resolves on its own.
	StrategyInteractive ResolutionStrategy = "interactive"
)

// String returns the strategy's wire name.
func (s ResolutionStrategy) String() string { return string(s) }

// IsValid reports whether the strategy is one of the known values.
func (s ResolutionStrategy) IsValid() bool {
	switch s {
	case StrategyHigherPriority, StrategyLowerPriority, StrategyMostRecent,
		StrategyKeepExisting, StrategyUseNew, StrategyMerge, StrategyInteractive:
		return true
	default:
		return false
	}
}

// AllStrategies returns every known strategy in presentation order.
func AllStrategies() []ResolutionStrategy {
	return []ResolutionStrategy{
		StrategyHigherPriority,
		StrategyLowerPriority,
		StrategyMostRecent,
		StrategyKeepExisting,
		StrategyUseNew,
		StrategyMerge,
		StrategyInteractive,
	}
}

// Description returns a human-readable explanation of the strategy.
func (s ResolutionStrategy) Description() string {
	switch s {
	case StrategyHigherPriority:
		return "Use the mod with the higher configured priority"
	case StrategyLowerPriority:
		return "Use the mod with the lower configured priority"
	case StrategyMostRecent:
		return "Use the most recently applied mod"
	case StrategyKeepExisting:
		return "Keep the currently applied mod"
	case StrategyUseNew:
		return "Use the newly added mod"
	case StrategyMerge:
		return "Merge non-overlapping settings from both mods"
	case StrategyInteractive:
		return "Ask before resolving"
	default:
		return "Unknown strategy"
	}
}
