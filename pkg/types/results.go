package types

// ResolutionResult reports the outcome of resolving one conflict.
// Invariant: Success implies Winner is non-nil.
type ResolutionResult struct {
	// ConflictID identifies the conflict this result belongs to.
	ConflictID string

	// Success is true when a winner was determined.
	Success bool

	// Winner is the source whose files will be applied. Nil on
	// failure.
	Winner *ModSource

	// StrategyUsed is the strategy that actually produced the
	// outcome. May differ from the requested strategy when a merge
	// fell back to higher-priority.
	StrategyUsed ResolutionStrategy

	// UsedFallback is true when the requested strategy could not be
	// applied and a fallback strategy decided the winner instead.
	UsedFallback bool

	// MergedFiles holds structurally merged content keyed by affected
	// path, present only for successful merge resolutions. The
	// transaction planner writes these instead of copying the
	// winner's payload for those paths.
	MergedFiles map[string][]byte

	// Message carries a human-readable explanation, set on failure
	// and on fallback.
	Message string
}

// Failed builds a failure result for the given conflict.
func Failed(conflictID string, strategy ResolutionStrategy, message string) *ResolutionResult {
	return &ResolutionResult{
		ConflictID:   conflictID,
		Success:      false,
		StrategyUsed: strategy,
		Message:      message,
	}
}

// Resolved builds a success result with the given winner.
func Resolved(conflictID string, strategy ResolutionStrategy, winner *ModSource) *ResolutionResult {
	return &ResolutionResult{
		ConflictID:   conflictID,
		Success:      true,
		StrategyUsed: strategy,
		Winner:       winner,
	}
}
