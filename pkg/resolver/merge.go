package resolver

import (
	"fmt"

	"modfuse/pkg/merge"
	"modfuse/pkg/types"
)

// merge attempts a structural merge of the conflict's affected files.
// Only legal for script and configuration conflicts. When any file
// cannot be structurally merged, the whole conflict falls back to
// higher-priority and the fallback is recorded on the result.
func (r *Resolver) merge(c *types.ModConflict) *types.ResolutionResult {
	if c.Type != types.ConflictTypeScript && c.Type != types.ConflictTypeConfiguration {
		return types.Failed(c.ID, types.StrategyMerge,
			fmt.Sprintf("merge is not legal for %s conflicts", c.Type))
	}
	if len(c.Sources) < 2 {
		return types.Failed(c.ID, types.StrategyMerge, "conflict has fewer than two sources")
	}

	winner, err := higherPriority{}.resolve(c)
	if err != nil {
		return types.Failed(c.ID, types.StrategyMerge, err.Error())
	}
	loser := c.Sources[0]
	if loser == winner {
		loser = c.Sources[1]
	}

	if r.loader == nil {
		return r.mergeFallback(c, "no content loader available")
	}

	merged := make(map[string][]byte, c.AffectedFiles.Len())
	for _, relPath := range c.AffectedFiles.Sorted() {
		if !merge.Mergeable(relPath) {
			return r.mergeFallback(c, fmt.Sprintf("%s is not structurally mergeable", relPath))
		}
		winContent, err := r.loader.Load(winner, relPath)
		if err != nil {
			return r.mergeFallback(c, fmt.Sprintf("failed to read %s from %s: %v", relPath, winner.Name, err))
		}
		loseContent, err := r.loader.Load(loser, relPath)
		if err != nil {
			return r.mergeFallback(c, fmt.Sprintf("failed to read %s from %s: %v", relPath, loser.Name, err))
		}
		out, err := merge.Files(relPath, winContent, loseContent)
		if err != nil {
			return r.mergeFallback(c, fmt.Sprintf("%s could not be merged: %v", relPath, err))
		}
		merged[relPath] = out
	}

	result := types.Resolved(c.ID, types.StrategyMerge, winner)
	result.MergedFiles = merged
	return result
}

// mergeFallback resolves via higher-priority and marks the result as
// a fallback so callers can surface it.
func (r *Resolver) mergeFallback(c *types.ModConflict, reason string) *types.ResolutionResult {
	winner, err := higherPriority{}.resolve(c)
	if err != nil {
		return types.Failed(c.ID, types.StrategyMerge, err.Error())
	}

	r.logger.Debug().
		Str("conflict", c.ID).
		Str("reason", reason).
		Msg("Structural merge fell back to higher-priority")

	result := types.Resolved(c.ID, types.StrategyHigherPriority, winner)
	result.UsedFallback = true
	result.Message = "merge fell back to higher-priority: " + reason
	return result
}
