package conflicts

import (
	"fmt"

	"modfuse/pkg/types"
)

// buildOptions assembles the ordered resolution choices a caller may
// present for a conflict. The first option is the suggested default.
func buildOptions(c *types.ModConflict) []types.ResolutionOption {
	opts := []types.ResolutionOption{
		{Label: types.StrategyHigherPriority.Description(), Strategy: types.StrategyHigherPriority},
		{Label: types.StrategyMostRecent.Description(), Strategy: types.StrategyMostRecent},
	}

	// Structural merge is only offered where it is legal.
	if c.Type == types.ConflictTypeScript || c.Type == types.ConflictTypeConfiguration {
		opts = append(opts, types.ResolutionOption{
			Label:    types.StrategyMerge.Description(),
			Strategy: types.StrategyMerge,
		})
	}

	opts = append(opts,
		types.ResolutionOption{Label: types.StrategyKeepExisting.Description(), Strategy: types.StrategyKeepExisting},
		types.ResolutionOption{Label: types.StrategyUseNew.Description(), Strategy: types.StrategyUseNew},
	)

	// One pinned option per source so the user can pick a mod
	// directly.
	for _, s := range c.Sources {
		opts = append(opts, types.ResolutionOption{
			Label:    fmt.Sprintf("Use %s for all affected files", s.Name),
			Strategy: types.StrategyKeepExisting,
			SourceID: s.ID,
		})
	}
	return opts
}
