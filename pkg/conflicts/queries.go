package conflicts

import "modfuse/pkg/types"

// FilterBySeverity returns the conflicts matching the given severity,
// preserving detection order.
func FilterBySeverity(conflicts []*types.ModConflict, severity types.ConflictSeverity) []*types.ModConflict {
	var out []*types.ModConflict
	for _, c := range conflicts {
		if c.Severity == severity {
			out = append(out, c)
		}
	}
	return out
}

// HasCritical reports whether any conflict is critical.
func HasCritical(conflicts []*types.ModConflict) bool {
	for _, c := range conflicts {
		if c.Severity == types.SeverityCritical {
			return true
		}
	}
	return false
}

// RequiringIntervention returns the conflicts that must be decided by
// the user before a merge can proceed.
func RequiringIntervention(conflicts []*types.ModConflict) []*types.ModConflict {
	var out []*types.ModConflict
	for _, c := range conflicts {
		if c.RequiresUserIntervention() {
			out = append(out, c)
		}
	}
	return out
}
