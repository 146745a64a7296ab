package testutil

import (
	"time"

	"modfuse/pkg/types"
)

// Source builds a mod source with a fixed applied time so timestamp
// ordering in tests is deterministic.
func Source(id, category string, files ...string) *types.ModSource {
	s := types.NewModSource(id, id, category, types.NewFileSet(files...))
	s.AppliedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return s
}

// SourceAt is Source with an explicit applied timestamp.
func SourceAt(id, category string, applied time.Time, files ...string) *types.ModSource {
	s := Source(id, category, files...)
	s.AppliedAt = applied
	return s
}

// Conflict builds a conflict over the given sources whose affected
// files are the exact intersection of their file sets.
func Conflict(id string, severity types.ConflictSeverity, sources ...*types.ModSource) *types.ModConflict {
	affected := sources[0].Files.Clone()
	for _, s := range sources[1:] {
		affected = affected.Intersect(s.Files)
	}
	return &types.ModConflict{
		ID:            id,
		Type:          types.ConflictTypeFile,
		Severity:      severity,
		AffectedFiles: affected,
		Sources:       sources,
	}
}

// SeedFile writes a file (and its parents) into a MemoryFS.
func SeedFile(fs *MemoryFS, path string, content []byte) error {
	if err := fs.MkdirAll(parentDir(path), 0755); err != nil {
		return err
	}
	return fs.WriteFile(path, content, 0644)
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "/"
}
