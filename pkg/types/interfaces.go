package types

import (
	"io/fs"
)

// FS is the filesystem interface required for modfuse mutations. The
// transaction layer performs every write through it so tests can run
// against an in-memory implementation.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Rename is required for atomic replacement: stage then rename.
	Rename(oldname, newname string) error

	Remove(name string) error
}

// ContentProvider supplies the selected packages and their declared
// file sets. The network retrieval component implements it; tests use
// fixtures.
type ContentProvider interface {
	// Sources returns the mod sources selected for this merge run.
	Sources() ([]*ModSource, error)

	// PayloadPath resolves a declared file of a source to the staging
	// path holding its content.
	PayloadPath(source *ModSource, relPath string) (string, error)
}

// ProgressReporter receives step-level progress while a transaction
// executes. Implementations must not block.
type ProgressReporter interface {
	// Step is called before each operation with its zero-based index,
	// the total operation count, and a description.
	Step(index, total int, description string)
}

// ProgressFunc adapts a function to the ProgressReporter interface.
type ProgressFunc func(index, total int, description string)

// Step implements ProgressReporter.
func (f ProgressFunc) Step(index, total int, description string) {
	if f != nil {
		f(index, total, description)
	}
}
