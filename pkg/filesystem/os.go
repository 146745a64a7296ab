// Package filesystem provides the production types.FS implementation
// backed by the operating system.
package filesystem

import (
	"io/fs"
	"os"

	"modfuse/pkg/types"
)

var _ types.FS = (*OS)(nil)

// OS implements types.FS using the os package directly.
type OS struct{}

// NewOS returns the operating-system-backed filesystem.
func NewOS() *OS { return &OS{} }

func (*OS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
func (*OS) ReadFile(name string) ([]byte, error)  { return os.ReadFile(name) }

func (*OS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (*OS) MkdirAll(path string, perm fs.FileMode) error { return os.MkdirAll(path, perm) }
func (*OS) ReadDir(name string) ([]fs.DirEntry, error)   { return os.ReadDir(name) }
func (*OS) Rename(oldname, newname string) error         { return os.Rename(oldname, newname) }
func (*OS) Remove(name string) error                     { return os.Remove(name) }
