// Package testutil provides shared test helpers: an in-memory
// filesystem implementing types.FS with error injection, and fixture
// builders for mod sources and conflicts.
package testutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"modfuse/pkg/types"
)

var _ types.FS = (*MemoryFS)(nil)

// MemoryFS implements types.FS with in-memory storage. It supports
// per-path error injection so tests can force mid-transaction
// failures deterministically.
type MemoryFS struct {
	files map[string]*fileNode

	// errorPaths maps "op path" to an injected error.
	errorPaths map[string]error

	writeCount int
}

// fileNode represents a file or directory in memory
type fileNode struct {
	mode    fs.FileMode
	modTime time.Time
	content []byte
	isDir   bool
}

// NewMemoryFS creates a new in-memory filesystem with a root
// directory.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files: map[string]*fileNode{
			"/": {mode: 0755 | fs.ModeDir, modTime: time.Now(), isDir: true},
		},
		errorPaths: make(map[string]error),
	}
}

// InjectError makes the given operation ("write", "read", "rename",
// "remove", "stat", "mkdir") fail for path with err.
func (m *MemoryFS) InjectError(op, path string, err error) {
	m.errorPaths[op+" "+normalize(path)] = err
}

// WriteCount returns the number of successful writes, for asserting
// that idempotent re-application performs no duplicate mutation.
func (m *MemoryFS) WriteCount() int { return m.writeCount }

// Exists reports whether a file or directory is present.
func (m *MemoryFS) Exists(path string) bool {
	_, ok := m.files[normalize(path)]
	return ok
}

func normalize(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return filepath.Clean(p)
}

func (m *MemoryFS) injected(op, path string) error {
	return m.errorPaths[op+" "+path]
}

func notExist(op, path string) error {
	return &fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist}
}

// Stat implements types.FS.
func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	p := normalize(name)
	if err := m.injected("stat", p); err != nil {
		return nil, err
	}
	node, ok := m.files[p]
	if !ok {
		return nil, notExist("stat", p)
	}
	return &memInfo{name: filepath.Base(p), node: node}, nil
}

// ReadFile implements types.FS.
func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	p := normalize(name)
	if err := m.injected("read", p); err != nil {
		return nil, err
	}
	node, ok := m.files[p]
	if !ok {
		return nil, notExist("open", p)
	}
	if node.isDir {
		return nil, &fs.PathError{Op: "read", Path: p, Err: fs.ErrInvalid}
	}
	out := make([]byte, len(node.content))
	copy(out, node.content)
	return out, nil
}

// WriteFile implements types.FS. The parent directory must exist.
func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	p := normalize(name)
	if err := m.injected("write", p); err != nil {
		return err
	}
	parent, ok := m.files[filepath.Dir(p)]
	if !ok || !parent.isDir {
		return notExist("write", p)
	}
	if node, ok := m.files[p]; ok && node.isDir {
		return &fs.PathError{Op: "write", Path: p, Err: fs.ErrInvalid}
	}
	content := make([]byte, len(data))
	copy(content, data)
	m.files[p] = &fileNode{mode: perm, modTime: time.Now(), content: content}
	m.writeCount++
	return nil
}

// MkdirAll implements types.FS.
func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	p := normalize(path)
	if err := m.injected("mkdir", p); err != nil {
		return err
	}
	segments := strings.Split(strings.TrimPrefix(p, "/"), "/")
	cur := "/"
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		cur = filepath.Join(cur, seg)
		if node, ok := m.files[cur]; ok {
			if !node.isDir {
				return &fs.PathError{Op: "mkdir", Path: cur, Err: fs.ErrExist}
			}
			continue
		}
		m.files[cur] = &fileNode{mode: perm | fs.ModeDir, modTime: time.Now(), isDir: true}
	}
	return nil
}

// ReadDir implements types.FS.
func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	p := normalize(name)
	node, ok := m.files[p]
	if !ok {
		return nil, notExist("open", p)
	}
	if !node.isDir {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrInvalid}
	}
	var names []string
	for path := range m.files {
		if path != p && filepath.Dir(path) == p {
			names = append(names, path)
		}
	}
	sort.Strings(names)
	entries := make([]fs.DirEntry, 0, len(names))
	for _, path := range names {
		entries = append(entries, &memEntry{name: filepath.Base(path), node: m.files[path]})
	}
	return entries, nil
}

// Rename implements types.FS. Directories move with their subtree.
func (m *MemoryFS) Rename(oldname, newname string) error {
	oldp, newp := normalize(oldname), normalize(newname)
	if err := m.injected("rename", oldp); err != nil {
		return err
	}
	if err := m.injected("rename", newp); err != nil {
		return err
	}
	node, ok := m.files[oldp]
	if !ok {
		return notExist("rename", oldp)
	}
	if parent, ok := m.files[filepath.Dir(newp)]; !ok || !parent.isDir {
		return notExist("rename", newp)
	}
	if node.isDir {
		prefix := oldp + "/"
		moved := make(map[string]*fileNode)
		for path, n := range m.files {
			if path == oldp || strings.HasPrefix(path, prefix) {
				moved[newp+strings.TrimPrefix(path, oldp)] = n
				delete(m.files, path)
			}
		}
		for path, n := range moved {
			m.files[path] = n
		}
		return nil
	}
	m.files[newp] = node
	delete(m.files, oldp)
	return nil
}

// Remove implements types.FS. Non-empty directories are refused.
func (m *MemoryFS) Remove(name string) error {
	p := normalize(name)
	if err := m.injected("remove", p); err != nil {
		return err
	}
	node, ok := m.files[p]
	if !ok {
		return notExist("remove", p)
	}
	if node.isDir {
		for path := range m.files {
			if filepath.Dir(path) == p && path != p {
				return &fs.PathError{Op: "remove", Path: p, Err: fs.ErrInvalid}
			}
		}
	}
	delete(m.files, p)
	return nil
}

// memInfo adapts a fileNode to fs.FileInfo.
type memInfo struct {
	name string
	node *fileNode
}

func (i *memInfo) Name() string       { return i.name }
func (i *memInfo) Size() int64        { return int64(len(i.node.content)) }
func (i *memInfo) Mode() fs.FileMode  { return i.node.mode }
func (i *memInfo) ModTime() time.Time { return i.node.modTime }
func (i *memInfo) IsDir() bool        { return i.node.isDir }
func (i *memInfo) Sys() interface{}   { return nil }

// memEntry adapts a fileNode to fs.DirEntry.
type memEntry struct {
	name string
	node *fileNode
}

func (e *memEntry) Name() string               { return e.name }
func (e *memEntry) IsDir() bool                { return e.node.isDir }
func (e *memEntry) Type() fs.FileMode          { return e.node.mode.Type() }
func (e *memEntry) Info() (fs.FileInfo, error) { return &memInfo{name: e.name, node: e.node}, nil }
