package types

import (
	"path/filepath"
	"sort"
	"strings"
)

// FileSet is a set of normalized, case-insensitive file paths declared
// by a mod. Paths are stored slash-separated and lower-cased so that
// "Scripts\Weather.lua" and "scripts/weather.lua" compare equal.
type FileSet map[string]struct{}

// NormalizePath converts a declared file path to its canonical set form.
func NormalizePath(path string) string {
	p := filepath.ToSlash(strings.TrimSpace(path))
	p = strings.TrimPrefix(p, "./")
	return strings.ToLower(p)
}

// NewFileSet builds a FileSet from raw paths, normalizing each entry.
// Empty entries are dropped.
func NewFileSet(paths ...string) FileSet {
	s := make(FileSet, len(paths))
	for _, p := range paths {
		if n := NormalizePath(p); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Add inserts a path into the set after normalization.
func (s FileSet) Add(path string) {
	if n := NormalizePath(path); n != "" {
		s[n] = struct{}{}
	}
}

// Contains reports whether the set holds the given path.
func (s FileSet) Contains(path string) bool {
	_, ok := s[NormalizePath(path)]
	return ok
}

// Len returns the number of paths in the set.
func (s FileSet) Len() int {
	return len(s)
}

// Intersect returns the paths present in both sets.
func (s FileSet) Intersect(other FileSet) FileSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(FileSet)
	for p := range small {
		if _, ok := large[p]; ok {
			out[p] = struct{}{}
		}
	}
	return out
}

// Sorted returns the set's paths in lexical order. Useful for stable
// output and deterministic conflict descriptions.
func (s FileSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (s FileSet) Clone() FileSet {
	out := make(FileSet, len(s))
	for p := range s {
		out[p] = struct{}{}
	}
	return out
}
