// Package staging discovers mod sources from a staging directory.
// Each subdirectory is one source: its files form the declared file
// set and an optional mod.toml manifest carries display metadata.
package staging

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"modfuse/pkg/errors"
	"modfuse/pkg/logging"
	"modfuse/pkg/types"
)

// ManifestName is the per-source metadata file. It is not part of the
// declared file set.
const ManifestName = "mod.toml"

// manifest is the optional per-source metadata.
type manifest struct {
	Name     string `toml:"name"`
	Category string `toml:"category"`

	// Applied is an RFC3339 timestamp overriding the directory's
	// modification time for most-recent resolution.
	Applied string `toml:"applied"`
}

// Provider implements types.ContentProvider over a staging directory.
type Provider struct {
	logger zerolog.Logger
	fs     types.FS
	root   string

	// actual maps source id and normalized path to the on-disk
	// relative path, preserving casing lost by normalization.
	actual map[string]map[string]string
}

// NewProvider creates a provider rooted at the given staging
// directory.
func NewProvider(fsys types.FS, root string) *Provider {
	return &Provider{
		logger: logging.GetLogger("staging.provider"),
		fs:     fsys,
		root:   root,
		actual: make(map[string]map[string]string),
	}
}

// Sources scans the staging root and returns one source per
// subdirectory, sorted by id. Hidden directories are skipped.
func (p *Provider) Sources() ([]*types.ModSource, error) {
	info, err := p.fs.Stat(p.root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrNotFound, "staging root does not exist").
			WithDetail("path", p.root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrInvalidInput, "staging root is not a directory").
			WithDetail("path", p.root)
	}

	entries, err := p.fs.ReadDir(p.root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read staging root").
			WithDetail("path", p.root)
	}

	var sources []*types.ModSource
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		src, err := p.load(entry.Name())
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })
	p.logger.Debug().Int("count", len(sources)).Str("root", p.root).Msg("Staged sources discovered")
	return sources, nil
}

// PayloadPath resolves a declared file to its staged location, using
// the on-disk casing recorded during discovery.
func (p *Provider) PayloadPath(source *types.ModSource, relPath string) (string, error) {
	normalized := types.NormalizePath(relPath)
	if !source.Files.Contains(normalized) {
		return "", errors.New(errors.ErrNotFound, "file is not declared by this source").
			WithDetail("source", source.ID).
			WithDetail("path", relPath)
	}
	onDisk := normalized
	if byPath, ok := p.actual[source.ID]; ok {
		if actual, ok := byPath[normalized]; ok {
			onDisk = actual
		}
	}
	return filepath.Join(p.root, source.ID, filepath.FromSlash(onDisk)), nil
}

// load builds one source from its staging subdirectory.
func (p *Provider) load(id string) (*types.ModSource, error) {
	dir := filepath.Join(p.root, id)

	files := types.NewFileSet()
	actual := make(map[string]string)
	if err := p.walk(dir, "", files, actual); err != nil {
		return nil, err
	}
	p.actual[id] = actual

	src := types.NewModSource(id, id, "", files)

	if info, err := p.fs.Stat(dir); err == nil {
		src.AppliedAt = info.ModTime()
	}

	manifestPath := filepath.Join(dir, ManifestName)
	if data, err := p.fs.ReadFile(manifestPath); err == nil {
		var m manifest
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigParse, "invalid mod manifest").
				WithDetail("path", manifestPath)
		}
		if m.Name != "" {
			src.Name = m.Name
		}
		src.Category = m.Category
		if m.Applied != "" {
			applied, err := time.Parse(time.RFC3339, m.Applied)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrConfigParse, "invalid applied timestamp in manifest").
					WithDetail("path", manifestPath)
			}
			src.AppliedAt = applied
		}
	}

	return src, nil
}

// walk collects the files under dir into the set, as slash-separated
// paths relative to the source root. The manifest is excluded.
func (p *Provider) walk(dir, rel string, files types.FileSet, actual map[string]string) error {
	entries, err := p.fs.ReadDir(dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot read staged source directory").
			WithDetail("path", dir)
	}
	for _, entry := range entries {
		name := entry.Name()
		childRel := path.Join(rel, name)
		if entry.IsDir() {
			if err := p.walk(filepath.Join(dir, name), childRel, files, actual); err != nil {
				return err
			}
			continue
		}
		if rel == "" && name == ManifestName {
			continue
		}
		files.Add(childRel)
		actual[types.NormalizePath(childRel)] = childRel
	}
	return nil
}
