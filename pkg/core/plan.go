package core

import (
	"context"
	"path/filepath"
	"sort"

	"modfuse/pkg/errors"
	"modfuse/pkg/transaction"
	"modfuse/pkg/types"
)

// plannedFile is one file mutation the merge will perform: either a
// copy from a source's payload or a write of merged bytes.
type plannedFile struct {
	relPath string
	source  *types.ModSource
	merged  []byte
}

// plan decides which source owns each target file. Unconflicted files
// belong to the only source declaring them; conflicted files belong
// to the resolution winner (or carry merged bytes). Files of failed
// resolutions are left untouched.
func (m *Merger) plan(sources []*types.ModSource, resolved []*types.ModConflict, resolutions []*types.ResolutionResult) ([]plannedFile, error) {
	owners := make(map[string]*plannedFile)

	// Sources arrive sorted ascending by priority; walking them in
	// reverse makes the higher-precedence source the last writer for
	// any path declared by several sources.
	for i := len(sources) - 1; i >= 0; i-- {
		src := sources[i]
		if !src.Valid() {
			continue
		}
		for _, rel := range src.Files.Sorted() {
			owners[rel] = &plannedFile{relPath: rel, source: src}
		}
	}

	conflictByID := make(map[string]*types.ModConflict, len(resolved))
	for _, c := range resolved {
		conflictByID[c.ID] = c
	}

	for _, res := range resolutions {
		c := conflictByID[res.ConflictID]
		if c == nil {
			continue
		}
		for _, rel := range c.AffectedFiles.Sorted() {
			if !res.Success {
				// No winner: leave the file out of the plan entirely.
				delete(owners, rel)
				continue
			}
			pf := &plannedFile{relPath: rel, source: res.Winner}
			if data, ok := res.MergedFiles[rel]; ok {
				pf.merged = data
			}
			owners[rel] = pf
		}
	}

	out := make([]plannedFile, 0, len(owners))
	for _, pf := range owners {
		out = append(out, *pf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].relPath < out[j].relPath })
	return out, nil
}

// apply translates the plan into reversible operations and executes
// them in one transaction.
func (m *Merger) apply(ctx context.Context, plan []plannedFile) error {
	tx := transaction.New(m.cfg.FS, m.cfg.BackupDir)

	dirs := map[string]bool{}
	for _, pf := range plan {
		dir := filepath.Dir(filepath.Join(m.cfg.TargetDir, pf.relPath))
		if !dirs[dir] {
			dirs[dir] = true
			if err := tx.CreateDirectory(dir); err != nil {
				return err
			}
		}
	}

	for _, pf := range plan {
		dst := filepath.Join(m.cfg.TargetDir, pf.relPath)

		if pf.merged != nil {
			if err := tx.AtomicReplace(dst, pf.merged); err != nil {
				return err
			}
			continue
		}

		payload, err := m.cfg.Provider.PayloadPath(pf.source, pf.relPath)
		if err != nil {
			return errors.Wrapf(err, errors.ErrNotFound,
				"no payload for %s in %s", pf.relPath, pf.source.Name)
		}

		// Existing files are replaced atomically; new files are plain
		// copies.
		if _, statErr := m.cfg.FS.Stat(dst); statErr == nil {
			data, readErr := m.cfg.FS.ReadFile(payload)
			if readErr != nil {
				return errors.Wrapf(readErr, errors.ErrFileAccess,
					"failed to read payload %s", payload)
			}
			if err := tx.AtomicReplace(dst, data); err != nil {
				return err
			}
		} else {
			if err := tx.Copy(payload, dst); err != nil {
				return err
			}
		}
	}

	if err := tx.Execute(ctx, m.cfg.Progress); err != nil {
		return err
	}
	return tx.Commit()
}

// payloadLoader adapts the content provider to the resolver's
// ContentLoader.
type payloadLoader struct {
	fs       types.FS
	provider types.ContentProvider
}

func (l *payloadLoader) Load(source *types.ModSource, relPath string) ([]byte, error) {
	path, err := l.provider.PayloadPath(source, relPath)
	if err != nil {
		return nil, err
	}
	return l.fs.ReadFile(path)
}
