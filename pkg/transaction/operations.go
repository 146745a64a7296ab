package transaction

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"

	"modfuse/pkg/errors"
	"modfuse/pkg/types"
)

// Operation is one reversible file mutation. Execute performs it,
// Rollback undoes it exactly once using the recorded prior state, and
// Cleanup discards backup artifacts after a successful commit.
type Operation interface {
	Describe() string
	Execute(fs types.FS) error
	Rollback(fs types.FS) error
	Cleanup(fs types.FS) error
}

const defaultFileMode = iofs.FileMode(0644)

// priorState records what stood at a destination before an operation
// ran: whether a file existed, its mode, and a backup copy of its
// bytes.
type priorState struct {
	backup   string
	existed  bool
	mode     iofs.FileMode
	captured bool
}

// capture snapshots the target before mutation. A directory at the
// target is an error; these operations only replace files.
func (p *priorState) capture(fsys types.FS, target string) error {
	info, err := fsys.Stat(target)
	switch {
	case err == nil:
		if info.IsDir() {
			return errors.Newf(errors.ErrTxExecute, "target %s is a directory", target)
		}
		data, err := fsys.ReadFile(target)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to back up %s", target)
		}
		if err := fsys.MkdirAll(filepath.Dir(p.backup), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create backup dir for %s", target)
		}
		if err := fsys.WriteFile(p.backup, data, 0600); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to write backup of %s", target)
		}
		p.existed = true
		p.mode = info.Mode().Perm()
	case os.IsNotExist(err):
		p.existed = false
	default:
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", target)
	}
	p.captured = true
	return nil
}

// restore puts the target back to its captured state: the exact prior
// bytes, or absence.
func (p *priorState) restore(fsys types.FS, target string) error {
	if !p.captured {
		return nil
	}
	if p.existed {
		data, err := fsys.ReadFile(p.backup)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read backup of %s", target)
		}
		return fsys.WriteFile(target, data, p.mode)
	}
	if err := fsys.Remove(target); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", target)
	}
	return nil
}

// discard removes the backup copy, if one was taken.
func (p *priorState) discard(fsys types.FS) error {
	if !p.captured || !p.existed {
		return nil
	}
	if err := fsys.Remove(p.backup); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove backup %s", p.backup)
	}
	return nil
}

// writeMode picks the permission for a replaced file: the prior mode
// when one existed, the default otherwise.
func (p *priorState) writeMode() iofs.FileMode {
	if p.existed {
		return p.mode
	}
	return defaultFileMode
}

// CopyOp copies the file at Src over Dst.
type CopyOp struct {
	Src   string
	Dst   string
	prior priorState
}

func (o *CopyOp) Describe() string { return fmt.Sprintf("copy %s -> %s", o.Src, o.Dst) }

func (o *CopyOp) Execute(fsys types.FS) error {
	if err := o.prior.capture(fsys, o.Dst); err != nil {
		return err
	}
	data, err := fsys.ReadFile(o.Src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", o.Src)
	}
	if err := fsys.MkdirAll(filepath.Dir(o.Dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent of %s", o.Dst)
	}
	return fsys.WriteFile(o.Dst, data, o.prior.writeMode())
}

func (o *CopyOp) Rollback(fsys types.FS) error { return o.prior.restore(fsys, o.Dst) }
func (o *CopyOp) Cleanup(fsys types.FS) error  { return o.prior.discard(fsys) }

// MoveOp renames Src to Dst, backing up anything Dst held.
type MoveOp struct {
	Src   string
	Dst   string
	prior priorState
}

func (o *MoveOp) Describe() string { return fmt.Sprintf("move %s -> %s", o.Src, o.Dst) }

func (o *MoveOp) Execute(fsys types.FS) error {
	if err := o.prior.capture(fsys, o.Dst); err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(o.Dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent of %s", o.Dst)
	}
	if err := fsys.Rename(o.Src, o.Dst); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to move %s", o.Src)
	}
	return nil
}

func (o *MoveOp) Rollback(fsys types.FS) error {
	// Return the moved file first, then restore whatever Dst held.
	if err := fsys.Rename(o.Dst, o.Src); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to move %s back", o.Dst)
	}
	return o.prior.restore(fsys, o.Dst)
}

func (o *MoveOp) Cleanup(fsys types.FS) error { return o.prior.discard(fsys) }

// DeleteOp removes the file at Target. Deleting a missing file is a
// no-op that still rolls back to absence.
type DeleteOp struct {
	Target string
	prior  priorState
}

func (o *DeleteOp) Describe() string { return "delete " + o.Target }

func (o *DeleteOp) Execute(fsys types.FS) error {
	if err := o.prior.capture(fsys, o.Target); err != nil {
		return err
	}
	if !o.prior.existed {
		return nil
	}
	if err := fsys.Remove(o.Target); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to delete %s", o.Target)
	}
	return nil
}

func (o *DeleteOp) Rollback(fsys types.FS) error { return o.prior.restore(fsys, o.Target) }
func (o *DeleteOp) Cleanup(fsys types.FS) error  { return o.prior.discard(fsys) }

// CreateDirectoryOp ensures Target exists as a directory.
type CreateDirectoryOp struct {
	Target  string
	created bool
}

func (o *CreateDirectoryOp) Describe() string { return "mkdir " + o.Target }

func (o *CreateDirectoryOp) Execute(fsys types.FS) error {
	info, err := fsys.Stat(o.Target)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return errors.Newf(errors.ErrTxExecute, "%s exists and is not a directory", o.Target)
	case !os.IsNotExist(err):
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", o.Target)
	}
	if err := fsys.MkdirAll(o.Target, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", o.Target)
	}
	o.created = true
	return nil
}

// Rollback removes the directory when this operation created it and
// it is empty. A directory that gained entries since is left alone.
func (o *CreateDirectoryOp) Rollback(fsys types.FS) error {
	if !o.created {
		return nil
	}
	entries, err := fsys.ReadDir(o.Target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", o.Target)
	}
	if len(entries) > 0 {
		return nil
	}
	if err := fsys.Remove(o.Target); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", o.Target)
	}
	return nil
}

func (o *CreateDirectoryOp) Cleanup(types.FS) error { return nil }

// WriteBytesOp writes binary content to Target.
type WriteBytesOp struct {
	Target string
	Data   []byte
	prior  priorState
}

func (o *WriteBytesOp) Describe() string {
	return fmt.Sprintf("write %s (%d bytes)", o.Target, len(o.Data))
}

func (o *WriteBytesOp) Execute(fsys types.FS) error {
	if err := o.prior.capture(fsys, o.Target); err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(o.Target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent of %s", o.Target)
	}
	return fsys.WriteFile(o.Target, o.Data, o.prior.writeMode())
}

func (o *WriteBytesOp) Rollback(fsys types.FS) error { return o.prior.restore(fsys, o.Target) }
func (o *WriteBytesOp) Cleanup(fsys types.FS) error  { return o.prior.discard(fsys) }

// WriteTextOp writes text content to Target.
type WriteTextOp struct {
	Target string
	Text   string
	prior  priorState
}

func (o *WriteTextOp) Describe() string {
	return fmt.Sprintf("write %s (%d chars)", o.Target, len(o.Text))
}

func (o *WriteTextOp) Execute(fsys types.FS) error {
	if err := o.prior.capture(fsys, o.Target); err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(o.Target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent of %s", o.Target)
	}
	return fsys.WriteFile(o.Target, []byte(o.Text), o.prior.writeMode())
}

func (o *WriteTextOp) Rollback(fsys types.FS) error { return o.prior.restore(fsys, o.Target) }
func (o *WriteTextOp) Cleanup(fsys types.FS) error  { return o.prior.discard(fsys) }

// AtomicReplaceOp stages new content next to the backups and renames
// it over Target, so Target is always either fully old or fully new
// content, independent of the surrounding transaction's rollback.
type AtomicReplaceOp struct {
	Target string
	Data   []byte
	Stage  string
	prior  priorState
}

func (o *AtomicReplaceOp) Describe() string {
	return fmt.Sprintf("replace %s (%d bytes)", o.Target, len(o.Data))
}

func (o *AtomicReplaceOp) Execute(fsys types.FS) error {
	if err := o.prior.capture(fsys, o.Target); err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(o.Stage), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create staging dir")
	}
	if err := fsys.MkdirAll(filepath.Dir(o.Target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent of %s", o.Target)
	}
	if err := fsys.WriteFile(o.Stage, o.Data, o.prior.writeMode()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to stage content for %s", o.Target)
	}
	if err := fsys.Rename(o.Stage, o.Target); err != nil {
		// Drop the stage so a failed replace leaves no artifacts.
		_ = fsys.Remove(o.Stage)
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to replace %s", o.Target)
	}
	return nil
}

func (o *AtomicReplaceOp) Rollback(fsys types.FS) error { return o.prior.restore(fsys, o.Target) }

func (o *AtomicReplaceOp) Cleanup(fsys types.FS) error {
	if err := fsys.Remove(o.Stage); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove stage %s", o.Stage)
	}
	return o.prior.discard(fsys)
}
