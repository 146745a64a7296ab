package transaction

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"modfuse/pkg/errors"
	"modfuse/pkg/logging"
	"modfuse/pkg/types"
)

// State is the transaction lifecycle state.
type State int

const (
	// StateBuilding accepts appended operations.
	StateBuilding State = iota

	// StateExecuting means Execute has started; appends are illegal.
	StateExecuting

	// StateCommitted is terminal: backups cleaned, log cleared.
	StateCommitted

	// StateRolledBack is terminal: executed operations were undone.
	StateRolledBack
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateExecuting:
		return "executing"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// Transaction is an ordered, all-or-nothing sequence of reversible
// file operations. Not safe for concurrent use; one logical merge run
// drives it sequentially.
type Transaction struct {
	logger    zerolog.Logger
	fs        types.FS
	backupDir string

	ops          []Operation
	state        State
	cursor       int
	executedOK   bool
	rollbackErrs []error
}

// New creates an empty transaction writing through fs. Backup copies
// are staged under backupDir.
func New(fs types.FS, backupDir string) *Transaction {
	return &Transaction{
		logger:    logging.GetLogger("transaction"),
		fs:        fs,
		backupDir: backupDir,
	}
}

// State returns the current lifecycle state.
func (t *Transaction) State() State { return t.state }

// Len returns the number of operations in the log.
func (t *Transaction) Len() int { return len(t.ops) }

// Add appends an operation. Illegal once execution has started.
func (t *Transaction) Add(op Operation) error {
	if t.state != StateBuilding {
		return errors.Newf(errors.ErrTxState,
			"cannot append to a %s transaction", t.state)
	}
	t.ops = append(t.ops, op)
	return nil
}

// backupPath allocates a unique backup location for the next
// operation.
func (t *Transaction) backupPath() string {
	return filepath.Join(t.backupDir, fmt.Sprintf("op-%04d.bak", len(t.ops)))
}

// stagePath allocates a unique staging location for atomic replaces.
func (t *Transaction) stagePath() string {
	return filepath.Join(t.backupDir, fmt.Sprintf("op-%04d.stage", len(t.ops)))
}

// Copy appends a copy operation from src to dst.
func (t *Transaction) Copy(src, dst string) error {
	return t.Add(&CopyOp{Src: src, Dst: dst, prior: priorState{backup: t.backupPath()}})
}

// Move appends a move (rename) operation from src to dst.
func (t *Transaction) Move(src, dst string) error {
	return t.Add(&MoveOp{Src: src, Dst: dst, prior: priorState{backup: t.backupPath()}})
}

// Delete appends a delete operation for path.
func (t *Transaction) Delete(path string) error {
	return t.Add(&DeleteOp{Target: path, prior: priorState{backup: t.backupPath()}})
}

// CreateDirectory appends a directory creation for path.
func (t *Transaction) CreateDirectory(path string) error {
	return t.Add(&CreateDirectoryOp{Target: path})
}

// WriteBytes appends a binary write to path.
func (t *Transaction) WriteBytes(path string, data []byte) error {
	return t.Add(&WriteBytesOp{Target: path, Data: data, prior: priorState{backup: t.backupPath()}})
}

// WriteText appends a text write to path.
func (t *Transaction) WriteText(path string, text string) error {
	return t.Add(&WriteTextOp{Target: path, Text: text, prior: priorState{backup: t.backupPath()}})
}

// AtomicReplace appends a staged write-then-rename so the destination
// is always either fully old or fully new content.
func (t *Transaction) AtomicReplace(path string, data []byte) error {
	return t.Add(&AtomicReplaceOp{
		Target: path,
		Data:   data,
		Stage:  t.stagePath(),
		prior:  priorState{backup: t.backupPath()},
	})
}

// Execute runs the operations strictly in append order, reporting
// progress before each step. On the first failure it rolls back the
// failing operation and every one before it in reverse order, then
// returns the original error wrapped as a transaction error.
// Cancellation rolls back the completed operations the same way.
func (t *Transaction) Execute(ctx context.Context, progress types.ProgressReporter) error {
	if t.state != StateBuilding {
		return errors.Newf(errors.ErrTxState,
			"cannot execute a %s transaction", t.state)
	}
	t.state = StateExecuting

	total := len(t.ops)
	for i, op := range t.ops {
		if err := ctx.Err(); err != nil {
			t.rollback(t.cursor)
			return errors.Wrap(err, errors.ErrCancelled, "transaction cancelled")
		}
		if progress != nil {
			progress.Step(i, total, op.Describe())
		}

		t.logger.Debug().
			Int("step", i+1).
			Int("total", total).
			Str("operation", op.Describe()).
			Msg("Executing operation")

		if err := op.Execute(t.fs); err != nil {
			t.logger.Error().
				Err(err).
				Int("step", i+1).
				Str("operation", op.Describe()).
				Msg("Operation failed, rolling back")
			t.rollback(i + 1)
			return errors.Wrapf(err, errors.ErrTxExecute,
				"operation %d/%d (%s) failed", i+1, total, op.Describe())
		}
		t.cursor = i + 1
	}

	t.executedOK = true
	t.logger.Info().Int("operations", total).Msg("Transaction executed")
	return nil
}

// Commit finalizes a successfully executed transaction: each
// operation's cleanup runs (deleting backup copies), then the log is
// cleared. Commit after a rollback, or before execution, fails.
func (t *Transaction) Commit() error {
	if t.state == StateRolledBack {
		return errors.New(errors.ErrTxCommit,
			"cannot commit a rolled-back transaction")
	}
	if t.state != StateExecuting || !t.executedOK {
		return errors.Newf(errors.ErrTxCommit,
			"cannot commit a %s transaction", t.state)
	}

	for _, op := range t.ops {
		if err := op.Cleanup(t.fs); err != nil {
			t.logger.Warn().
				Err(err).
				Str("operation", op.Describe()).
				Msg("Backup cleanup failed")
		}
	}

	t.ops = nil
	t.cursor = 0
	t.state = StateCommitted
	t.logger.Info().Msg("Transaction committed")
	return nil
}

// RollbackErrors returns the undo failures collected during rollback.
// A non-empty slice means the pre-transaction state could not be
// fully asserted.
func (t *Transaction) RollbackErrors() []error {
	return t.rollbackErrs
}

// rollback undoes the first from operations in reverse order. The
// failing operation is included so that any partial mutation it made
// before erroring is restored; its undo is a no-op when it failed
// before capturing prior state. Undo failures are logged and
// collected; the unwind continues regardless.
func (t *Transaction) rollback(from int) {
	for i := from - 1; i >= 0; i-- {
		op := t.ops[i]
		if err := op.Rollback(t.fs); err != nil {
			t.logger.Error().
				Err(err).
				Int("step", i+1).
				Str("operation", op.Describe()).
				Msg("Rollback of operation failed, continuing unwind")
			t.rollbackErrs = append(t.rollbackErrs,
				errors.Wrapf(err, errors.ErrTxRollback,
					"rollback of operation %d (%s) failed", i+1, op.Describe()))
		}
	}
	t.cursor = 0
	t.state = StateRolledBack
	t.logger.Warn().Int("undoFailures", len(t.rollbackErrs)).Msg("Transaction rolled back")
}
